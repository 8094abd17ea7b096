// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"coinquest/internal/api/handler"
	"coinquest/internal/api/middleware"
	"coinquest/internal/api/types"
)

// Handlers groups the feature handlers the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Wallet       *handler.WalletHandler
	Stocks       *handler.StockHandler
	Achievements *handler.AchievementHandler
	Learning     *handler.LearningHandler
	Leaderboard  *handler.LeaderboardHandler
}

// Options tunes the global middlewares.
type Options struct {
	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, auth middleware.Authenticator, opts Options, logger logrus.FieldLogger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(chimw.RequestID)                    // Add a request ID to the context
	r.Use(chimw.RealIP)                       // Use the real IP address
	r.Use(middleware.RequestLogger(logger))   // Log HTTP requests
	r.Use(chimw.Recoverer)                    // Recover from panics and return 500
	r.Use(chimw.Timeout(opts.RequestTimeout)) // Cancel the request context after the timeout

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_ = types.WriteJSON(w, http.StatusOK, types.Success("OK", nil))
	})

	requireAuth := middleware.RequireAuth(auth, logger)
	limiter := middleware.NewIPRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.Auth.Signup)
			r.Post("/login", h.Auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", h.Auth.Me)
				r.Patch("/me", h.Auth.UpdateMe)
				r.Post("/xp", h.Auth.AddXP)
			})
		})

		r.Route("/wallet", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Wallet.GetWallet)
			r.Get("/transactions", h.Wallet.GetTransactions)
			r.Post("/earn", h.Wallet.Earn)
			r.Post("/discretionary/add", h.Wallet.AddDiscretionary)
			r.Post("/discretionary/deduct", h.Wallet.DeductDiscretionary)
			r.Post("/payout", h.Wallet.Payout)
			r.Put("/expenses", h.Wallet.SetExpenses)
		})

		r.Route("/stocks", func(r chi.Router) {
			r.Get("/", h.Stocks.ListStocks)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/portfolio", h.Stocks.Portfolio)
				r.Post("/refresh", h.Stocks.Refresh)
				r.Post("/{symbol}/buy", h.Stocks.Buy)
				r.Post("/{symbol}/sell", h.Stocks.Sell)
			})
		})

		r.Route("/achievements", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", h.Achievements.List)
			r.Post("/check", h.Achievements.Check)
		})

		r.Route("/learning", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/modules", h.Learning.Modules)
			r.Get("/progress", h.Learning.Progress)
			r.Get("/lessons/{moduleID}/{lessonID}", h.Learning.GetLesson)
			r.Post("/lessons/{moduleID}/{lessonID}/complete", h.Learning.CompleteLesson)
			r.Get("/quizzes/{moduleID}", h.Learning.GetQuiz)
			r.Post("/quizzes/{moduleID}/submit", h.Learning.SubmitQuiz)
		})

		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", h.Leaderboard.Top)
			r.With(requireAuth).Get("/me", h.Leaderboard.Me)
		})
	})

	return r
}
