// internal/service/auth_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"
	"coinquest/pkg/db"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Input limits for accounts.
const (
	MinPasswordLength = 6
	MinAge            = 5
	MaxAge            = 18
	MaxXPGrant        = 1000
)

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      *int   `json:"age,omitempty"`
	Grade    string `json:"grade,omitempty"`
	School   string `json:"school,omitempty"`
}

// ProfileUpdate carries optional profile changes. Nil fields are left untouched.
type ProfileUpdate struct {
	Name           *string `json:"name,omitempty"`
	Age            *int    `json:"age,omitempty"`
	Grade          *string `json:"grade,omitempty"`
	School         *string `json:"school,omitempty"`
	KnowledgeLevel *string `json:"knowledgeLevel,omitempty"`
}

// AuthResult is a user with a freshly signed token.
type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService defines the interface for accounts and sessions.
type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*domain.User, error)
	Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error)
	AddXP(ctx context.Context, userID uuid.UUID, amount int64) (*domain.User, error)
}

type authService struct {
	tx           db.Transactor
	dbExecutor   repository.DBExecutor
	userRepo     repository.UserRepository
	walletRepo   repository.WalletRepository
	progressRepo repository.ProgressRepository
	tokens       *TokenManager
	achievements AchievementEvaluator
	logger       logrus.FieldLogger
	bcryptCost   int
	now          func() time.Time
}

// NewAuthService creates a new AuthService. achievements may be nil.
func NewAuthService(
	tx db.Transactor,
	dbExecutor repository.DBExecutor,
	repos repository.Repositories,
	tokens *TokenManager,
	achievements AchievementEvaluator,
	logger logrus.FieldLogger,
) AuthService {
	return &authService{
		tx:           tx,
		dbExecutor:   dbExecutor,
		userRepo:     repos.Users,
		walletRepo:   repos.Wallets,
		progressRepo: repos.Progress,
		tokens:       tokens,
		achievements: achievements,
		logger:       logger,
		bcryptCost:   bcrypt.DefaultCost,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func validAge(age *int) bool {
	return age == nil || (*age >= MinAge && *age <= MaxAge)
}

func (in SignupInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", util.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return fmt.Errorf("%w: invalid email", util.ErrInvalidInput)
	}
	if len(in.Password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", util.ErrInvalidInput, MinPasswordLength)
	}
	if !validAge(in.Age) {
		return fmt.Errorf("%w: age must be between %d and %d", util.ErrInvalidInput, MinAge, MaxAge)
	}
	return nil
}

// Signup creates the user with its wallet and progress and signs a token.
func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("signup: failed to hash password: %w", err)
	}
	user := domain.NewUser(input.Name, input.Email, string(hash))
	user.Age = input.Age
	user.Grade = strings.TrimSpace(input.Grade)
	user.School = strings.TrimSpace(input.School)

	txController, txExecutor, err := beginTx(ctx, s.tx, "signup")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	if err := s.userRepo.CreateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if err := s.ensureCompanions(ctx, txExecutor, user.ID); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("signup: failed to commit transaction: %w", err)
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Login checks the credentials, updates the login streak and signs a token.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, util.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "login")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	user, err = s.userRepo.GetUserByIDForUpdate(ctx, txExecutor, user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	user.RecordLogin(s.now())
	if err := s.userRepo.UpdateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.ensureCompanions(ctx, txExecutor, user.ID); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("login: failed to commit transaction: %w", err)
	}

	evaluateAchievements(ctx, s.achievements, s.logger, user.ID)

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Authenticate resolves a bearer token to its user.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUnauthorized
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	return user, nil
}

// Profile returns the user.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*domain.User, error) {
	if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", util.ErrInvalidInput)
	}
	if !validAge(update.Age) {
		return nil, fmt.Errorf("%w: age must be between %d and %d", util.ErrInvalidInput, MinAge, MaxAge)
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "update profile")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	user, err := s.userRepo.GetUserByIDForUpdate(ctx, txExecutor, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if update.Name != nil {
		user.Name = strings.TrimSpace(*update.Name)
	}
	if update.Age != nil {
		age := *update.Age
		user.Age = &age
	}
	if update.Grade != nil {
		user.Grade = strings.TrimSpace(*update.Grade)
	}
	if update.School != nil {
		user.School = strings.TrimSpace(*update.School)
	}
	if update.KnowledgeLevel != nil {
		user.KnowledgeLevel = strings.TrimSpace(*update.KnowledgeLevel)
	}
	if err := s.userRepo.UpdateUser(ctx, txExecutor, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("update profile: failed to commit transaction: %w", err)
	}
	return user, nil
}

// AddXP grants between 1 and MaxXPGrant experience.
func (s *authService) AddXP(ctx context.Context, userID uuid.UUID, amount int64) (*domain.User, error) {
	if amount < 1 || amount > MaxXPGrant {
		return nil, util.ErrInvalidInput
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "add xp")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	user, err := addUserXP(ctx, s.userRepo, txExecutor, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("add xp: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("add xp: failed to commit transaction: %w", err)
	}
	return user, nil
}

// ensureCompanions creates the wallet and progress records a user needs.
func (s *authService) ensureCompanions(ctx context.Context, q repository.DBExecutor, userID uuid.UUID) error {
	if err := s.walletRepo.EnsureWallet(ctx, q, domain.NewWallet(userID)); err != nil {
		return err
	}
	return s.progressRepo.EnsureProgress(ctx, q, domain.NewProgress(userID))
}
