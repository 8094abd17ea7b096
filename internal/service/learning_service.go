// internal/service/learning_service.go
package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"coinquest/internal/content"
	"coinquest/internal/domain"
	"coinquest/internal/repository"
	"coinquest/internal/util"
	"coinquest/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Rewards for learning activity.
const (
	LessonXP           = 50
	LessonLucre        = 30
	QuizXPPerAnswer    = 10
	QuizPassPercentage = 70.0
)

// ModulesOverview is the catalog together with the user's progress.
type ModulesOverview struct {
	Modules  []content.Module `json:"modules"`
	Progress *domain.Progress `json:"progress"`
}

// LessonResult is the outcome of completing a lesson.
type LessonResult struct {
	Progress  *domain.Progress `json:"progress"`
	User      *domain.User     `json:"user"`
	Wallet    *domain.Wallet   `json:"wallet"`
	LessonKey string           `json:"lessonKey"`
}

// LessonContent is a lesson's slides with the reward paid on completion.
type LessonContent struct {
	ModuleID  int             `json:"moduleId"`
	LessonID  string          `json:"lessonId"`
	LessonKey string          `json:"lessonKey"`
	Title     string          `json:"title"`
	Duration  string          `json:"duration"`
	Slides    []content.Slide `json:"slides"`
	XP        int64           `json:"xp"`
	Lucre     int64           `json:"lucre"`
}

// QuizResult is the outcome of a quiz submission.
type QuizResult struct {
	Progress   *domain.Progress `json:"progress"`
	User       *domain.User     `json:"user"`
	Wallet     *domain.Wallet   `json:"wallet"`
	Quiz       domain.QuizScore `json:"quiz"`
	Percentage float64          `json:"percentage"`
}

// LearningService defines the interface for lessons, quizzes and progress.
type LearningService interface {
	ListModules(ctx context.Context, userID uuid.UUID) (*ModulesOverview, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error)
	CompleteLesson(ctx context.Context, userID uuid.UUID, moduleID int, lessonID string) (*LessonResult, error)
	GetLesson(moduleID int, lessonID string) (*LessonContent, error)
	GetQuiz(moduleID int) ([]content.Question, error)
	SubmitQuiz(ctx context.Context, userID uuid.UUID, moduleID int, answers []int, timeSpent float64) (*QuizResult, error)
}

type learningService struct {
	tx           db.Transactor
	catalog      *content.Catalog
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	ledger       ledger
	achievements AchievementEvaluator
	logger       logrus.FieldLogger
	now          func() time.Time
}

// NewLearningService creates a new LearningService. achievements may be nil.
func NewLearningService(
	tx db.Transactor,
	catalog *content.Catalog,
	repos repository.Repositories,
	achievements AchievementEvaluator,
	logger logrus.FieldLogger,
) LearningService {
	return &learningService{
		tx:           tx,
		catalog:      catalog,
		userRepo:     repos.Users,
		progressRepo: repos.Progress,
		ledger:       ledger{wallets: repos.Wallets, transactions: repos.Transactions},
		achievements: achievements,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// progressFor returns the user's progress, creating it with every achievement slot first if needed.
func progressFor(ctx context.Context, repo repository.ProgressRepository, q repository.DBExecutor, userID uuid.UUID, forUpdate bool) (*domain.Progress, error) {
	if err := repo.EnsureProgress(ctx, q, domain.NewProgress(userID)); err != nil {
		return nil, err
	}
	get := repo.GetProgressByUserID
	if forUpdate {
		get = repo.GetProgressByUserIDForUpdate
	}
	return get(ctx, q, userID)
}

// ListModules returns the catalog and the user's progress.
func (s *learningService) ListModules(ctx context.Context, userID uuid.UUID) (*ModulesOverview, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ModulesOverview{Modules: s.catalog.Modules, Progress: progress}, nil
}

// GetProgress returns the user's progress, creating it on first access.
func (s *learningService) GetProgress(ctx context.Context, userID uuid.UUID) (*domain.Progress, error) {
	txController, txExecutor, err := beginTx(ctx, s.tx, "get progress")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	progress, err := progressFor(ctx, s.progressRepo, txExecutor, userID, false)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("get progress: failed to commit transaction: %w", err)
	}
	return progress, nil
}

// CompleteLesson marks a lesson complete and rewards LessonXP experience and LessonLucre lucre.
// Repeating a lesson rewards again but does not duplicate the completion.
func (s *learningService) CompleteLesson(ctx context.Context, userID uuid.UUID, moduleID int, lessonID string) (*LessonResult, error) {
	module, ok := s.catalog.Module(moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	if _, ok := module.Lesson(lessonID); !ok {
		return nil, fmt.Errorf("complete lesson: lesson %s: %w", lessonID, util.ErrNotFound)
	}
	lessonKey := domain.LessonKey(moduleID, lessonID)

	txController, txExecutor, err := beginTx(ctx, s.tx, "complete lesson")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	progress, err := progressFor(ctx, s.progressRepo, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}
	progress.CompleteLesson(lessonKey)
	progress.CurrentModule = max(progress.CurrentModule, moduleID)
	if err := s.progressRepo.UpdateProgress(ctx, txExecutor, progress); err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}

	user, err := s.addXP(ctx, txExecutor, userID, LessonXP)
	if err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}
	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}
	if _, err := s.ledger.credit(ctx, txExecutor, wallet, decimal.NewFromInt(LessonLucre), domain.TransactionTypeEarning, "Completed Lesson "+lessonKey); err != nil {
		return nil, fmt.Errorf("complete lesson: %w", err)
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("complete lesson: failed to commit transaction: %w", err)
	}

	evaluateAchievements(ctx, s.achievements, s.logger, userID)
	return &LessonResult{Progress: progress, User: user, Wallet: wallet, LessonKey: lessonKey}, nil
}

// GetLesson returns the slides of a catalog lesson.
func (s *learningService) GetLesson(moduleID int, lessonID string) (*LessonContent, error) {
	module, ok := s.catalog.Module(moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	lesson, ok := module.Lesson(lessonID)
	if !ok {
		return nil, fmt.Errorf("get lesson: lesson %s: %w", lessonID, util.ErrNotFound)
	}
	return &LessonContent{
		ModuleID:  moduleID,
		LessonID:  lesson.ID,
		LessonKey: domain.LessonKey(moduleID, lesson.ID),
		Title:     lesson.Title,
		Duration:  lesson.Duration,
		Slides:    lesson.Content(),
		XP:        LessonXP,
		Lucre:     LessonLucre,
	}, nil
}

// GetQuiz returns the module's quiz questions.
func (s *learningService) GetQuiz(moduleID int) ([]content.Question, error) {
	module, ok := s.catalog.Module(moduleID)
	if !ok {
		return nil, util.ErrModuleNotFound
	}
	return s.catalog.Questions(module), nil
}

// SubmitQuiz grades the answers, stores the score as the latest result for the
// module's quiz and rewards experience and lucre. Passing completes the module.
func (s *learningService) SubmitQuiz(ctx context.Context, userID uuid.UUID, moduleID int, answers []int, timeSpent float64) (*QuizResult, error) {
	questions, err := s.GetQuiz(moduleID)
	if err != nil {
		return nil, err
	}
	if len(answers) != len(questions) || timeSpent < 0 {
		return nil, fmt.Errorf("%w: expected %d answers", util.ErrInvalidInput, len(questions))
	}

	score := 0
	for i, answer := range answers {
		if answer < 0 {
			return nil, util.ErrInvalidInput
		}
		if questions[i].Correct == answer {
			score++
		}
	}
	total := len(questions)
	percentage := float64(score) / float64(total) * 100
	quiz := domain.QuizScore{
		QuizID:    fmt.Sprintf("quiz-%d", moduleID),
		Score:     score,
		Total:     total,
		TimeSpent: timeSpent,
		Date:      s.now(),
	}

	txController, txExecutor, err := beginTx(ctx, s.tx, "submit quiz")
	if err != nil {
		return nil, err
	}
	defer s.tx.Rollback(txController)

	progress, err := progressFor(ctx, s.progressRepo, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("submit quiz: %w", err)
	}
	progress.RecordQuizScore(quiz)
	if percentage >= QuizPassPercentage && progress.CompleteModule(moduleID) {
		progress.CurrentModule = min(moduleID+1, s.catalog.ModuleCount())
	}
	if err := s.progressRepo.UpdateProgress(ctx, txExecutor, progress); err != nil {
		return nil, fmt.Errorf("submit quiz: %w", err)
	}

	user, err := s.addXP(ctx, txExecutor, userID, int64(score*QuizXPPerAnswer))
	if err != nil {
		return nil, fmt.Errorf("submit quiz: %w", err)
	}
	wallet, err := s.ledger.wallet(ctx, txExecutor, userID, true)
	if err != nil {
		return nil, fmt.Errorf("submit quiz: %w", err)
	}
	if lucre := int64(math.Floor(percentage)); lucre > 0 {
		description := fmt.Sprintf("Quiz %s: %d/%d", quiz.QuizID, score, total)
		if _, err := s.ledger.credit(ctx, txExecutor, wallet, decimal.NewFromInt(lucre), domain.TransactionTypeEarning, description); err != nil {
			return nil, fmt.Errorf("submit quiz: %w", err)
		}
	}

	if err := s.tx.Commit(txController); err != nil {
		return nil, fmt.Errorf("submit quiz: failed to commit transaction: %w", err)
	}

	evaluateAchievements(ctx, s.achievements, s.logger, userID)
	return &QuizResult{Progress: progress, User: user, Wallet: wallet, Quiz: quiz, Percentage: percentage}, nil
}

func (s *learningService) addXP(ctx context.Context, q repository.DBExecutor, userID uuid.UUID, amount int64) (*domain.User, error) {
	return addUserXP(ctx, s.userRepo, q, userID, amount)
}

// addUserXP locks the user, adds experience and recomputes the level.
func addUserXP(ctx context.Context, repo repository.UserRepository, q repository.DBExecutor, userID uuid.UUID, amount int64) (*domain.User, error) {
	user, err := repo.GetUserByIDForUpdate(ctx, q, userID)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	user.AddXP(amount)
	if err := repo.UpdateUser(ctx, q, user); err != nil {
		return nil, err
	}
	return user, nil
}
