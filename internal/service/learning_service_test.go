// internal/service/learning_service_test.go
package service

import (
	"context"
	"testing"

	"coinquest/internal/domain"
	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteLesson(t *testing.T) {
	ctx := context.Background()

	t.Run("RewardsAndRecords", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "anika")

		res, err := env.learning.CompleteLesson(ctx, user.ID, 1, "1")
		require.NoError(t, err)
		assert.Equal(t, "1.1", res.LessonKey)
		assert.Equal(t, []string{"1.1"}, []string(res.Progress.CompletedLessons))
		assert.Equal(t, int64(LessonXP), res.User.XP)
		assert.True(t, res.Wallet.LucreBalance.Equal(dec("30")))
		assert.True(t, res.Wallet.TotalEarned.Equal(dec("530")))

		transactions, err := env.wallets.GetTransactions(ctx, user.ID, 0)
		require.NoError(t, err)
		require.Len(t, transactions, 1)
		assert.Equal(t, "Completed Lesson 1.1", transactions[0].Description)
		assert.Equal(t, domain.TransactionTypeEarning, transactions[0].Type)
	})

	t.Run("RepeatRewardsWithoutDuplicating", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "kian")

		_, err := env.learning.CompleteLesson(ctx, user.ID, 1, "1")
		require.NoError(t, err)
		res, err := env.learning.CompleteLesson(ctx, user.ID, 1, "1")
		require.NoError(t, err)

		assert.Len(t, res.Progress.CompletedLessons, 1)
		assert.Equal(t, int64(2*LessonXP), res.User.XP)
		assert.Equal(t, 2, res.User.Level)
		assert.True(t, res.Wallet.LucreBalance.Equal(dec("60")))
	})

	t.Run("AdvancesCurrentModule", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "ira")

		res, err := env.learning.CompleteLesson(ctx, user.ID, 3, "2")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Progress.CurrentModule)

		res, err = env.learning.CompleteLesson(ctx, user.ID, 1, "2")
		require.NoError(t, err)
		assert.Equal(t, 3, res.Progress.CurrentModule)
	})

	t.Run("UnknownModuleOrLesson", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "jai")

		_, err := env.learning.CompleteLesson(ctx, user.ID, 99, "1")
		assert.ErrorIs(t, err, util.ErrModuleNotFound)
		_, err = env.learning.CompleteLesson(ctx, user.ID, 1, "99")
		assert.ErrorIs(t, err, util.ErrNotFound)
	})

	t.Run("UnknownUserRollsBack", func(t *testing.T) {
		env := newTestEnv(t)
		ghost := uuid.New()

		_, err := env.learning.CompleteLesson(ctx, ghost, 1, "1")
		assert.ErrorIs(t, err, util.ErrUserNotFound)
		_, err = env.repos.Progress.GetProgressByUserID(ctx, env.store.Executor(), ghost)
		assert.ErrorIs(t, err, util.ErrNotFound)
	})
}

func TestSubmitQuiz(t *testing.T) {
	ctx := context.Background()

	t.Run("PerfectScoreCompletesModule", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "aisha")
		answers := env.correctAnswers(t, 1)

		res, err := env.learning.SubmitQuiz(ctx, user.ID, 1, answers, 95.5)
		require.NoError(t, err)
		assert.Equal(t, len(answers), res.Quiz.Score)
		assert.Equal(t, float64(100), res.Percentage)
		assert.Equal(t, []int64{1}, []int64(res.Progress.CompletedModules))
		assert.Equal(t, 2, res.Progress.CurrentModule)
		assert.Equal(t, int64(len(answers)*QuizXPPerAnswer), res.User.XP)
		assert.True(t, res.Wallet.LucreBalance.Equal(dec("100")))

		stored := res.Progress.QuizScores["quiz-1"]
		assert.Equal(t, len(answers), stored.Score)
		assert.Equal(t, 95.5, stored.TimeSpent)
	})

	t.Run("FailingScoreStillRewards", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "parth")
		total := len(env.correctAnswers(t, 2))
		score := total / 2

		res, err := env.learning.SubmitQuiz(ctx, user.ID, 2, env.answersWithScore(t, 2, score), 30)
		require.NoError(t, err)
		assert.Equal(t, score, res.Quiz.Score)
		assert.Empty(t, res.Progress.CompletedModules)
		assert.Equal(t, 1, res.Progress.CurrentModule)
		assert.Equal(t, int64(score*QuizXPPerAnswer), res.User.XP)
		assert.True(t, res.Wallet.LucreBalance.IsPositive())
	})

	t.Run("ZeroScoreRecordsNoLucre", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "sia")

		res, err := env.learning.SubmitQuiz(ctx, user.ID, 1, env.answersWithScore(t, 1, 0), 10)
		require.NoError(t, err)
		assert.Zero(t, res.Quiz.Score)
		assert.Zero(t, res.User.XP)
		assert.True(t, res.Wallet.LucreBalance.IsZero())

		transactions, err := env.wallets.GetTransactions(ctx, user.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, transactions)
	})

	t.Run("ResubmissionOverwritesScore", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "ved")

		_, err := env.learning.SubmitQuiz(ctx, user.ID, 1, env.correctAnswers(t, 1), 20)
		require.NoError(t, err)
		res, err := env.learning.SubmitQuiz(ctx, user.ID, 1, env.answersWithScore(t, 1, 1), 25)
		require.NoError(t, err)

		assert.Len(t, res.Progress.QuizScores, 1)
		assert.Equal(t, 1, res.Progress.QuizScores["quiz-1"].Score)
		assert.Equal(t, []int64{1}, []int64(res.Progress.CompletedModules))
	})

	t.Run("CurrentModuleNeverMovesBack", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "navya")

		for _, moduleID := range []int{1, 2} {
			_, err := env.learning.SubmitQuiz(ctx, user.ID, moduleID, env.correctAnswers(t, moduleID), 20)
			require.NoError(t, err)
		}
		res, err := env.learning.SubmitQuiz(ctx, user.ID, 1, env.correctAnswers(t, 1), 20)
		require.NoError(t, err)
		assert.Equal(t, 3, res.Progress.CurrentModule)
	})

	t.Run("LastModuleCapsCurrentModule", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "ayaan")
		last := env.catalog.ModuleCount()

		res, err := env.learning.SubmitQuiz(ctx, user.ID, last, env.correctAnswers(t, last), 20)
		require.NoError(t, err)
		assert.Equal(t, last, res.Progress.CurrentModule)
	})

	t.Run("InvalidSubmissions", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "ruhi")
		answers := env.correctAnswers(t, 1)

		_, err := env.learning.SubmitQuiz(ctx, user.ID, 1, answers[1:], 10)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		_, err = env.learning.SubmitQuiz(ctx, user.ID, 1, answers, -1)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		bad := append([]int(nil), answers...)
		bad[0] = -1
		_, err = env.learning.SubmitQuiz(ctx, user.ID, 1, bad, 10)
		assert.ErrorIs(t, err, util.ErrInvalidInput)
		_, err = env.learning.SubmitQuiz(ctx, user.ID, 42, answers, 10)
		assert.ErrorIs(t, err, util.ErrModuleNotFound)
	})
}

func TestListModules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "mira")

	overview, err := env.learning.ListModules(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, overview.Modules, env.catalog.ModuleCount())
	assert.Equal(t, 1, overview.Progress.CurrentModule)
	assert.Empty(t, overview.Progress.CompletedLessons)
}

func TestGetLesson(t *testing.T) {
	env := newTestEnv(t)

	lesson, err := env.learning.GetLesson(1, "1")
	require.NoError(t, err)
	assert.Equal(t, "1.1", lesson.LessonKey)
	assert.Equal(t, "What is Money?", lesson.Title)
	assert.NotEmpty(t, lesson.Slides)
	assert.EqualValues(t, LessonXP, lesson.XP)
	assert.EqualValues(t, LessonLucre, lesson.Lucre)

	_, err = env.learning.GetLesson(42, "1")
	assert.ErrorIs(t, err, util.ErrModuleNotFound)
	_, err = env.learning.GetLesson(1, "99")
	assert.ErrorIs(t, err, util.ErrNotFound)
}
