// internal/service/achievement_service_test.go
package service

import (
	"context"
	"errors"
	"testing"

	"coinquest/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findAchievement(t *testing.T, states []domain.AchievementState, id string) domain.AchievementState {
	t.Helper()
	for _, s := range states {
		if s.ID == id {
			return s
		}
	}
	t.Fatalf("achievement %s not found", id)
	return domain.AchievementState{}
}

func TestListAchievements(t *testing.T) {
	ctx := context.Background()

	t.Run("EveryTemplateLocked", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "nisha")

		states, err := env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		templates := domain.AchievementTemplates()
		require.Len(t, states, len(templates))
		for i, s := range states {
			assert.Equal(t, templates[i].ID, s.ID)
			assert.False(t, s.Unlocked)
			assert.Nil(t, s.UnlockedAt)
			assert.True(t, s.Progress.IsZero())
		}
	})

	t.Run("UnknownUser", func(t *testing.T) {
		env := newTestEnv(t)

		states, err := env.achievements.List(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, states)
	})

	t.Run("BackfillsMissingSlots", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "omar")

		progress, err := env.repos.Progress.GetProgressByUserID(ctx, env.store.Executor(), user.ID)
		require.NoError(t, err)
		delete(progress.Achievements, domain.AchievementBattleVictor)
		require.NoError(t, env.repos.Progress.UpdateProgress(ctx, env.store.Executor(), progress))

		states, err := env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, states, len(domain.AchievementTemplates()))

		stored, err := env.repos.Progress.GetProgressByUserID(ctx, env.store.Executor(), user.ID)
		require.NoError(t, err)
		assert.Contains(t, stored.Achievements, domain.AchievementBattleVictor)
	})
}

func TestEvaluateAchievements(t *testing.T) {
	ctx := context.Background()

	t.Run("UnknownUser", func(t *testing.T) {
		env := newTestEnv(t)

		states, err := env.achievements.Evaluate(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, states)
	})

	t.Run("FirstStepsAfterLesson", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "lina")

		_, err := env.learning.CompleteLesson(ctx, user.ID, 1, "1")
		require.NoError(t, err)

		states, err := env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		firstSteps := findAchievement(t, states, domain.AchievementFirstSteps)
		assert.True(t, firstSteps.Unlocked)
		assert.NotNil(t, firstSteps.UnlockedAt)
		assert.True(t, firstSteps.Progress.IsZero())
		assert.False(t, findAchievement(t, states, domain.AchievementEarlyInvestor).Unlocked)
	})

	t.Run("StreakWarrior", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "yash")

		stored, err := env.repos.Users.GetUserByID(ctx, env.store.Executor(), user.ID)
		require.NoError(t, err)
		stored.CurrentStreak = 4
		require.NoError(t, env.repos.Users.UpdateUser(ctx, env.store.Executor(), stored))
		states, err := env.achievements.Evaluate(ctx, user.ID)
		require.NoError(t, err)
		streak := findAchievement(t, states, domain.AchievementStreakWarrior)
		assert.False(t, streak.Unlocked)
		assert.True(t, streak.Progress.Equal(dec("4")))

		stored.CurrentStreak = 9
		require.NoError(t, env.repos.Users.UpdateUser(ctx, env.store.Executor(), stored))
		states, err = env.achievements.Evaluate(ctx, user.ID)
		require.NoError(t, err)
		streak = findAchievement(t, states, domain.AchievementStreakWarrior)
		assert.True(t, streak.Unlocked)
		assert.True(t, streak.Progress.Equal(dec("7")))
	})

	t.Run("QuizAndModuleBadges", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "farah")

		for moduleID := 1; moduleID <= env.catalog.ModuleCount(); moduleID++ {
			_, err := env.learning.SubmitQuiz(ctx, user.ID, moduleID, env.correctAnswers(t, moduleID), 42)
			require.NoError(t, err)
		}

		states, err := env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, findAchievement(t, states, domain.AchievementQuizMaster).Unlocked)
		assert.True(t, findAchievement(t, states, domain.AchievementMoneyMaster).Unlocked)
		champion := findAchievement(t, states, domain.AchievementQuizChampion)
		assert.False(t, champion.Unlocked)
		assert.True(t, champion.Progress.Equal(dec("5")))
		assert.False(t, findAchievement(t, states, domain.AchievementBattleVictor).Unlocked)
	})

	t.Run("DiversificationPro", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "rahul")

		for _, symbol := range []string{"PNCL", "SNCK", "STDY", "BOOK"} {
			_, err := env.trading.Buy(ctx, user.ID, symbol, 1)
			require.NoError(t, err)
		}
		states, err := env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, findAchievement(t, states, domain.AchievementEarlyInvestor).Unlocked)
		diversification := findAchievement(t, states, domain.AchievementDiversificationPro)
		assert.False(t, diversification.Unlocked)
		assert.True(t, diversification.Progress.Equal(dec("4")))

		_, err = env.trading.Buy(ctx, user.ID, "CAMP", 1)
		require.NoError(t, err)
		states, err = env.achievements.List(ctx, user.ID)
		require.NoError(t, err)
		assert.True(t, findAchievement(t, states, domain.AchievementDiversificationPro).Unlocked)
	})
}

type failingEvaluator struct{}

func (failingEvaluator) Evaluate(ctx context.Context, userID uuid.UUID) ([]domain.AchievementState, error) {
	return nil, errors.New("progress table locked")
}

func TestEvaluationFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "sam")
	trading := NewTradingService(env.store.Transactor(), env.store.Executor(), env.repos, failingEvaluator{}, env.logger)

	res, err := trading.Buy(ctx, user.ID, "BOOK", 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Holding.Shares)

	entry := env.logs.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "Achievement evaluation failed", entry.Message)
}
