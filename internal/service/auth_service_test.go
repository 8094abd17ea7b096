// internal/service/auth_service_test.go
package service

import (
	"context"
	"testing"
	"time"

	"coinquest/internal/util"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func TestSignup(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesUserWalletAndProgress", func(t *testing.T) {
		env := newTestEnv(t)

		res, err := env.auth.Signup(ctx, SignupInput{
			Name:     "  Priya  ",
			Email:    "Priya@Example.com",
			Password: "secret123",
			Age:      intPtr(12),
			School:   "Green Valley",
		})
		require.NoError(t, err)
		assert.Equal(t, "Priya", res.User.Name)
		assert.Equal(t, "priya@example.com", res.User.Email)
		assert.Equal(t, 1, res.User.Level)
		assert.Equal(t, 1, res.User.CurrentStreak)
		assert.NotEqual(t, "secret123", res.User.PasswordHash)

		userID, err := env.tokens.Parse(res.Token)
		require.NoError(t, err)
		assert.Equal(t, res.User.ID, userID)

		_, err = env.repos.Wallets.GetWalletByUserID(ctx, env.store.Executor(), res.User.ID)
		assert.NoError(t, err)
		progress, err := env.repos.Progress.GetProgressByUserID(ctx, env.store.Executor(), res.User.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, progress.CurrentModule)
	})

	t.Run("DuplicateEmail", func(t *testing.T) {
		env := newTestEnv(t)
		env.signup(t, "kavya")

		_, err := env.auth.Signup(ctx, SignupInput{Name: "Other", Email: "KAVYA@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, util.ErrDuplicateEntry)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		env := newTestEnv(t)
		cases := map[string]SignupInput{
			"MissingName":   {Email: "a@example.com", Password: "secret123"},
			"BadEmail":      {Name: "A", Email: "not-an-email", Password: "secret123"},
			"ShortPassword": {Name: "A", Email: "a@example.com", Password: "123"},
			"TooYoung":      {Name: "A", Email: "a@example.com", Password: "secret123", Age: intPtr(4)},
			"TooOld":        {Name: "A", Email: "a@example.com", Password: "secret123", Age: intPtr(19)},
		}
		for name, input := range cases {
			t.Run(name, func(t *testing.T) {
				_, err := env.auth.Signup(ctx, input)
				assert.ErrorIs(t, err, util.ErrInvalidInput)
			})
		}
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("ValidCredentials", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "hari")

		res, err := env.auth.Login(ctx, "HARI@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, res.User.ID)
		assert.NotEmpty(t, res.Token)
	})

	t.Run("WrongPasswordOrEmail", func(t *testing.T) {
		env := newTestEnv(t)
		env.signup(t, "gita")

		_, err := env.auth.Login(ctx, "gita@example.com", "wrong-password")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
		_, err = env.auth.Login(ctx, "nobody@example.com", "secret123")
		assert.ErrorIs(t, err, util.ErrInvalidCredentials)
	})

	t.Run("ConsecutiveDayExtendsStreak", func(t *testing.T) {
		env := newTestEnv(t)
		user := env.signup(t, "om")
		svc := env.auth.(*authService)

		day := user.LastLogin.Add(24 * time.Hour)
		svc.now = func() time.Time { return day }
		res, err := env.auth.Login(ctx, "om@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, 2, res.User.CurrentStreak)
		assert.Equal(t, 2, res.User.LongestStreak)

		svc.now = func() time.Time { return day.Add(3 * 24 * time.Hour) }
		res, err = env.auth.Login(ctx, "om@example.com", "secret123")
		require.NoError(t, err)
		assert.Equal(t, 1, res.User.CurrentStreak)
		assert.Equal(t, 2, res.User.LongestStreak)
	})
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "lata")

	token, err := env.tokens.Sign(user.ID)
	require.NoError(t, err)
	got, err := env.auth.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = env.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	orphan, err := env.tokens.Sign(uuid.New())
	require.NoError(t, err)
	_, err = env.auth.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, util.ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "uma")

	updated, err := env.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{
		School: strPtr(" Hillside "),
		Age:    intPtr(14),
	})
	require.NoError(t, err)
	assert.Equal(t, "Hillside", updated.School)
	require.NotNil(t, updated.Age)
	assert.Equal(t, 14, *updated.Age)
	assert.Equal(t, "uma", updated.Name)

	_, err = env.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: strPtr("   ")})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = env.auth.UpdateProfile(ctx, user.ID, ProfileUpdate{Age: intPtr(30)})
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = env.auth.UpdateProfile(ctx, uuid.New(), ProfileUpdate{Name: strPtr("x")})
	assert.ErrorIs(t, err, util.ErrUserNotFound)

	profile, err := env.auth.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hillside", profile.School)
}

func TestAddXP(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.signup(t, "raj")

	updated, err := env.auth.AddXP(ctx, user.ID, 250)
	require.NoError(t, err)
	assert.Equal(t, int64(250), updated.XP)
	assert.Equal(t, 3, updated.Level)

	_, err = env.auth.AddXP(ctx, user.ID, 0)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = env.auth.AddXP(ctx, user.ID, MaxXPGrant+1)
	assert.ErrorIs(t, err, util.ErrInvalidInput)
	_, err = env.auth.AddXP(ctx, uuid.New(), 10)
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
