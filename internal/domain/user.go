// internal/domain/user.go
package domain

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// XPPerLevel is the amount of experience separating two levels.
const XPPerLevel = 100

// User represents a learner. It owns exactly one Wallet and one Progress.
type User struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Email          string    `db:"email" json:"email"` // Unique, stored lower-cased
	PasswordHash   string    `db:"password_hash" json:"-"`
	Age            *int      `db:"age" json:"age,omitempty"`
	Grade          string    `db:"grade" json:"grade,omitempty"`
	School         string    `db:"school" json:"school,omitempty"`
	KnowledgeLevel string    `db:"knowledge_level" json:"knowledgeLevel"`
	Level          int       `db:"level" json:"level"`
	XP             int64     `db:"xp" json:"xp"`
	CurrentStreak  int       `db:"current_streak" json:"currentStreak"`
	LongestStreak  int       `db:"longest_streak" json:"longestStreak"`
	LastLogin      time.Time `db:"last_login" json:"lastLogin"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// NewUser creates a new User instance with a fresh identifier.
func NewUser(name, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(name),
		Email:          NormalizeEmail(email),
		PasswordHash:   passwordHash,
		KnowledgeLevel: "Beginner",
		Level:          1,
		CurrentStreak:  1,
		LongestStreak:  1,
		LastLogin:      now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// LevelForXP returns the level reached with the given experience.
func LevelForXP(xp int64) int {
	if xp < 0 {
		xp = 0
	}
	return int(xp/XPPerLevel) + 1
}

// AddXP adds experience and recomputes the level.
func (u *User) AddXP(amount int64) {
	u.XP += amount
	u.Level = LevelForXP(u.XP)
}

// RecordLogin updates the login streak by calendar-day difference and stamps LastLogin.
// Consecutive days extend the streak, a gap resets it to 1, a same-day login keeps it.
func (u *User) RecordLogin(now time.Time) {
	last := truncateDay(u.LastLogin.In(now.Location()))
	today := truncateDay(now)
	diff := int(math.Round(today.Sub(last).Hours() / 24))

	switch {
	case diff == 1:
		u.CurrentStreak++
		if u.CurrentStreak > u.LongestStreak {
			u.LongestStreak = u.CurrentStreak
		}
	case diff > 1:
		u.CurrentStreak = 1
	}
	u.LastLogin = now
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
