// internal/domain/progress.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// QuizScore is the latest result of one quiz. A resubmission overwrites it.
type QuizScore struct {
	QuizID    string    `json:"quizId"`
	Score     int       `json:"score"`
	Total     int       `json:"total"`
	TimeSpent float64   `json:"timeSpent"` // Seconds
	Date      time.Time `json:"date"`
}

// Ratio is score/total, zero for an empty quiz.
func (q QuizScore) Ratio() float64 {
	if q.Total <= 0 {
		return 0
	}
	return float64(q.Score) / float64(q.Total)
}

// Perfect reports whether every answer was correct.
func (q QuizScore) Perfect() bool {
	return q.Total > 0 && q.Score == q.Total
}

// QuizScores maps quiz id to its latest score. Stored as JSONB.
type QuizScores map[string]QuizScore

// Scan implements sql.Scanner.
func (q *QuizScores) Scan(src any) error {
	return scanJSON(src, q)
}

// Value implements driver.Valuer.
func (q QuizScores) Value() (driver.Value, error) {
	return jsonValue(q)
}

// AchievementState is one user's standing on one achievement template.
type AchievementState struct {
	AchievementTemplate
	Unlocked   bool            `json:"unlocked"`
	UnlockedAt *time.Time      `json:"unlockedAt,omitempty"`
	Progress   decimal.Decimal `json:"progress"`
}

// Achievements maps template id to state. Stored as JSONB.
type Achievements map[string]AchievementState

// Scan implements sql.Scanner.
func (a *Achievements) Scan(src any) error {
	return scanJSON(src, a)
}

// Value implements driver.Valuer.
func (a Achievements) Value() (driver.Value, error) {
	return jsonValue(a)
}

// jsonValue encodes v as a JSON string. lib/pq sends []byte as bytea, which jsonb rejects.
func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func scanJSON(src any, dest any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dest)
	}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, dest)
}

// Progress tracks a user's learning and achievements. There is exactly one per user.
type Progress struct {
	ID               int64          `db:"id" json:"id"`
	UserID           uuid.UUID      `db:"user_id" json:"userId"`
	CurrentModule    int            `db:"current_module" json:"currentModule"`
	CompletedModules pq.Int64Array  `db:"completed_modules" json:"completedModules"`
	CompletedLessons pq.StringArray `db:"completed_lessons" json:"completedLessons"` // "module.lesson" keys
	QuizScores       QuizScores     `db:"quiz_scores" json:"quizScores"`
	Achievements     Achievements   `db:"achievements" json:"-"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

// NewProgress creates a progress record with every achievement slot present.
func NewProgress(userID uuid.UUID) *Progress {
	now := time.Now().UTC()
	p := &Progress{
		UserID:           userID,
		CurrentModule:    1,
		CompletedModules: pq.Int64Array{},
		CompletedLessons: pq.StringArray{},
		QuizScores:       QuizScores{},
		Achievements:     Achievements{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	p.EnsureAchievementSlots()
	return p
}

// EnsureAchievementSlots backfills a locked, zero-progress slot for every template
// missing from the record. It reports whether anything was added.
func (p *Progress) EnsureAchievementSlots() bool {
	if p.Achievements == nil {
		p.Achievements = Achievements{}
	}
	added := false
	for _, t := range achievementTemplates {
		if _, ok := p.Achievements[t.ID]; ok {
			continue
		}
		p.Achievements[t.ID] = AchievementState{AchievementTemplate: t, Progress: decimal.Zero}
		added = true
	}
	return added
}

// UpdateAchievement overwrites the progress counter and unlocks the achievement when
// asked to. An unlocked achievement never locks again. Unknown ids are ignored.
func (p *Progress) UpdateAchievement(id string, unlocked bool, progress decimal.Decimal, now time.Time) {
	state, ok := p.Achievements[id]
	if !ok {
		return
	}
	state.Progress = progress
	if unlocked && !state.Unlocked {
		state.Unlocked = true
		at := now
		state.UnlockedAt = &at
	}
	p.Achievements[id] = state
}

// AchievementList returns the states in template order, followed by any
// states whose template no longer exists, sorted by id.
func (p *Progress) AchievementList() []AchievementState {
	out := make([]AchievementState, 0, len(p.Achievements))
	for _, t := range achievementTemplates {
		if s, ok := p.Achievements[t.ID]; ok {
			out = append(out, s)
		}
	}
	var extra []string
	for id := range p.Achievements {
		if _, ok := AchievementTemplateByID(id); !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	for _, id := range extra {
		out = append(out, p.Achievements[id])
	}
	return out
}

// CompleteLesson adds the lesson key once. It reports whether it was new.
func (p *Progress) CompleteLesson(key string) bool {
	if slices.Contains(p.CompletedLessons, key) {
		return false
	}
	p.CompletedLessons = append(p.CompletedLessons, key)
	return true
}

// CompleteModule adds the module id once. It reports whether it was new.
func (p *Progress) CompleteModule(moduleID int) bool {
	if slices.Contains(p.CompletedModules, int64(moduleID)) {
		return false
	}
	p.CompletedModules = append(p.CompletedModules, int64(moduleID))
	return true
}

// RecordQuizScore stores score as the latest result for its quiz.
func (p *Progress) RecordQuizScore(score QuizScore) {
	if p.QuizScores == nil {
		p.QuizScores = QuizScores{}
	}
	p.QuizScores[score.QuizID] = score
}

// LessonKey renders the "module.lesson" key stored in CompletedLessons.
func LessonKey(moduleID int, lessonID string) string {
	return fmt.Sprintf("%d.%s", moduleID, lessonID)
}
