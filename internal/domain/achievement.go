// internal/domain/achievement.go
package domain

// Achievement template ids.
const (
	AchievementFirstSteps         = "first-steps"
	AchievementQuizMaster         = "quiz-master"
	AchievementEarlyInvestor      = "early-investor"
	AchievementStreakWarrior      = "streak-warrior"
	AchievementMoneyMaster        = "money-master"
	AchievementDiversificationPro = "diversification-pro"
	AchievementQuizChampion       = "quiz-champion"
	AchievementTradingTycoon      = "trading-tycoon"
	AchievementBattleVictor       = "battle-victor"
)

// AchievementTemplate is the static definition of an unlockable badge.
type AchievementTemplate struct {
	ID          string `toml:"id" json:"id"`
	Name        string `toml:"name" json:"name"`
	Description string `toml:"description" json:"description"`
	Icon        string `toml:"icon" json:"icon"`
	XPReward    int    `toml:"xp_reward" json:"xpReward"`
	Total       int    `toml:"total" json:"total,omitempty"` // Zero when the badge has no counter
}

var achievementTemplates = []AchievementTemplate{
	{ID: AchievementFirstSteps, Name: "First Steps", Description: "Complete your first lesson", Icon: "🎖️", XPReward: 50},
	{ID: AchievementQuizMaster, Name: "Quiz Master", Description: "Pass 5 quizzes with 80%+", Icon: "🧠", XPReward: 100, Total: 5},
	{ID: AchievementEarlyInvestor, Name: "Early Investor", Description: "Buy your first stock", Icon: "📈", XPReward: 75},
	{ID: AchievementStreakWarrior, Name: "Streak Warrior", Description: "7-day login streak", Icon: "🔥", XPReward: 150, Total: 7},
	{ID: AchievementMoneyMaster, Name: "Money Master", Description: "Complete all beginner modules", Icon: "💰", XPReward: 200, Total: 5},
	{ID: AchievementDiversificationPro, Name: "Diversification Pro", Description: "Own shares in all 5 companies", Icon: "📊", XPReward: 250, Total: 5},
	{ID: AchievementQuizChampion, Name: "Quiz Champion", Description: "Score 100% on 10 quizzes", Icon: "🏆", XPReward: 300, Total: 10},
	{ID: AchievementTradingTycoon, Name: "Trading Tycoon", Description: "Make ₹1000 profit from stocks", Icon: "💼", XPReward: 500, Total: 1000},
	{ID: AchievementBattleVictor, Name: "Battle Victor", Description: "Win 10 quiz battles", Icon: "⚔️", XPReward: 200, Total: 10},
}

// AchievementTemplates returns a copy of the template table in display order.
func AchievementTemplates() []AchievementTemplate {
	return append([]AchievementTemplate(nil), achievementTemplates...)
}

// AchievementTemplateByID looks a template up by id.
func AchievementTemplateByID(id string) (AchievementTemplate, bool) {
	for _, t := range achievementTemplates {
		if t.ID == id {
			return t, true
		}
	}
	return AchievementTemplate{}, false
}
