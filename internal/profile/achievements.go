package profile

// Achievement describes one unlockable badge.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

const (
	AchievementFirstQuiz       = "first_quiz"
	AchievementPerfectRound    = "perfect_round"
	AchievementStreak7         = "streak_7"
	AchievementStreak30        = "streak_30"
	AchievementBrasilExpert    = "brasil_expert"
	AchievementFinalsMaster    = "finals_master"
	AchievementChallenger      = "challenger"
	AchievementLevel10         = "level_10"
	AchievementLevel50         = "level_50"
	AchievementLevel100        = "level_100"
	AchievementSocialButterfly = "social_butterfly"
	AchievementEarlyBird       = "early_bird"
)

// Catalog lists every achievement the app knows about.
var Catalog = []Achievement{
	{AchievementFirstQuiz, "Estreante", "Complete seu primeiro quiz", "🎯"},
	{AchievementPerfectRound, "Rodada Perfeita", "Acerte todas no modo Desafio (15/15)", "⭐"},
	{AchievementStreak7, "Dedicado", "Jogue 7 dias seguidos", "🔥"},
	{AchievementStreak30, "Fanático", "Jogue 30 dias seguidos", "🏆"},
	{AchievementBrasilExpert, "Especialista Brasil", "Acerte 50 perguntas sobre Brasil", "🇧🇷"},
	{AchievementFinalsMaster, "Mestre das Finais", "Acerte 30 perguntas sobre finais", "🥇"},
	{AchievementChallenger, "Desafiante", "Vença 10 duelos", "⚔️"},
	{AchievementLevel10, "Titular", "Alcance nível 10", "🎽"},
	{AchievementLevel50, "Craque", "Alcance nível 50", "⚽"},
	{AchievementLevel100, "Lenda", "Alcance nível 100", "👑"},
	{AchievementSocialButterfly, "Influenciador", "Compartilhe 10 resultados", "📱"},
	{AchievementEarlyBird, "Madrugador", "Jogue o quiz diário antes das 8h", "🌅"},
}

// CatalogByID returns the achievement definition, ok=false for unknown ids.
func CatalogByID(id string) (Achievement, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
