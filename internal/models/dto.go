package models

// QuestionDTO is the wire form of a question. The correct answer and the
// explanation are only included once the client may see them (after play).
type QuestionDTO struct {
	ID            uint       `json:"id"`
	Text          string     `json:"text"`
	Options       []string   `json:"options"`
	Category      Category   `json:"category"`
	Difficulty    Difficulty `json:"difficulty"`
	CorrectAnswer *int       `json:"correct_answer,omitempty"`
	Explanation   string     `json:"explanation,omitempty"`
}

func (q Question) ToDTO(revealAnswer bool) QuestionDTO {
	dto := QuestionDTO{
		ID:         q.ID,
		Text:       q.Text,
		Options:    q.Options,
		Category:   q.Category,
		Difficulty: q.Difficulty,
	}
	if revealAnswer {
		answer := q.CorrectAnswer
		dto.CorrectAnswer = &answer
		dto.Explanation = q.Explanation
	}
	return dto
}

// ProfileDTO is the public view of a profile.
type ProfileDTO struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatar_url"`
	FavoriteTeam string `json:"favorite_team"`
	XP           int    `json:"xp"`
	Level        int    `json:"level"`
	StreakDays   int    `json:"streak_days"`
}

func (p Profile) ToDTO() ProfileDTO {
	return ProfileDTO{
		ID:           p.ID,
		Name:         p.Name,
		AvatarURL:    p.AvatarURL,
		FavoriteTeam: p.FavoriteTeam,
		XP:           p.XP,
		Level:        p.Level,
		StreakDays:   p.StreakDays,
	}
}
