package resource

type CreateResourceDTO struct {
	SkillID         string `json:"skill_id"`
	Title           string `json:"title"`
	Type            string `json:"type"`
	Provider        string `json:"provider"`
	URL             string `json:"url"`
	Difficulty      string `json:"difficulty"`
	TargetLevel     int    `json:"target_level"`
	Visibility      string `json:"visibility"`
	DurationMinutes int    `json:"duration_minutes"`
}

type UpdateResourceDTO struct {
	Title           *string `json:"title"`
	Type            *string `json:"type"`
	Provider        *string `json:"provider"`
	URL             *string `json:"url"`
	Difficulty      *string `json:"difficulty"`
	TargetLevel     *int    `json:"target_level"`
	Visibility      *string `json:"visibility"`
	DurationMinutes *int    `json:"duration_minutes"`
}
