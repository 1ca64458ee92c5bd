package dto

type LeaderboardEntry struct {
	Position  int     `json:"position"`
	Username  string  `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Points    int     `json:"points"`
}
