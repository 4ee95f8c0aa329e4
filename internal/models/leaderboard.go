package model

// LeaderboardEntry est une ligne de classement renvoyée par l'engine.
// Rank commence à 1.
type LeaderboardEntry struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
	Rank   int64   `json:"rank"`
}

// UserPosition est la position d'un utilisateur dans un classement.
// Un utilisateur jamais scoré n'a pas de position (nil), pas un rang 0.
type UserPosition struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
	Rank   int64   `json:"rank"`
}

// ScoreEntry est une paire (utilisateur, score) utilisée pour resynchroniser
// un classement depuis le store de référence.
type ScoreEntry struct {
	UserID string  `json:"userId"`
	Score  float64 `json:"score"`
}
