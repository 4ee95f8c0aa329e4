package model

// RateLimitResult est le verdict du rate limiter pour une requête.
// Reset est l'epoch (secondes) de fin de la fenêtre courante.
type RateLimitResult struct {
	Success   bool  `json:"success"`
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Reset     int64 `json:"reset"`
}
