package model

// Payloads typés des collections suivies par le pipeline. Chaque handler
// décode Before/After d'un ChangeEvent vers le struct de sa collection,
// le dispatch reste donc vérifié statiquement plutôt que stringly-typed.

// OrderItem est une ligne de commande.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderDoc est le document d'une commande.
type OrderDoc struct {
	ID     string      `json:"id,omitempty"`
	UserID string      `json:"userId"`
	Items  []OrderItem `json:"items"`
	Total  float64     `json:"total"`
	Status string      `json:"status,omitempty"`
}

// UserDoc est le document d'un utilisateur (champs touchés par le data plane).
type UserDoc struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	TotalXP     int64  `json:"totalXP"`
	OrderCount  int64  `json:"orderCount,omitempty"`
	GamesPlayed int64  `json:"gamesPlayed,omitempty"`
}

// GameResultDoc est le document d'un résultat de partie.
type GameResultDoc struct {
	ID       string `json:"id,omitempty"`
	UserID   string `json:"userId"`
	GameType string `json:"gameType"`
	Score    int64  `json:"score"`
	XPEarned int64  `json:"xpEarned"`
}

// EventDoc est le document d'un événement (inscription, etc.).
type EventDoc struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	StartsAt string `json:"startsAt,omitempty"`
	Capacity int    `json:"capacity,omitempty"`
}
