package model

import "encoding/json"

// Operation est le type de mutation capturée sur une collection.
type Operation string

const (
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// Collections suivies par le pipeline de capture. Une collection absente de
// cette liste est capturée dans le stream mais n'a pas de side effects.
const (
	CollectionOrders      = "orders"
	CollectionUsers       = "users"
	CollectionGameResults = "gameResults"
	CollectionEvents      = "events"
	CollectionProducts    = "products"
	CollectionErrorLogs   = "errorLogs"
)

// ChangeEvent est un événement de mutation d'un document. Invariant :
// create → After seul, delete → Before seul, update → les deux.
// L'événement est transitoire (rétention du stream), seules ses conséquences
// sont durables.
type ChangeEvent struct {
	Collection string          `json:"collection"`
	DocumentID string          `json:"documentId"`
	Operation  Operation       `json:"operation"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Timestamp  int64           `json:"timestamp"` // epoch ms
	UserID     string          `json:"userId,omitempty"`
}
