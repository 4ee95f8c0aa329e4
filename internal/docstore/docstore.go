// Package docstore expose le store de référence (PostgreSQL) sous forme de
// collections de documents JSONB : create/read/update, incrément atomique de
// champ numérique, et persistance définitive des logs d'erreur.
package docstore

import (
	"context"
	"errors"

	model "github.com/ShopQuestApp/ShopQuest-backend/internal/models"
)

// ErrNotFound indique qu'un document n'existe pas dans la collection.
var ErrNotFound = errors.New("document not found")

// Store est l'interface consommée par le data plane. Contrairement au
// key-value store, les erreurs sont renvoyées au caller : c'est à chaque
// side effect de décider comment dégrader.
type Store interface {
	// Create insère un document dans une collection.
	Create(ctx context.Context, collection, id string, doc interface{}) error
	// Get décode le document dans dest. ErrNotFound si absent.
	Get(ctx context.Context, collection, id string, dest interface{}) error
	// Update remplace le document. ErrNotFound si absent.
	Update(ctx context.Context, collection, id string, doc interface{}) error
	// IncrementField ajoute delta à un champ numérique du document, de façon
	// atomique côté store (utilisé pour stock, orderCount, totalXP).
	IncrementField(ctx context.Context, collection, id, field string, delta int64) error
	// InsertErrorLog persiste une entrée de log error de façon permanente.
	InsertErrorLog(ctx context.Context, entry model.LogEntry) error
	// LeaderboardSource lit les paires (userId, totalXP) de la collection
	// users pour resynchroniser un classement.
	LeaderboardSource(ctx context.Context) ([]model.ScoreEntry, error)
}
