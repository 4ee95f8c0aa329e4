package utils

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ShopQuestApp/ShopQuest-backend/internal/kv"
)

// SessionDuration durée de validité d'une session invité (24h)
const SessionDuration = 24 * time.Hour

// CreateGuestSession crée une session invité dans le key-value store sous
// guest:session:{sessionId}. Best-effort comme tout le data plane : si le
// store est indisponible, le token est renvoyé quand même (session anonyme).
func CreateGuestSession(ctx context.Context, store kv.Store, ipAddress, userAgent string) string {
	sessionID := uuid.NewString()
	store.HSet(ctx, kv.GuestSessionKey(sessionID), map[string]string{
		"ip":        ipAddress,
		"userAgent": userAgent,
		"createdAt": time.Now().Format(time.RFC3339),
	})
	store.Expire(ctx, kv.GuestSessionKey(sessionID), SessionDuration)
	return sessionID
}

// GetGuestSession renvoie les attributs d'une session invité (vide si
// expirée ou store indisponible).
func GetGuestSession(ctx context.Context, store kv.Store, sessionID string) map[string]string {
	return store.HGetAll(ctx, kv.GuestSessionKey(sessionID))
}

// CountGameAttempt incrémente le compteur de tentatives du jour pour un jeu
// sous attempts:{game}:{userId}:{YYYY-MM-DD} et renvoie le nouveau total.
// La clé expire en fin de journée glissante.
func CountGameAttempt(ctx context.Context, store kv.Store, game, userID string) int64 {
	key := kv.AttemptsKey(game, userID, time.Now().Format("2006-01-02"))
	n := store.Incr(ctx, key)
	if n == 1 {
		store.Expire(ctx, key, 24*time.Hour)
	}
	return n
}
