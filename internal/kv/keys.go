package kv

import "fmt"

// Espace de noms des clés. Le format doit rester identique à l'existant pour
// interopérer avec le contenu déjà présent dans le store.

// RateLimitKey construit ratelimit:{endpoint}:{identifier}:{windowStart}
func RateLimitKey(endpoint, identifier string, windowStart int64) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", endpoint, identifier, windowStart)
}

// LeaderboardKey construit leaderboard:{scope}:{period}[:{bucket}]
// scope vaut "global" ou "game:{name}", bucket est vide pour alltime.
func LeaderboardKey(scope, period, bucket string) string {
	if bucket == "" {
		return fmt.Sprintf("leaderboard:%s:%s", scope, period)
	}
	return fmt.Sprintf("leaderboard:%s:%s:%s", scope, period, bucket)
}

// GameSessionKey construit session:game:{gameType}:{userId}
func GameSessionKey(gameType, userID string) string {
	return fmt.Sprintf("session:game:%s:%s", gameType, userID)
}

// AttemptsKey construit attempts:{game}:{userId}:{YYYY-MM-DD}
func AttemptsKey(game, userID, date string) string {
	return fmt.Sprintf("attempts:%s:%s:%s", game, userID, date)
}

// GuestSessionKey construit guest:session:{sessionId}
func GuestSessionKey(sessionID string) string {
	return fmt.Sprintf("guest:session:%s", sessionID)
}

// AnalyticsKey construit analytics:{metric}:{period}
func AnalyticsKey(metric, period string) string {
	return fmt.Sprintf("analytics:%s:%s", metric, period)
}

// CacheKey construit cache:{type}:{id}
func CacheKey(typ, id string) string {
	return fmt.Sprintf("cache:%s:%s", typ, id)
}

// ChangeStreamKey construit cdc:{collection} (stream)
func ChangeStreamKey(collection string) string {
	return "cdc:" + collection
}

// ChangeChannel construit changes:{collection} (canal pub/sub)
func ChangeChannel(collection string) string {
	return "changes:" + collection
}

// LogEntryKey construit logs:{level}:{epochMs}
func LogEntryKey(level string, epochMs int64) string {
	return fmt.Sprintf("logs:%s:%d", level, epochMs)
}

// LogTimelineKey construit logs:timeline:{level}
func LogTimelineKey(level string) string {
	return "logs:timeline:" + level
}

// LogCountKey construit logs:count:{level}:today
func LogCountKey(level string) string {
	return "logs:count:" + level + ":today"
}

// LogCountTotalKey est le compteur global de logs
const LogCountTotalKey = "logs:count:total"
