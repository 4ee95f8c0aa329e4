package model

// Niveaux de log de l'agrégateur.
const (
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"
)

// LogMetadata contient le contexte requête d'une entrée de log.
type LogMetadata struct {
	IP        string `json:"ip,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Path      string `json:"path,omitempty"`
}

// LogEntry est une entrée de log applicative. Stockée 24h dans le key-value
// store ; les entrées error sont en plus persistées définitivement dans le
// store de référence.
type LogEntry struct {
	Timestamp int64                  `json:"timestamp"` // epoch ms
	Level     string                 `json:"level"`
	Event     string                 `json:"event"`
	UserID    string                 `json:"userId,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Metadata  *LogMetadata           `json:"metadata,omitempty"`
}

// LogStats sont les compteurs du jour par niveau plus le total cumulé.
type LogStats struct {
	Info  int64 `json:"info"`
	Warn  int64 `json:"warn"`
	Error int64 `json:"error"`
	Total int64 `json:"total"`
}
