package logger

import (
	"fmt"
	"time"

	"github.com/fatih/color"
)

func timestamp() string {
	return time.Now().Format("15:04:05")
}

// Info log une information générale (bleu)
func Info(message string, args ...interface{}) {
	color.Blue("[%s] %s", timestamp(), fmt.Sprintf(message, args...))
}

// Success log un succès (vert)
func Success(message string, args ...interface{}) {
	color.Green("[%s] ✓ %s", timestamp(), fmt.Sprintf(message, args...))
}

// Warning log un avertissement (jaune)
func Warning(message string, args ...interface{}) {
	color.Yellow("[%s] ⚠ %s", timestamp(), fmt.Sprintf(message, args...))
}

// Error log une erreur (rouge)
func Error(message string, args ...interface{}) {
	color.Red("[%s] ✗ %s", timestamp(), fmt.Sprintf(message, args...))
}

// Debug log un message de debug (cyan) - utilisé seulement en développement
func Debug(message string, args ...interface{}) {
	color.Cyan("[%s] DEBUG: %s", timestamp(), fmt.Sprintf(message, args...))
}

// Request log une requête HTTP avec durée
func Request(method, path string, statusCode int, duration time.Duration) {
	var c *color.Color
	switch {
	case statusCode >= 200 && statusCode < 300:
		c = color.New(color.FgGreen)
	case statusCode >= 300 && statusCode < 400:
		c = color.New(color.FgCyan)
	case statusCode >= 400 && statusCode < 500:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgRed)
	}

	// Formater la durée
	var durationStr string
	if duration < time.Millisecond {
		durationStr = fmt.Sprintf("%.0fµs", float64(duration.Microseconds()))
	} else if duration < time.Second {
		durationStr = fmt.Sprintf("%.0fms", float64(duration.Milliseconds()))
	} else {
		durationStr = fmt.Sprintf("%.2fs", duration.Seconds())
	}

	c.Printf("[%s] %-6s %-50s [%d] (%s)\n", timestamp(), method, path, statusCode, durationStr)
}
