package devserver

import "github.com/tphakala/retinascan/internal/logger"

// GetLogger returns the devserver module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("devserver")
}
