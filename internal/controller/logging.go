package controller

import "github.com/tphakala/retinascan/internal/logger"

// GetLogger returns the controller module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("controller")
}
