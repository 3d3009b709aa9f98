package conf

import "github.com/tphakala/retinascan/internal/logger"

// GetLogger returns a logger scoped to the configuration module.
func GetLogger() logger.Logger {
	return logger.Global().Module("conf")
}
