// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Default values shared with other packages
const (
	DefaultServerURL            = "http://localhost:5000"
	DefaultUserAgent            = "RetinaScan-Client"
	DefaultNotificationDuration = 3 * time.Second
	DefaultNotificationFade     = 300 * time.Millisecond
	DefaultLocale               = "en-US"
	DefaultDevServerListen      = "127.0.0.1:5000"
)

// setDefaultConfig sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("server.url", DefaultServerURL)

	v.SetDefault("http.timeout", time.Duration(0))
	v.SetDefault("http.useragent", DefaultUserAgent)

	v.SetDefault("notification.duration", DefaultNotificationDuration)
	v.SetDefault("notification.fade", DefaultNotificationFade)

	v.SetDefault("display.locale", DefaultLocale)
	v.SetDefault("display.timezone", "Local")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.dsn", "")

	v.SetDefault("devserver.listen", DefaultDevServerListen)
	v.SetDefault("devserver.sessionkey", "")
	v.SetDefault("devserver.database", "")
}
