// Package telemetry initializes optional Sentry error reporting.
package telemetry

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tphakala/retinascan/internal/conf"
	"github.com/tphakala/retinascan/internal/errors"
	"github.com/tphakala/retinascan/internal/logger"
	"github.com/tphakala/retinascan/internal/privacy"
)

var initialized atomic.Bool

// Options carries what Init needs beyond the settings.
type Options struct {
	Version   string
	Transport sentry.Transport // nil uses the default HTTP transport
}

// Init configures Sentry and installs the enhanced error reporter when
// telemetry is enabled. It is a no-op otherwise.
func Init(settings *conf.Settings, opts Options) error {
	if !settings.Telemetry.Enabled {
		errors.SetTelemetryReporter(nil)
		GetLogger().Debug("telemetry disabled")
		return nil
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.Telemetry.DSN,
		SampleRate:       1.0,
		AttachStacktrace: false,
		Environment:      environment(settings),
		ServerName:       "",
		Release:          fmt.Sprintf("retinascan@%s", opts.Version),
		Transport:        opts.Transport,
		BeforeSend:       beforeSend,
	})
	if err != nil {
		return errors.New(fmt.Errorf("sentry initialization failed: %w", err)).
			Component("telemetry").
			Category(errors.CategoryConfiguration).
			Build()
	}

	errors.SetTelemetryReporter(errors.NewSentryReporter(true))
	initialized.Store(true)
	GetLogger().Info("telemetry enabled", logger.String("environment", environment(settings)))
	return nil
}

// beforeSend strips data that could identify the user or their images.
func beforeSend(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	event.ServerName = ""
	event.User = sentry.User{}
	event.Request = nil
	event.Modules = nil
	event.Message = scrub(event.Message)
	for i := range event.Exception {
		event.Exception[i].Value = scrub(event.Exception[i].Value)
	}
	return event
}

func scrub(s string) string {
	return privacy.ScrubMessage(logger.RedactSensitiveData(s))
}

func environment(settings *conf.Settings) string {
	if settings.Debug {
		return "development"
	}
	return "production"
}

// Flush waits up to timeout for queued events. Safe to call when disabled.
func Flush(timeout time.Duration) {
	if !initialized.Load() {
		return
	}
	if !sentry.Flush(timeout) {
		GetLogger().Warn("telemetry flush timed out", logger.Duration("timeout", timeout))
	}
}

// GetLogger returns the telemetry module logger.
func GetLogger() logger.Logger {
	return logger.Global().Module("telemetry")
}
