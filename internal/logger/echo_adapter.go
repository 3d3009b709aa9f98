package logger

import (
	"fmt"
	"io"

	echo_log "github.com/labstack/gommon/log"
)

// EchoLoggerAdapter implements echo.Logger on top of a module logger so
// framework messages (recovered panics, startup errors) share the central
// log format.
type EchoLoggerAdapter struct {
	logger Logger
}

// NewEchoLoggerAdapter wraps logger. A nil logger discards output.
func NewEchoLoggerAdapter(logger Logger) *EchoLoggerAdapter {
	if logger == nil {
		logger = NewSlogLogger(io.Discard, LogLevelInfo, nil)
	}
	return &EchoLoggerAdapter{logger: logger}
}

// Output, prefix, level and header are owned by the central logger; the
// setters are no-ops.

func (a *EchoLoggerAdapter) Output() io.Writer { return io.Discard }
func (a *EchoLoggerAdapter) SetOutput(io.Writer) {}
func (a *EchoLoggerAdapter) Prefix() string { return "" }
func (a *EchoLoggerAdapter) SetPrefix(string) {}
func (a *EchoLoggerAdapter) Level() echo_log.Lvl { return echo_log.INFO }
func (a *EchoLoggerAdapter) SetLevel(echo_log.Lvl) {}
func (a *EchoLoggerAdapter) SetHeader(string) {}
func (a *EchoLoggerAdapter) Print(i ...any) { a.logger.Info(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Printf(f string, args ...any) { a.logger.Info(fmt.Sprintf(f, args...)) }
func (a *EchoLoggerAdapter) Printj(j echo_log.JSON) { a.logger.Info("echo", Any("data", j)) }
func (a *EchoLoggerAdapter) Debug(i ...any) { a.logger.Debug(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Debugf(f string, args ...any) { a.logger.Debug(fmt.Sprintf(f, args...)) }
func (a *EchoLoggerAdapter) Debugj(j echo_log.JSON) { a.logger.Debug("echo", Any("data", j)) }
func (a *EchoLoggerAdapter) Info(i ...any) { a.logger.Info(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Infof(f string, args ...any) { a.logger.Info(fmt.Sprintf(f, args...)) }
func (a *EchoLoggerAdapter) Infoj(j echo_log.JSON) { a.logger.Info("echo", Any("data", j)) }
func (a *EchoLoggerAdapter) Warn(i ...any) { a.logger.Warn(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Warnf(f string, args ...any) { a.logger.Warn(fmt.Sprintf(f, args...)) }
func (a *EchoLoggerAdapter) Warnj(j echo_log.JSON) { a.logger.Warn("echo", Any("data", j)) }
func (a *EchoLoggerAdapter) Error(i ...any) { a.logger.Error(fmt.Sprint(i...)) }
func (a *EchoLoggerAdapter) Errorf(f string, args ...any) { a.logger.Error(fmt.Sprintf(f, args...)) }
func (a *EchoLoggerAdapter) Errorj(j echo_log.JSON) { a.logger.Error("echo", Any("data", j)) }

// Fatal logs at ERROR and panics instead of exiting, so Recover and deferred
// shutdown still run.
func (a *EchoLoggerAdapter) Fatal(i ...any) {
	msg := fmt.Sprint(i...)
	a.logger.Error(msg)
	panic("echo fatal: " + msg)
}

func (a *EchoLoggerAdapter) Fatalf(f string, args ...any) {
	a.Fatal(fmt.Sprintf(f, args...))
}

func (a *EchoLoggerAdapter) Fatalj(j echo_log.JSON) {
	a.Fatal(fmt.Sprintf("%v", j))
}

func (a *EchoLoggerAdapter) Panic(i ...any) {
	msg := fmt.Sprint(i...)
	a.logger.Error(msg)
	panic(msg)
}

func (a *EchoLoggerAdapter) Panicf(f string, args ...any) {
	a.Panic(fmt.Sprintf(f, args...))
}

func (a *EchoLoggerAdapter) Panicj(j echo_log.JSON) {
	a.Panic(fmt.Sprintf("%v", j))
}
