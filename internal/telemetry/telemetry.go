// Package telemetry wires the single logrus logger instance threaded
// through the controller, so every internal package logs through one
// consistent, structured sink instead of bare fmt.Printf/log.Printf
// calls.
package telemetry

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is the shared logging surface; cmd/hyperdbg-ctrl constructs
// one at startup for the controller's own log lines. The internal
// packages do not take a Logger.
type Logger struct {
	*logrus.Logger
}

// New builds a Logger writing structured (text or JSON) output to
// os.Stderr so stdout stays free for command output.
func New(level string, json bool) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	if json {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Logger{Logger: l}
}

// WithErr attaches err under the "err" field, matching spec §7's
// short-stable-prefix convention for user-visible error messages.
func (l *Logger) WithErr(err error) *logrus.Entry {
	return l.WithField("err", err)
}
