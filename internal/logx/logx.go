// Package logx builds the structured logger shared by pkg/logic and the
// CLI, grounded on theRebelliousNerd-codenerd's use of go.uber.org/zap
// for all of its internal logging.
package logx

import "go.uber.org/zap"

// New returns a production zap logger when dev is false, or a more
// verbose development logger (console encoding, stack traces on Warn+)
// when dev is true. Callers that don't care pass false.
func New(dev bool) *zap.Logger {
	var logger *zap.Logger
	var err error
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		// zap's constructors only fail on a broken encoder config, which
		// these presets never produce; fall back to a no-op logger
		// rather than letting a logging failure take down the caller.
		return zap.NewNop()
	}
	return logger
}

// Nop returns a logger that discards everything, used as the default
// when no logger is supplied to a constructor.
func Nop() *zap.Logger { return zap.NewNop() }
