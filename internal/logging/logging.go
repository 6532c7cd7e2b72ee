// Package logging provides a swappable, package-level structured logger
// for pdfnursery's internal packages. It defaults to a no-op logger so
// library use stays silent; callers (notably cmd/pdfnursery) opt into
// output with SetLogger.
package logging

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var logger atomic.Pointer[zap.SugaredLogger]

func discard() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// SetLogger installs l as the package-level logger. Passing nil restores
// the no-op logger. Safe for concurrent use.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger.Store(discard())
		return
	}
	logger.Store(l.Sugar())
}

// L returns the current package-level logger, defaulting to a no-op
// logger if none has been installed via SetLogger.
func L() *zap.SugaredLogger {
	l := logger.Load()
	if l == nil {
		l = discard()
		logger.Store(l)
	}
	return l
}
