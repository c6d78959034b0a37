// Package logging provides the process-wide structured logger and
// fatal-error callback hooks. The core never logs
// directly to stdout/stderr; it goes through this package so a host can
// redirect, filter, or discard.
package logging

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

var (
	mu  sync.RWMutex
	log *slog.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	fatalHandler atomic.Value // func(error)
)

func init() {
	fatalHandler.Store(fatalFunc{fn: func(err error) {
		Logger().Error("unrecoverable error", "error", err)
	}})
}

// fatalFunc wraps a func(error) so it can live in an atomic.Value, which
// requires a consistent concrete type across Store calls.
type fatalFunc struct{ fn func(error) }

// SetLogger installs the package-wide logger. Passing nil restores the
// discarding default. This is the logging verbosity hook.
func SetLogger(l *slog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		return
	}
	log = l
}

// Logger returns the currently installed logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// SetFatalErrorHandler installs the callback the bindings façade invokes
// on an unrecoverable error (a failed or panicking Close). The façade then
// returns the error; it does not abort the process. In-process Go callers
// are never routed through this; they receive structured errors directly.
func SetFatalErrorHandler(fn func(error)) {
	if fn == nil {
		fatalHandler.Store(fatalFunc{fn: func(error) {}})
		return
	}
	fatalHandler.Store(fatalFunc{fn: fn})
}

// Fatal invokes the installed fatal-error handler. It does not itself
// abort the process; callers (the bindings façade) decide whether and how
// to terminate after the handler returns.
func Fatal(err error) {
	ff := fatalHandler.Load().(fatalFunc)
	ff.fn(err)
}
