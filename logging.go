package smartpoll

import (
	"io"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Logger is the structured diagnostics sink a Poll logs to: gate failures
// (spec class 2), dispose diagnostics (spec class 4), and, at debug level,
// every phase transition. It carries no control-flow meaning — a disabled
// or nil Logger changes no other observable behavior.
type Logger = logiface.Logger[logiface.Event]

// defaultLogger returns a disabled logger: a concrete izerolog-backed
// logiface.Logger, generified and configured with LevelDisabled, rather
// than a bespoke no-op type. This keeps "no logging configured" and
// "logging configured but filtered out" the same code path.
func defaultLogger() *Logger {
	return izerolog.L.New(
		izerolog.WithZerolog(zerolog.New(io.Discard)),
		logiface.WithLevel[*izerolog.Event](logiface.LevelDisabled),
	).Logger()
}

// NewZerologLogger builds a Logger backed by github.com/rs/zerolog, writing
// to w at the given minimum level. It is provided as a convenience for
// callers who want real diagnostics without composing logiface/izerolog
// themselves.
func NewZerologLogger(w io.Writer, level logiface.Level) *Logger {
	return izerolog.L.New(
		izerolog.WithZerolog(zerolog.New(w).With().Timestamp().Logger()),
		logiface.WithLevel[*izerolog.Event](level),
	).Logger()
}

func logOrDefault(l *Logger) *Logger {
	if l == nil {
		return defaultLogger()
	}
	return l
}
