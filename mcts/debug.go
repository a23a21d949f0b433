//go:build debug
// +build debug

package mcts

import (
	"bytes"

	"github.com/rs/zerolog"
)

// lumberjack records the search trace when built with the debug tag.
type lumberjack struct {
	buf    *bytes.Buffer
	logger zerolog.Logger
}

func makeLumberJack() lumberjack {
	buf := new(bytes.Buffer)
	return lumberjack{
		buf:    buf,
		logger: zerolog.New(buf).With().Timestamp().Logger(),
	}
}

func (l *lumberjack) log(msg string, args ...interface{}) { l.logger.Debug().Msgf(msg, args...) }

func (l *lumberjack) Reset() { l.buf.Reset() }

// Log returns the trace of the last search.
func (l *lumberjack) Log() string { return l.buf.String() }
