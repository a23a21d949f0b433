// Package gtp is a line based text protocol for playing gomoku against the move selector.
// It follows the shape of the Go Text Protocol: an optional numeric id, a command and its arguments,
// answered by "= result" or "? error" and a blank line. Vertices are written "row,col".
package gtp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/selector"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTurnTimeout bounds the time genmove may think.
const DefaultTurnTimeout = 30 * time.Second

type Engine struct {
	g   *gomoku.Game
	sel *selector.Selector

	known map[string]Command

	ch   chan string
	ret  chan string
	done bool

	// TurnTimeout bounds genmove. 0 means no limit.
	TurnTimeout time.Duration

	name, version string
	logger        zerolog.Logger
}

// New creates an engine playing g. If known is nil the standard commands are used.
func New(g *gomoku.Game, sel *selector.Selector, name, version string, known map[string]Command) *Engine {
	if known == nil {
		known = StandardLib()
	}
	if g == nil {
		g = gomoku.NewGame(gomoku.DefaultSize)
	}
	return &Engine{
		g:           g,
		sel:         sel,
		known:       known,
		TurnTimeout: DefaultTurnTimeout,
		name:        name,
		version:     version,
		logger:      log.Logger,
	}
}

// WithLogger replaces the engine's logger.
func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	e.logger = l
	return e
}

// Start runs the engine on its own goroutine. Commands go in on input and one response per command comes out
// of output. output is closed after quit, or when input is closed.
func (e *Engine) Start() (input chan<- string, output <-chan string) {
	e.ch = make(chan string)
	e.ret = make(chan string)
	go e.start()
	return e.ch, e.ret
}

// Run reads commands from r line by line and writes the responses to w until quit or the end of r.
func (e *Engine) Run(r io.Reader, w io.Writer) error {
	s := bufio.NewScanner(r)
	for s.Scan() {
		resp, ok := e.Exec(s.Text())
		if !ok {
			continue
		}
		if _, err := io.WriteString(w, resp); err != nil {
			return errors.WithStack(err)
		}
		if e.done {
			return nil
		}
	}
	return errors.WithStack(s.Err())
}

// Exec executes one command line and returns the response. Empty lines and comments have no response.
func (e *Engine) Exec(cmd string) (response string, ok bool) {
	id, x, args, err := e.parse(cmd)
	if x == nil && err == nil {
		return "", false
	}
	if err != nil {
		return handleErr(id, err), true
	}
	id, result, err := x.Do(id, args, e)
	if err != nil {
		e.logger.Debug().Err(err).Str("command", cmd).Msg("gtp")
	}
	return handleResult(id, result, err), true
}

// Game returns the game being played.
func (e *Engine) Game() *gomoku.Game { return e.g }

func (e *Engine) start() {
	defer close(e.ret)
	for cmd := range e.ch {
		resp, ok := e.Exec(cmd)
		if !ok {
			continue
		}
		e.ret <- resp
		if e.done {
			return
		}
	}
}

// refer to this
// https://www.lysator.liu.se/%7Egunnar/gtp/gtp2-spec-draft2/gtp2-spec.html#SECTION00030000000000000000
func (e *Engine) parse(cmd string) (id int, x Command, args []string, err error) {
	cmd = preprocess(cmd)
	tokens := strings.Fields(cmd)
	id = -1
	if len(tokens) == 0 {
		return id, nil, nil, nil
	}
	if id, err = strconv.Atoi(tokens[0]); err == nil {
		// we've consumed ID
		tokens = tokens[1:]
	} else {
		// set err to nil because ID is optional
		err = nil
		id = -1
	}

	if len(tokens) == 0 {
		return id, nil, nil, nil // GNUGo some how does nothing when there are no tokens left. An ID may be passed in but it'll be ignored
	}

	var ok bool
	if x, ok = e.known[tokens[0]]; !ok {
		return id, nil, nil, errors.Errorf("Unknown command %q", tokens[0])
	}
	if len(tokens) > 1 {
		args = tokens[1:]
	}
	return
}

// preprocess lowercases the command and strips comments and control characters.
func preprocess(a string) string {
	if i := strings.IndexByte(a, '#'); i >= 0 {
		a = a[:i]
	}
	a = strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r < 32 || r == 127:
			return -1
		}
		return r
	}, a)
	return strings.ToLower(strings.TrimSpace(a))
}

func handleErr(id int, err error) string {
	if id != -1 {
		return fmt.Sprintf("? %d %v\n\n", id, err)
	}
	return fmt.Sprintf("? %v\n\n", err)
}

func handleResult(id int, result string, err error) string {
	if err != nil {
		return handleErr(id, err)
	}

	if id != -1 {
		return fmt.Sprintf("= %d %v\n\n", id, result)
	}
	return fmt.Sprintf("= %v\n\n", result)
}
