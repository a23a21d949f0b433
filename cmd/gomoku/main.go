// Command gomoku plays gomoku against the move selector in a terminal, or speaks the text protocol on stdin/stdout
// with -gtp.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/gtp"
	"github.com/gorgonia/wuziqi/oracle"
	"github.com/gorgonia/wuziqi/selector"
	"github.com/muesli/termenv"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const version = "0.1"

var (
	size      = flag.Int("size", gomoku.DefaultSize, "board size")
	depth     = flag.Int("depth", 2, "alpha-beta search depth")
	timeout   = flag.Duration("timeout", gtp.DefaultTurnTimeout, "time the AI may think per move")
	useOracle = flag.Bool("oracle", false, "consult the chat completions oracle ("+oracle.EnvAPIKey+", "+oracle.EnvBaseURL+", "+oracle.EnvModel+")")
	gtpMode   = flag.Bool("gtp", false, "speak the text protocol on stdin/stdout instead of playing interactively")
	verbose   = flag.Bool("v", false, "debug logging")
)

func newSelector() (*selector.Selector, error) {
	conf := selector.DefaultConfig()
	conf.SearchDepth = *depth
	if !conf.IsValid() {
		return nil, errors.Errorf("invalid search depth %d", *depth)
	}
	var o selector.Oracle
	if *useOracle {
		client, err := oracle.New(oracle.ConfigFromEnv())
		if err != nil {
			return nil, err
		}
		o = client
		conf.OracleEnabled = true
	}
	return selector.New(conf, o).WithLogger(log.Logger), nil
}

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	sel, err := newSelector()
	if err != nil {
		log.Fatal().Err(err).Msg("selector")
	}
	e := gtp.New(gomoku.NewGame(*size), sel, "wuziqi", version, nil).WithLogger(log.Logger)
	e.TurnTimeout = *timeout

	if *gtpMode {
		if err := e.Run(os.Stdin, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("gtp")
		}
		return
	}
	out := termenv.NewOutput(os.Stdout)
	if err := interact(e, os.Stdin, out); err != nil {
		log.Fatal().Err(err).Msg("play")
	}
}

// exec runs one command on e and returns the body of its response.
func exec(e *gtp.Engine, cmd string) (string, error) {
	resp, _ := e.Exec(cmd)
	resp = strings.TrimRight(resp, "\n")
	switch {
	case strings.HasPrefix(resp, "?"):
		return "", errors.New(strings.TrimSpace(resp[1:]))
	case strings.HasPrefix(resp, "="):
		return strings.TrimSpace(resp[1:]), nil
	}
	return "", errors.Errorf("malformed response %q", resp)
}

const help = `Moves are row,col (for example 7,7). Other commands:
  undo   take back your last move and the reply
  new    start a new game
  help   show this message
  quit   leave`

// interact plays the human (black) against the selector (white) until quit or the end of r.
func interact(e *gtp.Engine, r io.Reader, out *termenv.Output) error {
	fmt.Fprintln(out, help)
	fmt.Fprint(out, render(out, e.Game()))
	s := bufio.NewScanner(r)
	for prompt(out); s.Scan(); prompt(out) {
		line := strings.ToLower(strings.TrimSpace(s.Text()))
		switch line {
		case "":
			continue
		case "quit", "q", "exit":
			return nil
		case "help", "?":
			fmt.Fprintln(out, help)
			continue
		case "new":
			if _, err := exec(e, "clear_board"); err != nil {
				return err
			}
			fmt.Fprint(out, render(out, e.Game()))
			continue
		case "undo":
			if err := undo(e); err != nil {
				warn(out, err)
			}
			fmt.Fprint(out, render(out, e.Game()))
			continue
		}

		if _, err := exec(e, "play black "+strings.Join(strings.Fields(line), "")); err != nil {
			warn(out, err)
			continue
		}
		if ended, _ := e.Game().Ended(); !ended {
			fmt.Fprintln(out, "thinking...")
			mv, err := exec(e, "genmove white")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "white plays %s\n", mv)
		}
		fmt.Fprint(out, render(out, e.Game()))
		announce(e, out)
	}
	return errors.WithStack(s.Err())
}

func undo(e *gtp.Engine) error {
	last, ok := e.Game().LastMove()
	if !ok {
		return errors.New("nothing to undo")
	}
	if last.Player == game.PlayerTwo {
		if _, err := exec(e, "undo"); err != nil {
			return err
		}
	}
	_, err := exec(e, "undo")
	return err
}

// announce prints the result if the game has ended.
func announce(e *gtp.Engine, out *termenv.Output) {
	ended, winner := e.Game().Ended()
	if !ended {
		return
	}
	var msg termenv.Style
	switch winner {
	case game.PlayerOne:
		msg = out.String("You win!").Foreground(out.Color("2")).Bold()
	case game.PlayerTwo:
		msg = out.String("White wins.").Foreground(out.Color("1")).Bold()
	default:
		msg = out.String("Draw.").Bold()
	}
	fmt.Fprintf(out, "%v Type new to play again.\n", msg)
}

func prompt(out *termenv.Output) { fmt.Fprint(out, out.String("> ").Faint()) }

func warn(out *termenv.Output, err error) {
	fmt.Fprintln(out, out.String(err.Error()).Foreground(out.Color("3")))
}
