package gtp

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gorgonia/wuziqi/game"
	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/threat"
	"github.com/pkg/errors"
)

// MaxSize is the largest board boardsize accepts.
const MaxSize = 25

type Command interface {
	Do(id int, args []string, e *Engine) (int, string, error)
}

type stdlib func(e *Engine) string

type stdlib2 func(e *Engine, args []string) (string, error)

func (f stdlib) Do(id int, args []string, e *Engine) (int, string, error) {
	str := f(e)
	return id, str, nil
}

func (f stdlib2) Do(id int, args []string, e *Engine) (int, string, error) {
	str, err := f(e, args)
	return id, str, err
}

func protocolVersion(e *Engine) string { return "2" }
func name(e *Engine) string            { return e.name }
func version(e *Engine) string         { return e.version }

func listCommands(e *Engine) string {
	names := make([]string, 0, len(e.known))
	for c := range e.known {
		names = append(names, c)
	}
	sort.Strings(names)
	return strings.Join(names, "\n")
}

func quit(e *Engine) string       { e.done = true; return "" }
func clearBoard(e *Engine) string { e.g.Reset(); return "" }
func showboard(e *Engine) string  { return fmt.Sprintf("\n%v", e.g) }

func undo(e *Engine, args []string) (string, error) {
	return "", e.g.UndoLastMove()
}

func knownCommand(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"known_command\"")
	}
	if _, ok := e.known[args[0]]; ok {
		return "true", nil
	}
	return "false", nil
}

func boardSize(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"boardsize\"")
	}
	size, err := strconv.Atoi(args[0])
	if err != nil {
		return "", errors.WithMessage(err, "Unable to parse first argument of boardsize")
	}
	if size < gomoku.WinLength || size > MaxSize {
		return "", errors.Errorf("unacceptable size %d. Sizes range from %d to %d", size, gomoku.WinLength, MaxSize)
	}
	e.g = gomoku.NewGame(size)
	return "", nil
}

func play(e *Engine, args []string) (string, error) {
	if len(args) < 2 {
		return "", errors.New("Not enough arguments for \"play\"")
	}
	p, err := parseColour(args[0])
	if err != nil {
		return "", err
	}
	c, err := parseVertex(args[1])
	if err != nil {
		return "", err
	}
	if err = e.g.Play(p, c); err != nil {
		return "", errors.WithMessage(err, "illegal move")
	}
	return "", nil
}

func genmove(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"genmove\"")
	}
	if e.sel == nil {
		return "", errors.New("Unable to generate moves. No selector found")
	}
	p, err := parseColour(args[0])
	if err != nil {
		return "", err
	}
	if ended, _ := e.g.Ended(); ended {
		return "", errors.WithStack(game.ErrGameOver)
	}
	if p != e.g.ToMove() {
		return "", errors.Errorf("it is %v's turn, not %v's", e.g.ToMove(), p)
	}

	ctx := context.Background()
	if e.TurnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.TurnTimeout)
		defer cancel()
	}
	d, err := e.sel.SelectMove(ctx, e.g.Board(), p)
	if err != nil {
		return "", err
	}
	if err = e.g.Play(p, d.Move); err != nil {
		return "", errors.WithMessagef(err, "selector chose %v", d)
	}
	e.logger.Info().Str("player", fmt.Sprintf("%v", p)).Str("move", fmt.Sprintf("%v", d.Move)).Str("stage", d.Stage.String()).Msg("genmove")
	return fmt.Sprintf("%v", d.Move), nil
}

// evaluate scores an empty cell for both players.
func evaluate(e *Engine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("Not enough arguments for \"evaluate\"")
	}
	c, err := parseVertex(args[0])
	if err != nil {
		return "", err
	}
	b := e.g.Board()
	if !b.InBounds(c) {
		return "", errors.Wrapf(game.ErrInvalidMove, "%v is off the board", c)
	}
	return fmt.Sprintf("black %d white %d", threat.EvaluatePoint(b, c, game.PlayerOne), threat.EvaluatePoint(b, c, game.PlayerTwo)), nil
}

// score evaluates the whole board for a player, white unless given.
func score(e *Engine, args []string) (string, error) {
	p := game.PlayerTwo
	if len(args) > 0 {
		var err error
		if p, err = parseColour(args[0]); err != nil {
			return "", err
		}
	}
	return strconv.Itoa(threat.EvaluateBoard(e.g.Board(), p)), nil
}

func parseColour(a string) (game.Player, error) {
	switch a {
	case "b", "black", "x":
		return game.PlayerOne, nil
	case "w", "white", "o":
		return game.PlayerTwo, nil
	}
	return game.NoPlayer, errors.Errorf("invalid color %q", a)
}

// parseVertex parses "row,col".
func parseVertex(a string) (game.Coord, error) {
	parts := strings.Split(a, ",")
	if len(parts) != 2 {
		return game.Coord{}, errors.Errorf("invalid vertex %q. Expected row,col", a)
	}
	row, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return game.Coord{}, errors.Wrapf(err, "invalid vertex %q", a)
	}
	col, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return game.Coord{}, errors.Wrapf(err, "invalid vertex %q", a)
	}
	return game.Coord{Row: row, Col: col}, nil
}

func StandardLib() map[string]Command {
	return map[string]Command{
		"protocol_version": stdlib(protocolVersion),
		"name":             stdlib(name),
		"version":          stdlib(version),
		"list_commands":    stdlib(listCommands),
		"quit":             stdlib(quit),
		"clear_board":      stdlib(clearBoard),
		"showboard":        stdlib(showboard),

		"undo":          stdlib2(undo),
		"known_command": stdlib2(knownCommand),
		"boardsize":     stdlib2(boardSize),
		"play":          stdlib2(play),
		"genmove":       stdlib2(genmove),
		"evaluate":      stdlib2(evaluate),
		"score":         stdlib2(score),
	}
}
