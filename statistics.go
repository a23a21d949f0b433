package wuziqi

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/gorgonia/wuziqi/game"
)

// Statistics records the outcome of the self-play games of every training epoch.
type Statistics struct {
	Epochs    []int
	BlackWins []int
	WhiteWins []int
	Draws     []int
	Moves     []int // total moves played in the epoch
	Examples  []int
	Cost      []float32 // network cost after training on the epoch
}

func makeStatistics() Statistics {
	return Statistics{
		Epochs:    make([]int, 0, 64),
		BlackWins: make([]int, 0, 64),
		WhiteWins: make([]int, 0, 64),
		Draws:     make([]int, 0, 64),
		Moves:     make([]int, 0, 64),
		Examples:  make([]int, 0, 64),
		Cost:      make([]float32, 0, 64),
	}
}

func (s *Statistics) update(epoch int, episodes []Episode, examples int, cost float32) {
	var black, white, draws, moves int
	for _, ep := range episodes {
		switch ep.Winner {
		case game.PlayerOne:
			black++
		case game.PlayerTwo:
			white++
		default:
			draws++
		}
		moves += len(ep.Moves)
	}
	s.Epochs = append(s.Epochs, epoch)
	s.BlackWins = append(s.BlackWins, black)
	s.WhiteWins = append(s.WhiteWins, white)
	s.Draws = append(s.Draws, draws)
	s.Moves = append(s.Moves, moves)
	s.Examples = append(s.Examples, examples)
	s.Cost = append(s.Cost, cost)
}

// Dump writes the statistics as CSV, one row per epoch.
func (s *Statistics) Dump(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"epoch", "black_wins", "white_wins", "draws", "avg_moves", "examples", "cost"}); err != nil {
		return err
	}
	records := make([][]string, 0, len(s.Epochs))
	for i, epoch := range s.Epochs {
		games := s.BlackWins[i] + s.WhiteWins[i] + s.Draws[i]
		var avg float64
		if games > 0 {
			avg = float64(s.Moves[i]) / float64(games)
		}
		records = append(records, []string{
			strconv.Itoa(epoch),
			strconv.Itoa(s.BlackWins[i]),
			strconv.Itoa(s.WhiteWins[i]),
			strconv.Itoa(s.Draws[i]),
			strconv.FormatFloat(avg, 'f', 1, 64),
			strconv.Itoa(s.Examples[i]),
			strconv.FormatFloat(float64(s.Cost[i]), 'f', 4, 32),
		})
	}
	if err := w.WriteAll(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
