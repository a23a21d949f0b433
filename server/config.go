package server

import (
	"time"

	"github.com/gorgonia/wuziqi/game/gomoku"
	"github.com/gorgonia/wuziqi/selector"
)

// Config configures the game server.
type Config struct {
	Addr string
	Size int

	// TurnTimeout bounds the time the AI may think. 0 means no limit.
	TurnTimeout time.Duration

	Selector selector.Config
}

func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		Size:        gomoku.DefaultSize,
		TurnTimeout: 30 * time.Second,
		Selector:    selector.DefaultConfig(),
	}
}

func (c Config) IsValid() bool {
	return c.Size >= gomoku.WinLength && c.TurnTimeout >= 0 && c.Selector.IsValid()
}
