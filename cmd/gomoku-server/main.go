// Command gomoku-server serves games against the move selector over HTTP and websockets.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorgonia/wuziqi/oracle"
	"github.com/gorgonia/wuziqi/selector"
	"github.com/gorgonia/wuziqi/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	conf := server.DefaultConfig()
	flag.StringVar(&conf.Addr, "addr", conf.Addr, "address to listen on")
	flag.IntVar(&conf.Size, "size", conf.Size, "board size of new games")
	flag.DurationVar(&conf.TurnTimeout, "timeout", conf.TurnTimeout, "time the AI may think per move")
	flag.IntVar(&conf.Selector.SearchDepth, "depth", conf.Selector.SearchDepth, "alpha-beta search depth")
	useOracle := flag.Bool("oracle", false, "consult the chat completions oracle ("+oracle.EnvAPIKey+", "+oracle.EnvBaseURL+", "+oracle.EnvModel+")")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var o selector.Oracle
	if *useOracle {
		client, err := oracle.New(oracle.ConfigFromEnv())
		if err != nil {
			log.Fatal().Err(err).Msg("oracle")
		}
		o = client
		conf.Selector.OracleEnabled = true
	}
	if !conf.IsValid() {
		log.Fatal().Interface("config", conf).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := server.New(conf, o, log.Logger).ListenAndServe(ctx); err != nil {
		log.Fatal().Err(err).Msg("server")
	}
}
