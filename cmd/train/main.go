// Command train runs AlphaZero style self-play and training for gomoku.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorgonia/wuziqi"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	configFile = flag.String("config", "", "YAML file with the training configuration")
	size       = flag.Int("size", 9, "board size, used when no config file is given")
	epochs     = flag.Int("epochs", 5, "number of self-play and training rounds")
	games      = flag.Int("games", 20, "self-play games per epoch")
	iters      = flag.Int("iters", 100, "training iterations per epoch")
	model      = flag.String("model", "wuziqi.model", "file the network is loaded from (if present) and saved to")
	stats      = flag.String("stats", "wuziqi.csv", "file the per-epoch statistics are written to")
	verbose    = flag.Bool("v", false, "debug logging")
)

func loadConfig(filename string, size int) (wuziqi.Config, error) {
	conf := wuziqi.DefaultConfig(size)
	if filename == "" {
		return conf, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return conf, errors.WithStack(err)
	}
	if err = yaml.Unmarshal(data, &conf); err != nil {
		return conf, errors.Wrapf(err, "parsing %v", filename)
	}
	if !conf.IsValid() {
		return conf, errors.Errorf("invalid configuration in %v", filename)
	}
	return conf, nil
}

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	conf, err := loadConfig(*configFile, *size)
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := wuziqi.New(conf)
	if _, err := os.Stat(*model); err == nil {
		if err = a.Load(*model); err != nil {
			log.Fatal().Err(err).Str("model", *model).Msg("load")
		}
		log.Info().Str("model", *model).Msg("resuming")
	}

	log.Info().Str("name", conf.Name).Int("size", conf.Size).Int("epochs", *epochs).Int("games", *games).Msg("training")
	learnErr := a.Learn(ctx, *epochs, *games, *iters)
	if learnErr != nil {
		log.Error().Err(learnErr).Int("epoch", a.Epoch()).Msg("learn")
	}
	if err := a.Save(*model); err != nil {
		log.Fatal().Err(err).Msg("save")
	}
	if err := a.Dump(*stats); err != nil {
		log.Fatal().Err(err).Msg("stats")
	}
	log.Info().Str("model", *model).Str("stats", *stats).Msg("saved")
	if learnErr != nil {
		os.Exit(1)
	}
}
