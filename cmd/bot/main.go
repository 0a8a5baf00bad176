package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/connectn/bot"
	"github.com/domino14/connectn/config"
)

const (
	GracefulShutdownTimeout = 20 * time.Second
)

func main() {
	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		log.Fatal().Err(err).Msg("bad-config")
	}
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Info().Interface("config", cfg.AllSettings()).Msg("loaded-config")

	nc, err := nats.Connect(cfg.GetString(config.ConfigNatsURL))
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-connect-to-nats")
	}
	defer nc.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- bot.Main(ctx, nc, cfg.GetString(config.ConfigBotChannel), bot.NewBot(cfg))
	}()

	select {
	case err := <-done:
		// Main only returns early on a subscription failure.
		if err != nil {
			log.Fatal().Err(err).Msg("bot-failed")
		}
		return
	case <-ctx.Done():
		log.Info().Msg("got quit signal...")
	}

	select {
	case err := <-done:
		if err != nil {
			log.Err(err).Msg("drain-failed")
		}
	case <-time.After(GracefulShutdownTimeout):
		log.Warn().Msg("timed-out-waiting-for-bot")
	}
	log.Info().Msg("server gracefully shutting down")
}
