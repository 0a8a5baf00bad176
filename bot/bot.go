// Package bot serves connect-n moves over NATS request/reply.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/domino14/connectn/board"
	"github.com/domino14/connectn/config"
	"github.com/domino14/connectn/player"
)

// MaxDifficulty caps the search depth a remote caller can ask for.
const MaxDifficulty = 10

type Bot struct {
	config  *config.Config
	timeout time.Duration
}

func NewBot(cfg *config.Config) *Bot {
	return &Bot{
		config:  cfg,
		timeout: cfg.GetDuration(config.ConfigRequestTimeout),
	}
}

func errorResponse(gameID, message string, err error) *MoveResponse {
	msg := message
	if err != nil {
		msg = fmt.Sprintf("%s: %s", msg, err.Error())
	}
	return &MoveResponse{GameID: gameID, Column: -1, Error: msg}
}

// Handle answers one serialized MoveRequest. It never fails; problems are
// reported in the response's Error field.
func (bot *Bot) Handle(ctx context.Context, data []byte) *MoveResponse {
	req := MoveRequest{}
	if err := json.Unmarshal(data, &req); err != nil {
		return errorResponse("", "Could not parse request", err)
	}
	if req.Difficulty < 0 || req.Difficulty > MaxDifficulty {
		return errorResponse(req.GameID, "Bad difficulty",
			fmt.Errorf("%d is not between 0 and %d", req.Difficulty, MaxDifficulty))
	}
	id, ok := board.PlayerFromInt(req.Player)
	if !ok {
		return errorResponse(req.GameID, "Could not create AI player",
			fmt.Errorf("%w: %d", player.ErrInvalidPlayer, req.Player))
	}
	p, err := player.NewComputerPlayer(id, req.Difficulty,
		player.WithThreads(bot.config.GetInt(config.ConfigThreads)),
		player.WithAlphaBeta(bot.config.GetBool(config.ConfigAlphaBeta)))
	if err != nil {
		return errorResponse(req.GameID, "Could not create AI player", err)
	}

	if bot.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, bot.timeout)
		defer cancel()
	}
	col, err := p.PickMove(ctx, req.Rack, req.N)
	if err != nil {
		return errorResponse(req.GameID, "Could not pick a move", err)
	}
	resp := &MoveResponse{GameID: req.GameID, Column: col}
	if v, pv := p.LastSearch(); len(pv) > 0 {
		resp.Value = v.String()
		resp.PV = pv
	}
	log.Info().Str("game-id", req.GameID).Int("player", req.Player).
		Int("difficulty", req.Difficulty).Int("column", col).Msg("generated-move")
	return resp
}

// Main subscribes the bot to channel and serves requests until ctx is done,
// then drains the subscription.
func Main(ctx context.Context, nc *nats.Conn, channel string, bot *Bot) error {
	sub, err := nc.Subscribe(channel, func(m *nats.Msg) {
		log.Info().Msgf("RECV: %d bytes", len(m.Data))
		resp := bot.Handle(ctx, m.Data)
		data, err := json.Marshal(resp)
		if err != nil {
			// Should never happen, ideally, but we need to do something sensible here.
			m.Respond([]byte(err.Error()))
			return
		}
		if err := m.Respond(data); err != nil {
			log.Err(err).Msg("could-not-respond")
		}
	})
	if err != nil {
		return err
	}
	if err := nc.Flush(); err != nil {
		return err
	}
	if err := nc.LastError(); err != nil {
		return err
	}
	log.Info().Msgf("Listening on [%s]", channel)

	<-ctx.Done()
	log.Info().Msg("bot-shutting-down")
	return sub.Drain()
}
