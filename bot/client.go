package bot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

var ErrBotResponse = errors.New("bot returned an error")

type Client struct {
	// NATS connection
	nc       *nats.Conn
	channel  string
	timeout  time.Duration
	attempts uint
}

func NewClient(nc *nats.Conn, channel string, timeout time.Duration) *Client {
	return &Client{nc: nc, channel: channel, timeout: timeout, attempts: 3}
}

// retryable is true for transport failures that another attempt can fix.
func retryable(err error) bool {
	return errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrNoResponders)
}

// RequestMove sends a position to the bot and returns its column. Timeouts
// and missing responders are retried with backoff.
func (c *Client) RequestMove(ctx context.Context, req *MoveRequest) (*MoveResponse, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var res *nats.Msg
	err = retry.Do(
		func() error {
			rctx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()
			res, err = c.nc.RequestWithContext(rctx, c.channel, data)
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nats.ErrTimeout
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			log.Err(err).Uint("n", n).Msg("bot-request-failed-try-again")
			return retry.BackOffDelay(n, err, config)
		}),
	)
	if err != nil {
		if c.nc.LastError() != nil {
			log.Error().Msgf("%v for request", c.nc.LastError())
		}
		return nil, err
	}
	log.Debug().Msgf("res: %v", string(res.Data))

	resp := &MoveResponse{}
	if err := json.Unmarshal(res.Data, resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return resp, fmt.Errorf("%w: %s", ErrBotResponse, resp.Error)
	}
	return resp, nil
}
