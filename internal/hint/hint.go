package hint

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/vancomm/peachsweeper/internal/game"
)

const (
	FirstMoveMessage     = "Start anywhere you like! The middle is usually a sweet spot."
	NotConfiguredMessage = "Error: API Key not configured."
	FallbackMessage      = "I'm having a little trouble seeing the orchard right now. Trust your instincts!"
)

var ErrGameOver = errors.New("game is over")

// Request is what an advisor gets to see: the rendered board and the number
// of peaches not yet flagged.
type Request struct {
	Board     string
	MinesLeft int
}

// Advisor turns a board snapshot into free-text guidance.
type Advisor interface {
	Advise(ctx context.Context, req Request) (string, error)
}

type Service struct {
	logger  logrus.FieldLogger
	advisor Advisor
	timeout time.Duration
	sem     *semaphore.Weighted
	group   singleflight.Group
}

// NewService wraps advisor, which may be nil when no advisor is configured.
func NewService(
	logger logrus.FieldLogger,
	advisor Advisor,
	timeout time.Duration,
	maxInflight int64,
) *Service {
	return &Service{
		logger:  logger,
		advisor: advisor,
		timeout: timeout,
		sem:     semaphore.NewWeighted(max(maxInflight, 1)),
	}
}

// Hint asks the advisor about state. Advisor failures are logged and
// answered with FallbackMessage; the only error returned is ErrGameOver.
// Calls sharing a key while one is in flight share its answer.
func (s *Service) Hint(ctx context.Context, key string, state *game.State) (string, error) {
	switch {
	case state.Phase.Over():
		return "", ErrGameOver
	case state.Phase == game.Idle:
		return FirstMoveMessage, nil
	case s.advisor == nil:
		return NotConfiguredMessage, nil
	}

	req := Request{
		Board:     state.Grid.String(),
		MinesLeft: state.MinesLeft(),
	}
	log := s.logger.WithField("key", key)

	v, err, shared := s.group.Do(key, func() (any, error) {
		// the answer may be shared with other callers, so it must not die
		// with the first caller's request
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
		defer cancel()

		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, fmt.Errorf("waiting for advisor slot: %w", err)
		}
		defer s.sem.Release(1)

		start := time.Now()
		text, err := s.advisor.Advise(ctx, req)
		log.WithField("duration", time.Since(start)).Debug("advisor answered")
		return text, err
	})
	if err != nil {
		log.WithError(err).Warn("unable to get hint")
		return FallbackMessage, nil
	}

	text := v.(string)
	if text == "" {
		return FallbackMessage, nil
	}
	if shared {
		log.Debug("hint shared between callers")
	}
	return text, nil
}
