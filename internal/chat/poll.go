package chat

import (
	"context"
	"time"

	"sheet_image_gen/internal/browser"

	"github.com/rs/zerolog/log"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultPollTimeout  = 120 * time.Second
)

// Poller repeatedly asks a Detector for readiness at a fixed interval.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration

	now func() time.Time
}

func NewPoller(interval, timeout time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return &Poller{Interval: interval, Timeout: timeout, now: time.Now}
}

// Budget is the time and iteration allowance shared by every stage of one prompt.
type Budget struct {
	start    time.Time
	deadline time.Time
	polls    int
}

func (p *Poller) NewBudget() *Budget {
	start := p.now()
	return &Budget{
		start:    start,
		deadline: start.Add(p.Timeout),
		polls:    int(p.Timeout/p.Interval) + 1,
	}
}

// Wait polls d until it reports Ready or the budget runs out. Every call checks d
// at least once, even on a spent budget. Each check is limited to one interval.
// Detector errors count as Idle. The only error returned is the context's.
func (p *Poller) Wait(ctx context.Context, page browser.Page, d Detector, b *Budget) (State, error) {
	for checks := 0; checks == 0 || b.polls > 0; checks++ {
		if err := browser.Sleep(ctx, p.Interval); err != nil {
			return StateIdle, err
		}
		if b.polls > 0 {
			b.polls--
		}

		state, err := p.detect(ctx, page, d)
		switch {
		case err != nil && ctx.Err() != nil:
			return StateIdle, ctx.Err()
		case err != nil:
			log.Debug().Err(err).Msg("Completion check failed, polling again")
		case state == StateReady:
			return StateReady, nil
		}

		if p.now().After(b.deadline) {
			break
		}
	}

	log.Warn().
		Dur("elapsed", p.now().Sub(b.start)).
		Dur("timeout", p.Timeout).
		Msg("Timed out waiting for chat")
	return StateTimedOut, nil
}

func (p *Poller) detect(ctx context.Context, page browser.Page, d Detector) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, p.Interval)
	defer cancel()
	return d.Detect(ctx, page)
}
