package email

import (
	"context"
	"sync"
	"time"

	"github.com/smallbiznis/rentledger/internal/clock"
	"go.uber.org/zap"
)

// SimulatedProvider accepts every valid message after a delay measured on the
// injected clock and keeps a copy for inspection. It is used by demo builds.
type SimulatedProvider struct {
	clock clock.Clock
	delay time.Duration
	log   *zap.Logger

	mu   sync.Mutex
	sent []Message
}

func NewSimulated(clk clock.Clock, delay time.Duration, log *zap.Logger) *SimulatedProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &SimulatedProvider{clock: clk, delay: delay, log: log.Named("email.simulated")}
}

func (p *SimulatedProvider) Name() string { return "simulated" }

func (p *SimulatedProvider) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.clock.After(p.delay):
	}

	p.mu.Lock()
	p.sent = append(p.sent, msg)
	p.mu.Unlock()

	p.log.Info("simulated email delivered",
		zap.String("recipient", msg.To[0]),
		zap.Int("recipients", len(msg.To)),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)
	return nil
}

// Sent returns a copy of every delivered message.
func (p *SimulatedProvider) Sent() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Message, len(p.sent))
	copy(out, p.sent)
	return out
}
