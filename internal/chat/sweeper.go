package chat

import (
	"context"
	"time"

	"github.com/agendazap/agendazap/internal/observability/metrics"
	"github.com/agendazap/agendazap/pkg/logging"
)

// Sweeper is the single periodic expiry loop for both session kinds. It
// replaces per-session timers: a session torn down between sweeps is simply
// no longer found, so stale expiry can never fire.
type Sweeper struct {
	store   StateStore
	sender  Messenger
	metrics *metrics.ChatMetrics
	logger  *logging.Logger
	now     func() time.Time
}

// NewSweeper creates the idle-expiry sweeper.
func NewSweeper(store StateStore, sender Messenger, m *metrics.ChatMetrics, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sweeper{store: store, sender: sender, metrics: m, logger: logger, now: time.Now}
}

// Sweep expires idle conversation states silently and idle side sessions with
// a single idle-termination message each.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.now()

	expired, err := s.store.ExpireStates(ctx, now.Add(-StateIdleAfter))
	if err != nil {
		s.logger.Error("chat: state sweep failed", "error", err)
	}
	for i := 0; i < expired; i++ {
		s.metrics.ObserveExpired("state")
	}

	ids, err := s.store.ExpireSessions(ctx, now.Add(-SessionIdleAfter))
	if err != nil {
		s.logger.Error("chat: session sweep failed", "error", err)
	}
	for _, id := range ids {
		s.metrics.ObserveExpired("side_session")
		if err := s.sender.Send(ctx, id, msgSideIdle); err != nil {
			s.logger.Warn("chat: idle notice failed", "requester", id, "error", err)
		}
		s.logger.Info("chat: side conversation expired", "requester", id)
	}
}

// Run sweeps on the given interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}
