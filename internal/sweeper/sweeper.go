package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Purger deletes invitations that have expired.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Sweeper periodically purges expired invitations so they stop occupying
// the (team, email) key.
type Sweeper struct {
	purger   Purger
	interval time.Duration
	purged   prometheus.Counter
	failures prometheus.Counter
}

// New creates a new Sweeper. Its counters are registered with reg when reg is not nil.
func New(purger Purger, interval time.Duration, reg prometheus.Registerer) *Sweeper {
	s := &Sweeper{
		purger:   purger,
		interval: interval,
		purged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamhub_invitations_purged_total",
			Help: "Expired invitations deleted by the sweeper.",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "teamhub_invitation_sweeps_failed_total",
			Help: "Sweeps that returned an error.",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.purged, s.failures)
	}
	return s
}

// Start runs a sweep every interval. It blocks until ctx is cancelled, or
// returns at once when the interval is not positive.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		slog.Info("sweeper disabled", "interval", s.interval.String())
		return
	}
	slog.Info("sweeper started", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep purges expired invitations once and returns how many were deleted.
func (s *Sweeper) Sweep(ctx context.Context) int64 {
	n, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.failures.Inc()
		slog.Error("sweeper: failed to purge expired invitations", "error", err)
		return 0
	}

	s.purged.Add(float64(n))
	if n > 0 {
		slog.Info("sweeper: purged expired invitations", "count", n)
	}
	return n
}
