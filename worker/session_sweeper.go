package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/notblessy/studio-core/observability"
	"github.com/notblessy/studio-core/repository"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionSweeper removes expired dashboard sessions on a cron schedule.
type SessionSweeper struct {
	sessions repository.SessionRepository
	metrics  *observability.Metrics
	cron     *cron.Cron
	now      func() time.Time
}

func NewSessionSweeper(sessions repository.SessionRepository, schedule string, metrics *observability.Metrics) (*SessionSweeper, error) {
	s := &SessionSweeper{
		sessions: sessions,
		metrics:  metrics,
		cron:     cron.New(),
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.Sweep(context.Background()) }); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Sweep deletes every session that expired before now.
func (s *SessionSweeper) Sweep(ctx context.Context) int64 {
	logger := logrus.WithField("job", "session_sweeper")

	n, err := s.sessions.DeleteExpired(ctx, s.now())
	if err != nil {
		logger.Errorf("Error deleting expired sessions: %v", err)
		return 0
	}
	if n > 0 {
		logger.Infof("Removed %d expired sessions", n)
	}
	if s.metrics != nil {
		s.metrics.SessionsSweptTotal.Add(float64(n))
	}
	return n
}

func (s *SessionSweeper) Start() {
	s.cron.Start()
}

// Stop waits for a running sweep to finish.
func (s *SessionSweeper) Stop() {
	<-s.cron.Stop().Done()
}
