package jobs

import (
	"context"
	"fmt"
	"log"
	"time"
)

// ExtendJobRepository is the job store the sweeper prunes
type ExtendJobRepository interface {
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// ExtendJobSweeper deletes extend jobs older than their TTL. It runs as the
// processor of a Worker so expired jobs go away even when nobody polls them.
type ExtendJobSweeper struct {
	repo ExtendJobRepository
	ttl  time.Duration
	now  func() time.Time
}

// NewExtendJobSweeper creates a sweeper for jobs older than ttl
func NewExtendJobSweeper(repo ExtendJobRepository, ttl time.Duration) *ExtendJobSweeper {
	return &ExtendJobSweeper{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// ProcessJobs implements the JobProcessor interface
func (s *ExtendJobSweeper) ProcessJobs(ctx context.Context) error {
	n, err := s.repo.DeleteExpired(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return fmt.Errorf("failed to sweep extend jobs: %w", err)
	}
	if n > 0 {
		log.Printf("Swept %d expired extend jobs", n)
	}
	return nil
}
