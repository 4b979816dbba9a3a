package filestore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Walker is a store the sweeper can enumerate and prune.
type Walker interface {
	Walk(ctx context.Context, fn func(Object) error) error
	Delete(ctx context.Context, handle string) error
}

// ReferenceSource reports which handles are still recorded against a paper.
type ReferenceSource interface {
	ReferencedPaths(ctx context.Context) (map[string]struct{}, error)
}

// Sweeper deletes stored files that no paper references. Files younger than
// the grace period are skipped so in-flight uploads are never touched.
type Sweeper struct {
	storage Walker
	refs    ReferenceSource
	grace   time.Duration
	logger  *slog.Logger
	now     func() time.Time
	cron    *cron.Cron
}

func NewSweeper(storage Walker, refs ReferenceSource, grace time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{storage: storage, refs: refs, grace: grace, logger: logger, now: time.Now}
}

// Sweep runs one pass and returns how many files were removed.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.grace)
	var candidates []string
	err := s.storage.Walk(ctx, func(o Object) error {
		if o.ModTime.Before(cutoff) {
			candidates = append(candidates, o.Handle)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("walk storage: %w", err)
	}
	if len(candidates) == 0 {
		return 0, nil
	}

	// References are read after the walk so a record committed meanwhile
	// still protects its file.
	refs, err := s.refs.ReferencedPaths(ctx)
	if err != nil {
		return 0, fmt.Errorf("load referenced paths: %w", err)
	}

	removed := 0
	for _, handle := range candidates {
		if _, ok := refs[handle]; ok {
			continue
		}
		if err := s.storage.Delete(ctx, handle); err != nil {
			s.logger.WarnContext(ctx, "failed to delete orphaned file",
				"error", err,
				"storage_path", handle,
			)
			continue
		}
		removed++
	}
	return removed, nil
}

// Start schedules Sweep on a cron spec such as "@every 1h".
func (s *Sweeper) Start(ctx context.Context, schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		removed, err := s.Sweep(ctx)
		if err != nil {
			s.logger.ErrorContext(ctx, "orphan sweep failed", "error", err)
			return
		}
		s.logger.InfoContext(ctx, "orphan sweep completed", "removed", removed)
	})
	if err != nil {
		return fmt.Errorf("schedule sweeper: %w", err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
