package worker

import (
	"context"
	"errors"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yourtyme-app/yourtyme/pkg/domain/interfaces"
	"github.com/yourtyme-app/yourtyme/pkg/domain/model"
	"github.com/yourtyme-app/yourtyme/pkg/utils/logging"
)

// SnapshotRefreshWorker reconciles the denormalized member snapshots stored in
// communities against the current profiles. Snapshots go stale by design when
// a member updates their city elsewhere; this worker is the opt-in fix.
//
// Architecture assumptions:
// - Single server instance (no distributed locking)
type SnapshotRefreshWorker struct {
	repo     interfaces.Repository
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewSnapshotRefreshWorker creates a new worker for refreshing member snapshots
func NewSnapshotRefreshWorker(repo interfaces.Repository, interval time.Duration) *SnapshotRefreshWorker {
	return &SnapshotRefreshWorker{
		repo:     repo,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background refresh loop. Does not block server startup.
func (w *SnapshotRefreshWorker) Start(ctx context.Context) error {
	logging.Default().Info("Snapshot refresh worker starting",
		"interval", w.interval.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *SnapshotRefreshWorker) Stop() {
	logging.Default().Info("Snapshot refresh worker stopping")
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Snapshot refresh worker stopped")
}

// run is the main worker loop (runs in goroutine)
func (w *SnapshotRefreshWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.Refresh(ctx); err != nil {
				// Log error but continue worker
				logging.Default().Error("Snapshot refresh failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			logging.Default().Info("Snapshot refresh worker received stop signal")
			return

		case <-ctx.Done():
			logging.Default().Info("Snapshot refresh worker context cancelled")
			return
		}
	}
}

// Refresh performs a single reconciliation cycle: every community's member
// snapshots are rewritten from the members' current profiles. Members whose
// profile disappeared keep their last snapshot.
func (w *SnapshotRefreshWorker) Refresh(ctx context.Context) error {
	startTime := time.Now()

	communities, err := w.repo.Community().ListAll(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to list communities")
	}

	var refreshed int
	for _, community := range communities {
		if len(community.Members) == 0 {
			continue
		}

		changed := false
		members := make([]model.MemberSnapshot, len(community.Members))
		for i, snapshot := range community.Members {
			members[i] = snapshot

			profile, err := w.repo.Profile().Get(ctx, snapshot.UserID)
			if err != nil {
				if errors.Is(err, model.ErrNotFound) {
					continue
				}
				return goerr.Wrap(err, "failed to get profile for snapshot refresh",
					goerr.V("user_id", snapshot.UserID))
			}

			fresh := model.MemberSnapshot{
				UserID:      snapshot.UserID,
				DisplayName: snapshot.DisplayName,
				City:        profile.City,
			}
			if profile.DisplayName != "" {
				fresh.DisplayName = profile.DisplayName
			}

			if fresh != snapshot {
				members[i] = fresh
				changed = true
			}
		}

		if !changed {
			continue
		}

		if err := w.repo.Community().ReplaceMembers(ctx, community.ChannelID, members); err != nil {
			return goerr.Wrap(err, "failed to replace member snapshots",
				goerr.V("channel_id", community.ChannelID))
		}
		refreshed++
	}

	logging.Default().Info("Snapshot refresh completed",
		"communities", len(communities),
		"refreshed", refreshed,
		"duration", time.Since(startTime).String())

	return nil
}
