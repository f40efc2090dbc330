package service

import (
	"context"
	"fmt"
	"time"

	"evote-be/internal/repository"
	"evote-be/pkg/logger"
)

// Reconciler is the periodic status sweep: it guarantees liveness for
// elections no write ever touches again. Unlike the per-write guard it may
// skip intermediate states, so an election that missed its whole window
// goes straight from upcoming to completed.
type Reconciler struct {
	elections repository.ElectionRepository
	log       *logger.Logger
	interval  time.Duration
	now       func() time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReconciler(elections repository.ElectionRepository, log *logger.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		elections: elections,
		log:       log,
		interval:  interval,
		now:       time.Now,
	}
}

// WithClock replaces the time source for tests.
func (r *Reconciler) WithClock(now func() time.Time) *Reconciler {
	r.now = now
	return r
}

// Start runs one immediate pass and then sweeps on the configured
// interval until Stop is called.
func (r *Reconciler) Start(ctx context.Context) error {
	if r.done != nil {
		return fmt.Errorf("reconciler already started")
	}

	if _, err := r.RunOnce(ctx); err != nil {
		return fmt.Errorf("initial reconcile pass failed: %w", err)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.loop(loopCtx)
	r.log.WithField("interval", r.interval.String()).Info("Status reconciler started")
	return nil
}

// Stop halts the sweep loop, waiting for an in-flight pass to finish or
// for ctx to expire.
func (r *Reconciler) Stop(ctx context.Context) error {
	if r.cancel == nil {
		return nil
	}
	r.cancel()

	select {
	case <-r.done:
		r.log.Info("Status reconciler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunOnce performs a single reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) (repository.ReconcileStats, error) {
	stats, err := r.elections.ReconcileStatuses(ctx, r.now())
	if err != nil {
		return stats, err
	}
	if stats.Total() > 0 {
		r.log.WithFields(map[string]interface{}{
			"activated": stats.Activated,
			"completed": stats.Completed,
			"expired":   stats.Expired,
		}).Info("Election statuses reconciled")
	}
	return stats, nil
}

func (r *Reconciler) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, r.interval)
			if _, err := r.RunOnce(runCtx); err != nil && ctx.Err() == nil {
				r.log.WithError(err).Error("Reconcile pass failed")
			}
			cancel()
		case <-ctx.Done():
			return
		}
	}
}
