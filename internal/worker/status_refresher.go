package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"go.uber.org/zap"
)

// StatusRefresher periodically advances internships along their time-driven
// transitions: upcoming internships whose start date has arrived become
// active, and active internships past their end date become completed. Both
// updates are bulk conditional statements, so concurrent refreshers are safe.
type StatusRefresher struct {
	internshipRepo port.InternshipRepository
	logger         *zap.Logger

	interval time.Duration

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewStatusRefresher creates a new status refresher
func NewStatusRefresher(internshipRepo port.InternshipRepository, interval time.Duration, logger *zap.Logger) *StatusRefresher {
	if interval <= 0 {
		interval = time.Hour
	}
	return &StatusRefresher{
		internshipRepo: internshipRepo,
		logger:         logger,
		interval:       interval,
	}
}

// Start starts the refresh loop.
func (r *StatusRefresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.isRunning {
		return fmt.Errorf("status refresher is already running")
	}

	r.ctx, r.cancel = context.WithCancel(ctx)
	r.isRunning = true
	r.done = make(chan struct{})

	r.logger.Info("StatusRefresher started", zap.Duration("interval", r.interval))

	go r.loop()
	return nil
}

// Stop stops the refresh loop and waits for the current pass to finish.
func (r *StatusRefresher) Stop() {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return
	}
	r.isRunning = false
	r.cancel()
	done := r.done
	r.mu.Unlock()

	<-done
	r.logger.Info("StatusRefresher stopped")
}

// Name returns the worker name for identification
func (r *StatusRefresher) Name() string {
	return "StatusRefresher"
}

func (r *StatusRefresher) loop() {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Refresh immediately on start
	r.RefreshOnce(r.ctx)

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.RefreshOnce(r.ctx)
		}
	}
}

// RefreshOnce runs one refresh pass. Exposed so operators can trigger it
// out of cycle.
func (r *StatusRefresher) RefreshOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	now := time.Now()

	started, err := r.internshipRepo.PromoteStarted(ctx, now)
	if err != nil {
		r.logger.Error("Failed to promote started internships", zap.Error(err))
	}

	ended, err := r.internshipRepo.CompleteEnded(ctx, now)
	if err != nil {
		r.logger.Error("Failed to complete ended internships", zap.Error(err))
	}

	if started > 0 || ended > 0 {
		r.logger.Info("Internship statuses refreshed",
			zap.Int64("activated", started),
			zap.Int64("completed", ended))
	}
}
