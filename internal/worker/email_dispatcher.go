package worker

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/port"
	"go.uber.org/zap"
)

// emailJob is one queued delivery.
type emailJob struct {
	userID   int64
	subject  string
	body     string
	attempts int
}

// EmailDispatcher delivers notification emails asynchronously. Enqueue never
// blocks the caller: when the queue is full the email is dropped and logged,
// since in-app notification rows are the durable record. Transient delivery
// failures are retried with exponential backoff.
type EmailDispatcher struct {
	sender port.EmailSender
	logger *zap.Logger

	queue       chan emailJob
	maxAttempts int
	baseBackoff time.Duration

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewEmailDispatcher creates a new email dispatcher
func NewEmailDispatcher(sender port.EmailSender, queueSize int, logger *zap.Logger) *EmailDispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &EmailDispatcher{
		sender:      sender,
		logger:      logger,
		queue:       make(chan emailJob, queueSize),
		maxAttempts: 3,
		baseBackoff: 1 * time.Second,
	}
}

// Enqueue hands an email off for delivery. Never blocks.
func (d *EmailDispatcher) Enqueue(userID int64, subject, body string) {
	select {
	case d.queue <- emailJob{userID: userID, subject: subject, body: body}:
	default:
		d.logger.Warn("Email queue full, dropping email",
			zap.Int64("user_id", userID),
			zap.String("subject", subject))
	}
}

// Start starts the delivery loop.
func (d *EmailDispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.isRunning {
		return fmt.Errorf("email dispatcher is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.isRunning = true
	d.done = make(chan struct{})

	d.logger.Info("EmailDispatcher started",
		zap.Int("queue_size", cap(d.queue)),
		zap.Int("max_attempts", d.maxAttempts))

	go d.loop()
	return nil
}

// Stop stops the delivery loop. Queued emails that have not started delivery
// are dropped.
func (d *EmailDispatcher) Stop() {
	d.mu.Lock()
	if !d.isRunning {
		d.mu.Unlock()
		return
	}
	d.isRunning = false
	d.cancel()
	done := d.done
	d.mu.Unlock()

	<-done
	d.logger.Info("EmailDispatcher stopped")
}

// Name returns the worker name for identification
func (d *EmailDispatcher) Name() string {
	return "EmailDispatcher"
}

func (d *EmailDispatcher) loop() {
	defer close(d.done)

	for {
		select {
		case <-d.ctx.Done():
			return
		case job := <-d.queue:
			d.deliver(job)
		}
	}
}

func (d *EmailDispatcher) deliver(job emailJob) {
	for {
		job.attempts++

		ctx, cancel := context.WithTimeout(d.ctx, 10*time.Second)
		err := d.sender.Send(ctx, job.userID, job.subject, job.body)
		cancel()

		if err == nil {
			return
		}

		if job.attempts >= d.maxAttempts {
			d.logger.Error("Email delivery failed, giving up",
				zap.Int64("user_id", job.userID),
				zap.String("subject", job.subject),
				zap.Int("attempts", job.attempts),
				zap.Error(err))
			return
		}

		backoff := d.backoff(job.attempts)
		d.logger.Warn("Email delivery failed, retrying",
			zap.Int64("user_id", job.userID),
			zap.Int("attempt", job.attempts),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		select {
		case <-d.ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// backoff returns the delay before the next attempt: 1s, 2s, 4s...
func (d *EmailDispatcher) backoff(attempt int) time.Duration {
	multiplier := math.Pow(2, float64(attempt-1))
	return time.Duration(multiplier) * d.baseBackoff
}
