// File: internal/services/delivery/queue.go
package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/iyunix/go-linksports/internal/domain"
)

var (
	ErrQueueFull   = errors.New("delivery queue is full")
	ErrQueueClosed = errors.New("delivery queue is closed")
	ErrNoSender    = errors.New("no sender for channel")
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Sender delivers a code to an address of one channel.
type Sender interface {
	SendVerificationCode(ctx context.Context, to, code string) error
}

// Observer is told how each delivery ended.
type Observer interface {
	DeliveryFinished(channel domain.ContactType, delivered bool, attempts int)
}

// Job is one pending code delivery.
type Job struct {
	ID         string
	Channel    domain.ContactType
	To         string
	Code       string
	EnqueuedAt time.Time
}

type QueueConfig struct {
	Workers     int
	Size        int
	SendTimeout time.Duration
	Retry       RetryConfig
}

// Queue runs code deliveries on a fixed pool of workers so request handlers
// never wait on a gateway.
type Queue struct {
	config   QueueConfig
	senders  map[domain.ContactType]Sender
	logger   Logger
	observer Observer
	jobs     chan Job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewQueue(config QueueConfig, senders map[domain.ContactType]Sender, logger Logger) *Queue {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Size < 1 {
		config.Size = 100
	}
	if config.SendTimeout == 0 {
		config.SendTimeout = 15 * time.Second
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = DefaultRetryConfig()
	}
	return &Queue{
		config:  config,
		senders: senders,
		logger:  logger,
		jobs:    make(chan Job, config.Size),
	}
}

// WithObserver attaches o to the queue. Call it before Start.
func (q *Queue) WithObserver(o Observer) *Queue {
	q.observer = o
	return q
}

// Start launches the workers. They stop when ctx is cancelled or Shutdown
// has drained the queue.
func (q *Queue) Start(ctx context.Context) {
	ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.config.Workers; i++ {
		q.wg.Add(1)
		go q.worker(ctx, i)
	}
	q.logger.Info("delivery queue started", "workers", q.config.Workers, "size", q.config.Size)
}

// Dispatch enqueues a delivery without blocking and returns the job id.
func (q *Queue) Dispatch(ctx context.Context, channel domain.ContactType, to, code string) (string, error) {
	if _, ok := q.senders[channel]; !ok {
		return "", fmt.Errorf("%w %q", ErrNoSender, channel)
	}

	job := Job{
		ID:         ksuid.New().String(),
		Channel:    channel,
		To:         to,
		Code:       code,
		EnqueuedAt: time.Now(),
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return "", ErrQueueClosed
	}
	select {
	case q.jobs <- job:
		q.logger.Debug("delivery job enqueued", "job_id", job.ID, "channel", channel)
		return job.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones to finish or for
// ctx to expire, whichever comes first.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		q.logger.Info("delivery queue drained")
		return nil
	case <-ctx.Done():
		if q.cancel != nil {
			q.cancel()
		}
		return ctx.Err()
	}
}

func (q *Queue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-q.jobs:
			if !ok {
				return
			}
			q.process(ctx, id, job)
		}
	}
}

func (q *Queue) process(ctx context.Context, workerID int, job Job) {
	sender := q.senders[job.Channel]

	attempts, err := RetryWithBackoff(ctx, q.config.Retry, func(ctx context.Context) error {
		sendCtx, cancel := context.WithTimeout(ctx, q.config.SendTimeout)
		defer cancel()
		return sender.SendVerificationCode(sendCtx, job.To, job.Code)
	})
	if err != nil {
		q.logger.Error("code delivery failed",
			"job_id", job.ID,
			"channel", job.Channel,
			"to", domain.MaskPII(job.To),
			"attempts", attempts,
			"worker", workerID,
			"error", err)
		q.observe(job.Channel, false, attempts)
		return
	}
	q.observe(job.Channel, true, attempts)
	q.logger.Info("code delivered",
		"job_id", job.ID,
		"channel", job.Channel,
		"to", domain.MaskPII(job.To),
		"attempts", attempts,
		"latency_ms", time.Since(job.EnqueuedAt).Milliseconds())
}

func (q *Queue) observe(channel domain.ContactType, delivered bool, attempts int) {
	if q.observer != nil {
		q.observer.DeliveryFinished(channel, delivered, attempts)
	}
}
