// Package dispatch serializes update processing per user while letting
// different users proceed concurrently. Telegram can deliver a user's next
// tap before the previous one finished; running them out of order would
// corrupt conversation state.
package dispatch

import (
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	// DefaultQueueCap bounds how many jobs a single user can have waiting.
	DefaultQueueCap = 16
	// DefaultIdleTTL is how long an empty per-user worker lingers before
	// exiting.
	DefaultIdleTTL = 2 * time.Minute
)

// Job is one unit of per-user work. Jobs carry their own context via
// closure.
type Job func()

// Dispatcher funnels jobs into per-user FIFO queues. Each active user gets
// one worker goroutine, spawned on demand and reaped after idling.
type Dispatcher struct {
	queueCap int
	idleTTL  time.Duration
	logger   *slog.Logger

	mu     sync.Mutex
	queues map[int64]chan Job
	closed bool
	wg     sync.WaitGroup
}

// New creates a dispatcher with default queue capacity and idle TTL.
func New(logger *slog.Logger) *Dispatcher {
	return NewWithConfig(DefaultQueueCap, DefaultIdleTTL, logger)
}

// NewWithConfig creates a dispatcher with explicit limits. Tests use a
// short idle TTL.
func NewWithConfig(queueCap int, idleTTL time.Duration, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		queueCap: queueCap,
		idleTTL:  idleTTL,
		logger:   logger,
		queues:   make(map[int64]chan Job),
	}
}

// Enqueue queues a job for the given user, starting a worker if none is
// running. It reports false when the job was dropped because the
// dispatcher is closed or the user's queue is full.
func (d *Dispatcher) Enqueue(userID int64, job Job) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}

	queue, ok := d.queues[userID]
	if !ok {
		queue = make(chan Job, d.queueCap)
		d.queues[userID] = queue
		d.wg.Add(1)
		go d.worker(userID, queue)
	}

	select {
	case queue <- job:
		return true
	default:
		d.logger.Warn("user queue full, dropping update", "user_id", userID)
		return false
	}
}

// Close stops accepting jobs, lets every worker drain its queue, and
// returns once all in-flight work finished.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, queue := range d.queues {
		close(queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) worker(userID int64, queue chan Job) {
	defer d.wg.Done()

	idle := time.NewTimer(d.idleTTL)
	defer idle.Stop()

	for {
		select {
		case job, ok := <-queue:
			if !ok {
				return
			}
			d.run(userID, job)
			if !idle.Stop() {
				select {
				case <-idle.C:
				default:
				}
			}
			idle.Reset(d.idleTTL)

		case <-idle.C:
			// Reap only when nothing raced in. Sends happen under the
			// same mutex, so an empty queue here stays empty once the
			// map entry is gone.
			d.mu.Lock()
			if d.closed || len(queue) > 0 {
				d.mu.Unlock()
				idle.Reset(d.idleTTL)
				continue
			}
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
	}
}

// run executes one job, containing panics so a single bad update cannot
// take down the worker.
func (d *Dispatcher) run(userID int64, job Job) {
	defer func() {
		if err := recover(); err != nil {
			d.logger.Error("panic recovered in update worker",
				"error", err,
				"user_id", userID,
				"stack", string(debug.Stack()),
			)
		}
	}()

	job()
}
