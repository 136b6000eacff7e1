package command

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	"lost-algorithm/internal/config"
)

// CommandQueue decouples network readers from the engine: commands are
// buffered and applied by a worker pool. With one worker, commands are
// applied in arrival order.
type CommandQueue struct {
	commands chan Command
	handler  *Handler
	workers  int
	wg       sync.WaitGroup
	running  atomic.Bool
	stopChan chan struct{}

	// Called by a worker after each command, if set before Start
	OnResult func(cmd Command, res Result, err error)

	// Metrics
	enqueued    atomic.Uint64
	processed   atomic.Uint64
	failed      atomic.Uint64
	dropped     atomic.Uint64
	avgWaitTime atomic.Int64 // nanoseconds, exponential moving average
}

// NewCommandQueue creates a new command queue with worker pool
func NewCommandQueue(handler *Handler, cfg config.CommandConfig) *CommandQueue {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	return &CommandQueue{
		commands: make(chan Command, cfg.QueueSize),
		handler:  handler,
		workers:  cfg.Workers,
		stopChan: make(chan struct{}),
	}
}

// Start launches the worker pool
func (q *CommandQueue) Start() {
	if q.running.Swap(true) {
		return // Already running
	}

	log.Printf("🚀 CommandQueue starting with %d workers, buffer size %d", q.workers, cap(q.commands))

	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
}

// Stop gracefully shuts down the queue
func (q *CommandQueue) Stop() {
	if !q.running.Swap(false) {
		return // Not running
	}

	close(q.stopChan)
	q.wg.Wait()

	log.Printf("📊 CommandQueue stopped - enqueued: %d, processed: %d, dropped: %d",
		q.enqueued.Load(), q.processed.Load(), q.dropped.Load())
}

// Enqueue adds a command without blocking. Returns ErrQueueFull if the buffer is full.
func (q *CommandQueue) Enqueue(cmd Command) error {
	// Set receive time for latency tracking
	cmd.ReceivedAt = time.Now()

	select {
	case q.commands <- cmd:
		q.enqueued.Add(1)
		return nil
	default:
		// Queue full - drop command to prevent backpressure
		n := q.dropped.Add(1)
		if n%100 == 1 {
			log.Printf("⚠️ CommandQueue full, dropped command from %s (total dropped: %d)", cmd.Source, n)
		}
		return ErrQueueFull
	}
}

// EnqueueLine parses line and enqueues it.
func (q *CommandQueue) EnqueueLine(source, line string) error {
	cmd, err := Parse(source, line)
	if err != nil {
		return err
	}
	return q.Enqueue(cmd)
}

// worker processes commands from the queue
func (q *CommandQueue) worker() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopChan:
			return
		case cmd := <-q.commands:
			// Track wait time
			waitTime := time.Since(cmd.ReceivedAt)
			q.updateAvgWaitTime(waitTime)

			// Warn if commands are waiting too long
			if waitTime > 100*time.Millisecond {
				log.Printf("⚠️ Command from %s waited %.1fms in queue",
					cmd.Source, float64(waitTime.Microseconds())/1000)
			}

			res, err := q.handler.ProcessCommand(cmd)
			if err != nil {
				q.failed.Add(1)
			}
			q.processed.Add(1)
			if q.OnResult != nil {
				q.OnResult(cmd, res, err)
			}
		}
	}
}

// updateAvgWaitTime updates exponential moving average
func (q *CommandQueue) updateAvgWaitTime(waitTime time.Duration) {
	current := q.avgWaitTime.Load()
	// EMA with alpha = 0.1 (smooth over ~10 samples)
	newAvg := (current*9 + waitTime.Nanoseconds()) / 10
	q.avgWaitTime.Store(newAvg)
}

// Stats returns current queue statistics
func (q *CommandQueue) Stats() QueueStats {
	return QueueStats{
		Enqueued:       q.enqueued.Load(),
		Processed:      q.processed.Load(),
		Failed:         q.failed.Load(),
		Dropped:        q.dropped.Load(),
		Pending:        uint64(len(q.commands)),
		BufferSize:     uint64(cap(q.commands)),
		AvgWaitTimeMs:  float64(q.avgWaitTime.Load()) / 1e6,
		BufferUsagePct: float64(len(q.commands)) / float64(cap(q.commands)) * 100,
	}
}

// QueueStats holds queue metrics
type QueueStats struct {
	Enqueued       uint64  `json:"enqueued"`
	Processed      uint64  `json:"processed"`
	Failed         uint64  `json:"failed"`
	Dropped        uint64  `json:"dropped"`
	Pending        uint64  `json:"pending"`
	BufferSize     uint64  `json:"buffer_size"`
	AvgWaitTimeMs  float64 `json:"avg_wait_time_ms"`
	BufferUsagePct float64 `json:"buffer_usage_pct"`
}
