package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/catalog-api/internal/core/ports"
)

const (
	defaultWorkers     = 2
	channelBuffer      = 256
	defaultMaxAttempts = 5
	defaultBackoff     = 500 * time.Millisecond
	attemptTimeout     = 10 * time.Second
)

// UserDeleter removes an identity. It reports false when nothing was deleted.
type UserDeleter interface {
	Delete(ctx context.Context, id string) (bool, error)
}

// Compensator retries deletions of half-registered identities on a fixed set
// of workers. Jobs for the same user always land on the same worker.
type Compensator struct {
	workers     []chan string
	deleter     UserDeleter
	log         zerolog.Logger
	maxAttempts int
	backoff     time.Duration
	onDone      func(userID string, err error)
}

var _ ports.Compensator = (*Compensator)(nil)

// NewCompensator creates a Compensator with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewCompensator(numWorkers int, deleter UserDeleter, log zerolog.Logger) *Compensator {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	c := &Compensator{
		workers:     make([]chan string, numWorkers),
		deleter:     deleter,
		log:         log,
		maxAttempts: defaultMaxAttempts,
		backoff:     defaultBackoff,
	}
	for i := range c.workers {
		c.workers[i] = make(chan string, channelBuffer)
	}
	return c
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (c *Compensator) Start(ctx context.Context) {
	for i, ch := range c.workers {
		go c.runWorker(ctx, i, ch)
	}
}

// EnqueueDeletion never blocks the request path: when the worker queue is
// full the job is dropped and logged for manual cleanup.
func (c *Compensator) EnqueueDeletion(userID string) {
	select {
	case c.workers[c.shardIndex(userID)] <- userID:
	default:
		c.log.Error().Str("user_id", userID).Msg("compensation queue full, orphan identity left behind")
	}
}

func (c *Compensator) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(c.workers)))
}

func (c *Compensator) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case userID, ok := <-ch:
			if !ok {
				return
			}
			err := c.compensate(ctx, userID)
			if err != nil {
				c.log.Error().Err(err).
					Str("user_id", userID).
					Int("worker_id", id).
					Msg("compensating delete gave up")
			}
			if c.onDone != nil {
				c.onDone(userID, err)
			}
		}
	}
}

func (c *Compensator) compensate(ctx context.Context, userID string) error {
	wait := c.backoff
	var err error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		actx, cancel := context.WithTimeout(ctx, attemptTimeout)
		_, err = c.deleter.Delete(actx, userID)
		cancel()
		if err == nil {
			c.log.Info().Str("user_id", userID).Int("attempt", attempt).Msg("orphan identity removed")
			return nil
		}

		c.log.Warn().Err(err).Str("user_id", userID).Int("attempt", attempt).Msg("compensating delete failed")
		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
