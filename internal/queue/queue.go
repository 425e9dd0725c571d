// Package queue implements the client-side durable vote queue: a submitted
// vote is persisted locally before any network attempt, retried with
// bounded exponential backoff until acknowledged, and eventually either
// abandoned in place or dropped once it ages out. It survives process
// restarts and connectivity loss without losing or double-submitting votes.
package queue

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acssjr/vizu/internal/model"
)

const (
	// MaxAttempts is how many failed submission attempts a queued vote
	// gets before active retrying stops. The record stays in place and
	// remains visible to later sync passes until it ages out.
	MaxAttempts = 5

	// MaxAge drops a queued vote unconditionally, attempts notwithstanding.
	MaxAge = 24 * time.Hour

	baseDelay = time.Second
	maxDelay  = 30 * time.Second

	// syncJitter spreads sync-pass retries out so a reconnect does not
	// produce a retry storm.
	syncJitter = 2 * time.Second
)

// SubmitFunc delivers one vote to the server. A nil error means the server
// acknowledged the vote; any error is treated as retryable.
type SubmitFunc func(ctx context.Context, req model.VoteRequest) error

// Queue is the durable retry queue. Retries are scheduled as independent
// timers; a Sync pass re-enqueues whatever is still retryable.
type Queue struct {
	store  *Store
	submit SubmitFunc
	log    zerolog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	closed bool
}

// New creates a queue over the given store and submit function.
func New(store *Store, submit SubmitFunc, log zerolog.Logger) *Queue {
	return &Queue{
		store:  store,
		submit: submit,
		log:    log,
		timers: make(map[string]*time.Timer),
	}
}

// RetryDelay returns the backoff before the next attempt:
// min(1s * 2^attempts, 30s).
func RetryDelay(attempts int) time.Duration {
	d := baseDelay
	for range attempts {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	return d
}

// Enqueue durably records the vote, then starts the first submission
// attempt. The local write happens before any network call, so a crash or
// dropped connection after this returns can never lose the vote.
func (q *Queue) Enqueue(ctx context.Context, req model.VoteRequest) (string, error) {
	qv := QueuedVote{
		ID:        uuid.NewString(),
		PhotoID:   req.PhotoID,
		Payload:   req,
		CreatedAt: time.Now(),
	}
	if err := q.store.Put(qv); err != nil {
		return "", err
	}

	go q.attempt(ctx, qv.ID)
	return qv.ID, nil
}

// attempt runs one submission attempt and schedules the next retry on
// failure.
func (q *Queue) attempt(ctx context.Context, id string) {
	qv, err := q.store.MarkAttempt(id, time.Now())
	if err != nil || qv == nil {
		// Already delivered or dropped by a concurrent sync pass.
		return
	}

	if err := q.submit(ctx, qv.Payload); err == nil {
		if delErr := q.store.Delete(id); delErr != nil {
			q.log.Error().Err(delErr).Str("vote", id).Msg("queue: delete after ack failed")
		}
		q.log.Debug().Str("vote", id).Int("attempts", qv.Attempts).Msg("queue: vote acknowledged")
		return
	}

	if qv.Attempts >= MaxAttempts {
		// Abandoned: left in place for the next sync pass, no timer.
		q.log.Warn().Str("vote", id).Int("attempts", qv.Attempts).
			Msg("queue: max attempts reached, abandoning active retries")
		return
	}

	q.scheduleRetry(ctx, id, RetryDelay(qv.Attempts))
}

func (q *Queue) scheduleRetry(ctx context.Context, id string, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	if t, ok := q.timers[id]; ok {
		t.Stop()
	}
	q.timers[id] = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, id)
		closed := q.closed
		q.mu.Unlock()
		if !closed {
			q.attempt(ctx, id)
		}
	})
}

// Sync enumerates the queue and re-attempts everything still retryable,
// each with a small random jitter. Votes older than MaxAge are dropped
// unconditionally, whatever their attempt count. Called on process start,
// on network-online transitions, and on app-visibility-regained.
func (q *Queue) Sync(ctx context.Context) error {
	votes, err := q.store.List()
	if err != nil {
		return err
	}

	now := time.Now()
	retried := 0
	for _, qv := range votes {
		if now.Sub(qv.CreatedAt) > MaxAge {
			if err := q.store.Delete(qv.ID); err != nil {
				q.log.Error().Err(err).Str("vote", qv.ID).Msg("queue: expire delete failed")
			} else {
				q.log.Info().Str("vote", qv.ID).Msg("queue: dropped expired vote")
			}
			continue
		}
		if qv.Attempts >= MaxAttempts {
			continue
		}
		q.scheduleRetry(ctx, qv.ID, rand.N(syncJitter))
		retried++
	}

	if retried > 0 {
		q.log.Info().Int("votes", retried).Msg("queue: sync pass scheduled retries")
	}
	return nil
}

// NotifyOnline should be called when connectivity returns.
func (q *Queue) NotifyOnline(ctx context.Context) {
	if err := q.Sync(ctx); err != nil {
		q.log.Error().Err(err).Msg("queue: online sync failed")
	}
}

// NotifyVisible should be called when the app regains visibility.
func (q *Queue) NotifyVisible(ctx context.Context) {
	if err := q.Sync(ctx); err != nil {
		q.log.Error().Err(err).Msg("queue: visibility sync failed")
	}
}

// Pending returns the queued votes still on disk (for inspection/tests).
func (q *Queue) Pending() ([]QueuedVote, error) {
	return q.store.List()
}

// Close stops all pending retry timers. The store stays intact so a later
// process start can sync whatever remains.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	for id, t := range q.timers {
		t.Stop()
		delete(q.timers, id)
	}
}
