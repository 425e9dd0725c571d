package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/acssjr/vizu/internal/repository"
)

// ReconcileWorker listens for PostgreSQL NOTIFY on the 'vote_changes'
// channel and batches aggregate repairs. Submissions already recompute the
// aggregate inside their own transaction; this worker exists to refresh
// caches and to repair drift after out-of-band changes (manual vote
// removals, migrations). If 50 votes hit photo X in one window, it
// recalculates once.
type ReconcileWorker struct {
	pool    *pgxpool.Pool
	photos  *repository.PhotoRepo
	votes   *repository.VoteRepo
	cache   *CacheService
	batchMs time.Duration

	mu         sync.Mutex
	pending    map[string]struct{} // photo IDs waiting for reconciliation
	lastListen time.Time           // when the current/previous LISTEN session began
}

// NewReconcileWorker creates an aggregate reconciliation worker.
func NewReconcileWorker(pool *pgxpool.Pool, photos *repository.PhotoRepo, votes *repository.VoteRepo, cache *CacheService) *ReconcileWorker {
	return &ReconcileWorker{
		pool:    pool,
		photos:  photos,
		votes:   votes,
		cache:   cache,
		batchMs: 5 * time.Second,
		pending: make(map[string]struct{}),
	}
}

// Start begins listening for vote_changes notifications and processing batches.
func (w *ReconcileWorker) Start(ctx context.Context) {
	log.Printf("reconcile-worker: starting (batch window=%s)", w.batchMs)

	for {
		if err := w.listenLoop(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("reconcile-worker: stopping (context cancelled)")
				return
			}
			log.Printf("reconcile-worker: listen error, reconnecting in 5s: %v", err)
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
				log.Println("reconcile-worker: stopping (context cancelled)")
				return
			}
		}
	}
}

// listenLoop acquires a dedicated connection, LISTENs on vote_changes,
// and collects notifications into batched windows.
func (w *ReconcileWorker) listenLoop(ctx context.Context) error {
	conn, err := w.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, "LISTEN vote_changes")
	if err != nil {
		return err
	}
	log.Println("reconcile-worker: listening on vote_changes")

	// Notifications raised while we were not listening are lost. Sweep
	// photos changed since the previous LISTEN session into the pending
	// set to cover the gap.
	if !w.lastListen.IsZero() {
		ids, err := w.photos.ChangedSince(ctx, w.lastListen)
		if err != nil {
			log.Printf("reconcile-worker: catch-up query error: %v", err)
		} else if len(ids) > 0 {
			w.mu.Lock()
			for _, id := range ids {
				w.pending[id] = struct{}{}
			}
			w.mu.Unlock()
			log.Printf("reconcile-worker: queued %d photos from catch-up sweep", len(ids))
		}
	}
	w.lastListen = time.Now()

	flushCtx, flushCancel := context.WithCancel(ctx)
	defer flushCancel()
	go w.flushLoop(flushCtx)

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		photoID := notification.Payload
		if photoID == "" {
			continue
		}

		w.mu.Lock()
		w.pending[photoID] = struct{}{}
		w.mu.Unlock()
	}
}

// flushLoop periodically drains the pending set and reconciles aggregates.
func (w *ReconcileWorker) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(w.batchMs)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.flush(ctx)
		case <-ctx.Done():
			// Final flush before exit
			w.flush(context.Background())
			return
		}
	}
}

// flush drains the pending set and recalculates each photo's aggregate.
func (w *ReconcileWorker) flush(ctx context.Context) {
	w.mu.Lock()
	if len(w.pending) == 0 {
		w.mu.Unlock()
		return
	}

	// Swap out the pending map
	batch := w.pending
	w.pending = make(map[string]struct{})
	w.mu.Unlock()

	reconciled := 0
	for photoID := range batch {
		if err := w.votes.RecalculateAggregate(ctx, photoID); err != nil {
			log.Printf("reconcile-worker: recalculate error for %s: %v", photoID, err)
			continue
		}

		if w.cache != nil {
			if err := w.cache.InvalidatePhoto(ctx, photoID); err != nil {
				log.Printf("reconcile-worker: cache invalidate error for %s: %v", photoID, err)
			}
		}

		reconciled++
	}

	if reconciled > 0 {
		log.Printf("reconcile-worker: batch complete — %d photos reconciled (from %d notifications)",
			reconciled, len(batch))
	}
}
