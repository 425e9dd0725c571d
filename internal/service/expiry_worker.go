package service

import (
	"context"
	"log"
	"time"

	"github.com/acssjr/vizu/internal/repository"
)

// ExpiryWorker is a periodic background job that transitions photos past
// their expires_at out of the approved state so the selector stops serving
// them. The selector also filters expired photos directly; this worker
// keeps the stored status honest for everything else that reads it.
type ExpiryWorker struct {
	photos   *repository.PhotoRepo
	interval time.Duration
	stopCh   chan struct{}
}

// NewExpiryWorker creates a worker that ticks every interval.
func NewExpiryWorker(photos *repository.PhotoRepo, interval time.Duration) *ExpiryWorker {
	return &ExpiryWorker{
		photos:   photos,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic expiry loop. It runs one tick immediately,
// then every interval.
func (w *ExpiryWorker) Start(ctx context.Context) {
	log.Printf("expiry-worker: starting (interval=%s)", w.interval)

	w.tick(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.tick(ctx)
		case <-ctx.Done():
			log.Println("expiry-worker: stopping (context cancelled)")
			return
		case <-w.stopCh:
			log.Println("expiry-worker: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the worker to stop.
func (w *ExpiryWorker) Stop() {
	close(w.stopCh)
}

func (w *ExpiryWorker) tick(ctx context.Context) {
	start := time.Now()
	expired, err := w.photos.ExpireDue(ctx)
	if err != nil {
		log.Printf("expiry-worker: tick error: %v", err)
		return
	}
	if expired > 0 {
		log.Printf("expiry-worker: expired %d photos in %s", expired, time.Since(start))
	}
}
