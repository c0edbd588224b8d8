package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/empleomatch/empleomatch/internal/occ"
)

// Fetcher supplies detail views. *occ.Scraper satisfies it.
type Fetcher interface {
	GetJobDetails(ctx context.Context, jobID string) (occ.JobOffer, error)
}

// Service runs the enrichment pipeline: a bounded queue drained by a worker
// pool, writing through the 2-tier cache.
type Service struct {
	cache   *Cache
	fetcher Fetcher
	queue   *queue
	workers int

	wg      sync.WaitGroup
	started atomic.Bool

	// counters
	enqueued  atomic.Int64
	dropped   atomic.Int64
	coalesced atomic.Int64
	enrichOK  atomic.Int64
	enrichErr atomic.Int64
}

// ServiceOptions configures NewService. Zero values get defaults.
type ServiceOptions struct {
	Workers   int // concurrent detail fetches, default 3
	QueueSize int
}

// NewService wires the pipeline. Call Start to begin draining.
func NewService(cache *Cache, fetcher Fetcher, opts ServiceOptions) *Service {
	workers := opts.Workers
	if workers <= 0 {
		workers = 3
	}
	return &Service{
		cache:   cache,
		fetcher: fetcher,
		queue:   newQueue(opts.QueueSize),
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when ctx is done and any
// in-flight entry is finalized as failed so nothing is left enriching.
func (s *Service) Start(ctx context.Context) {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.run(ctx, i)
	}
	slog.Info("enrich: workers started", slog.Int("count", s.workers))
}

// Stop closes the queue and waits for workers to drain.
func (s *Service) Stop() {
	s.queue.Close()
	s.wg.Wait()
	slog.Info("enrich: stopped",
		slog.Int64("enriched", s.enrichOK.Load()),
		slog.Int64("failed", s.enrichErr.Load()),
		slog.Int64("dropped", s.dropped.Load()))
}

// EnqueueSearchResults seeds the cache with list-view offers and queues every
// job that is not already enriched. Full queues drop items after the
// enqueue wait, non-fatally.
func (s *Service) EnqueueSearchResults(ctx context.Context, jobs []occ.JobOffer) {
	for i := range jobs {
		job := jobs[i]
		if job.JobID == "" {
			continue
		}
		entry := s.cache.PutRaw(ctx, job)
		if entry.State == StateEnriched || entry.State == StateEnriching {
			s.coalesced.Add(1)
			continue
		}
		if entry.State == StateFailed && !s.cache.Retryable(job.JobID) {
			continue
		}
		s.enqueue(ctx, job.JobID, false)
	}
}

func (s *Service) enqueue(ctx context.Context, jobID string, priority bool) bool {
	if s.queue.Enqueue(ctx, jobID, priority) {
		s.enqueued.Add(1)
		return true
	}
	s.dropped.Add(1)
	slog.Warn("enrich: queue full, dropping job", slog.String("job_id", jobID))
	return false
}

// Get returns the detail view for jobID, from cache when fresh. A miss
// fetches synchronously with priority over background work: the id jumps the
// queue so a later background pass observes the terminal state and no-ops.
func (s *Service) Get(ctx context.Context, jobID string) (occ.JobOffer, error) {
	if job, ok := s.cache.Enriched(ctx, jobID); ok {
		return job, nil
	}

	s.cache.PutRaw(ctx, occ.JobOffer{JobID: jobID})
	if !s.cache.TryBeginEnrich(ctx, jobID) {
		// Another worker holds it. Wait for the terminal state.
		return s.awaitTerminal(ctx, jobID)
	}
	return s.enrichNow(ctx, jobID)
}

// enrichNow performs one fetch for an id this caller transitioned to
// enriching.
func (s *Service) enrichNow(ctx context.Context, jobID string) (occ.JobOffer, error) {
	job, err := s.fetcher.GetJobDetails(ctx, jobID)
	if err != nil {
		s.enrichErr.Add(1)
		// Finalize even when ctx itself failed so no entry stays enriching.
		s.cache.Fail(context.WithoutCancel(ctx), jobID, err)
		return occ.JobOffer{}, fmt.Errorf("enrich %s: %w", jobID, err)
	}
	s.enrichOK.Add(1)
	s.cache.Complete(ctx, jobID, job)
	return job, nil
}

// awaitTerminal polls the cache until the in-flight enrichment of jobID
// settles.
func (s *Service) awaitTerminal(ctx context.Context, jobID string) (occ.JobOffer, error) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		entry, ok := s.cache.Get(ctx, jobID)
		if ok {
			switch entry.State {
			case StateEnriched:
				return entry.Job, nil
			case StateFailed:
				return occ.JobOffer{}, fmt.Errorf("enrich %s: %s", jobID, entry.LastError)
			}
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return occ.JobOffer{}, ctx.Err()
		}
	}
}

// run is one worker loop. Each dequeue re-checks the compare-and-set so ids
// enqueued multiple times cost one fetch.
func (s *Service) run(ctx context.Context, id int) {
	defer s.wg.Done()
	for {
		jobID, ok := s.queue.Dequeue(ctx)
		if !ok {
			return
		}
		if !s.cache.TryBeginEnrich(ctx, jobID) {
			s.coalesced.Add(1)
			continue
		}
		if ctx.Err() != nil {
			// Shutting down mid-transition. Finalize so the entry is not
			// stuck enriching.
			s.cache.Fail(context.WithoutCancel(ctx), jobID, ctx.Err())
			return
		}
		if _, err := s.enrichNow(ctx, jobID); err != nil {
			slog.Debug("enrich: background fetch failed",
				slog.Int("worker", id), slog.String("job_id", jobID), slog.Any("error", err))
		}
	}
}

// Metrics returns pipeline counters plus cache hit/miss totals.
func (s *Service) Metrics() map[string]int64 {
	hits, misses := s.cache.Stats()
	return map[string]int64{
		"enrich_enqueued":    s.enqueued.Load(),
		"enrich_dropped":     s.dropped.Load(),
		"enrich_coalesced":   s.coalesced.Load(),
		"enrich_completed":   s.enrichOK.Load(),
		"enrich_failed":      s.enrichErr.Load(),
		"enrich_queue_depth": int64(s.queue.Len()),
		"cache_hits":         hits,
		"cache_misses":       misses,
	}
}
