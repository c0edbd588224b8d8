// Package enrich upgrades list-view job offers to detail-view offers in the
// background. It pairs a bounded priority queue with a 2-tier cache: L1
// in-memory + optional L2 Redis, plus a SQLite store that survives restarts.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/empleomatch/empleomatch/internal/occ"
)

// State is the enrichment lifecycle of a cached job.
type State string

const (
	StateRaw       State = "raw"
	StateEnriching State = "enriching"
	StateEnriched  State = "enriched"
	StateFailed    State = "failed"
)

const (
	// DefaultTTL keeps entries a week, matching how long postings stay fresh.
	DefaultTTL = 7 * 24 * time.Hour
	// retryCooldown delays re-enrichment of a failed entry.
	retryCooldown = 10 * time.Minute
	// maxAttempts caps enrichment tries per entry until TTL expiry.
	maxAttempts = 3
)

// Entry is one cached job with its enrichment lifecycle. Entries are
// published immutably: a transition installs a fresh copy, it never mutates
// an entry already handed to a reader.
type Entry struct {
	JobID        string       `json:"job_id"`
	Job          occ.JobOffer `json:"job"`
	State        State        `json:"enrichment_state"`
	InsertedAt   time.Time    `json:"inserted_at"`
	TTLExpiresAt time.Time    `json:"ttl_expires_at"`
	Attempts     int          `json:"attempts"`
	NextRetryAt  time.Time    `json:"next_retry_at,omitempty"`
	LastError    string       `json:"last_error,omitempty"`
}

func (e *Entry) expired() bool { return time.Now().After(e.TTLExpiresAt) }

// Cache is the 2-tier job cache. L1 is fast but lost on restart; L2 Redis
// survives restarts and is optional. A SQLite store can be attached for a
// durable copy of enriched entries.
type Cache struct {
	l1         sync.Map // job_id → *Entry
	rdb        *redis.Client
	store      *Store
	ttl        time.Duration
	maxEntries int

	// mu serializes state transitions so the raw→enriching compare-and-set
	// is atomic per job_id.
	mu sync.Mutex

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheOptions configures NewCache. Zero values get defaults.
type CacheOptions struct {
	RedisURL   string
	Store      *Store
	TTL        time.Duration
	MaxEntries int
}

// NewCache builds the cache. An unreachable Redis downgrades to L1-only with
// a warning, never an error.
func NewCache(opts CacheOptions) *Cache {
	c := &Cache{store: opts.Store, ttl: opts.TTL, maxEntries: opts.MaxEntries}
	if c.ttl <= 0 {
		c.ttl = DefaultTTL
	}
	if c.maxEntries <= 0 {
		c.maxEntries = 10000
	}

	if opts.RedisURL != "" {
		ropts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			slog.Warn("enrich cache: invalid redis URL, L2 disabled", slog.Any("error", err))
		} else {
			rdb := redis.NewClient(ropts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				slog.Warn("enrich cache: redis unreachable, L2 disabled", slog.Any("error", err))
			} else {
				c.rdb = rdb
				slog.Info("enrich cache: L2 redis connected", slog.String("addr", ropts.Addr))
			}
		}
	}

	if c.store != nil {
		if n, err := c.warmFromStore(); err != nil {
			slog.Warn("enrich cache: warm load failed", slog.Any("error", err))
		} else if n > 0 {
			slog.Info("enrich cache: warmed from store", slog.Int("entries", n))
		}
	}
	slog.Info("enrich cache: initialized",
		slog.Duration("ttl", c.ttl),
		slog.Bool("redis", c.rdb != nil),
		slog.Bool("sqlite", c.store != nil))
	return c
}

func redisKey(jobID string) string { return "em:job:" + jobID }

// Get returns the entry for jobID. Expired entries are treated as misses and
// evicted. L2 hits repopulate L1.
func (c *Cache) Get(ctx context.Context, jobID string) (*Entry, bool) {
	if val, ok := c.l1.Load(jobID); ok {
		entry := val.(*Entry)
		if !entry.expired() {
			c.hits.Add(1)
			return entry, true
		}
		c.l1.Delete(jobID)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, redisKey(jobID)).Bytes()
		if err == nil {
			var entry Entry
			if json.Unmarshal(data, &entry) == nil && !entry.expired() {
				c.hits.Add(1)
				c.l1.Store(jobID, &entry)
				return &entry, true
			}
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Enriched returns the cached detail-view offer when the entry is terminal
// enriched and fresh. This is the short-circuit search uses to skip a fetch.
func (c *Cache) Enriched(ctx context.Context, jobID string) (occ.JobOffer, bool) {
	entry, ok := c.Get(ctx, jobID)
	if !ok || entry.State != StateEnriched {
		return occ.JobOffer{}, false
	}
	return entry.Job, true
}

// PutRaw seeds the cache with a list-view offer. An existing fresh entry is
// left untouched so enriched data is never downgraded.
func (c *Cache) PutRaw(ctx context.Context, job occ.JobOffer) *Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if val, ok := c.l1.Load(job.JobID); ok {
		if entry := val.(*Entry); !entry.expired() {
			return entry
		}
	}
	now := time.Now()
	entry := &Entry{
		JobID:        job.JobID,
		Job:          job,
		State:        StateRaw,
		InsertedAt:   now,
		TTLExpiresAt: now.Add(c.ttl),
	}
	c.evictIfNeeded()
	c.writeLocked(ctx, entry)
	return entry
}

// TryBeginEnrich performs the raw→enriching transition. It returns false when
// another worker already holds the entry, the entry is terminal enriched, or
// a failed entry is still cooling down or out of attempts. This check is what
// coalesces duplicate work.
func (c *Cache) TryBeginEnrich(ctx context.Context, jobID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	val, ok := c.l1.Load(jobID)
	if !ok {
		return false
	}
	entry := val.(*Entry)
	if entry.expired() {
		c.l1.Delete(jobID)
		return false
	}
	switch entry.State {
	case StateEnriching, StateEnriched:
		return false
	case StateFailed:
		if entry.Attempts >= maxAttempts || time.Now().Before(entry.NextRetryAt) {
			return false
		}
	}
	next := *entry
	next.State = StateEnriching
	next.Attempts++
	c.writeLocked(ctx, &next)
	return true
}

// Complete finalizes an enriching entry with the fetched detail view.
func (c *Cache) Complete(ctx context.Context, jobID string, job occ.JobOffer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.l1.Load(jobID)
	if !ok {
		return
	}
	next := *val.(*Entry)
	next.Job = job
	next.State = StateEnriched
	next.LastError = ""
	c.writeLocked(ctx, &next)
}

// Fail finalizes an enriching entry as failed and schedules the cooldown.
// Cancellation paths call this too so no entry is left mid-flight.
func (c *Cache) Fail(ctx context.Context, jobID string, cause error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.l1.Load(jobID)
	if !ok {
		return
	}
	next := *val.(*Entry)
	next.State = StateFailed
	next.NextRetryAt = time.Now().Add(retryCooldown)
	if cause != nil {
		next.LastError = cause.Error()
	}
	c.writeLocked(ctx, &next)
}

// Retryable reports whether a failed entry still has attempts left.
func (c *Cache) Retryable(jobID string) bool {
	val, ok := c.l1.Load(jobID)
	if !ok {
		return false
	}
	entry := val.(*Entry)
	return entry.State == StateFailed && entry.Attempts < maxAttempts
}

// Invalidate drops an entry from every tier. Operator action.
func (c *Cache) Invalidate(ctx context.Context, jobID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.l1.Delete(jobID)
	if c.rdb != nil {
		c.rdb.Del(ctx, redisKey(jobID))
	}
	if c.store != nil {
		if err := c.store.Delete(ctx, jobID); err != nil {
			slog.Debug("enrich cache: store delete failed", slog.Any("error", err))
		}
	}
}

// Stats returns hit/miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the Redis connection. The SQLite store is owned by the
// caller.
func (c *Cache) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// writeLocked propagates an entry to all tiers. Caller holds mu.
func (c *Cache) writeLocked(ctx context.Context, entry *Entry) {
	c.l1.Store(entry.JobID, entry)

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if c.rdb != nil {
		ttl := time.Until(entry.TTLExpiresAt)
		if ttl > 0 {
			if err := c.rdb.Set(ctx, redisKey(entry.JobID), data, ttl).Err(); err != nil {
				slog.Debug("enrich cache: L2 set failed", slog.Any("error", err))
			}
		}
	}
	if c.store != nil {
		if err := c.store.Save(ctx, entry); err != nil {
			slog.Debug("enrich cache: store save failed", slog.Any("error", err))
		}
	}
}

// evictIfNeeded keeps L1 under maxEntries: expired entries first, then the
// ones closest to expiry. Caller holds mu.
func (c *Cache) evictIfNeeded() {
	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if entry, ok := val.(*Entry); ok && now.After(entry.TTLExpiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		oldestAt := now.Add(c.ttl + time.Hour)
		c.l1.Range(func(key, val any) bool {
			if entry, ok := val.(*Entry); ok && entry.TTLExpiresAt.Before(oldestAt) {
				oldestKey = key
				oldestAt = entry.TTLExpiresAt
			}
			return true
		})
		if oldestKey == nil {
			break
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

// warmFromStore loads fresh persisted entries into L1. In-flight states from
// a crashed process come back as failed so they are retried, not stuck.
func (c *Cache) warmFromStore() (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	entries, err := c.store.LoadFresh(ctx)
	if err != nil {
		return 0, err
	}
	for _, entry := range entries {
		if entry.State == StateEnriching {
			entry.State = StateFailed
			entry.LastError = "interrupted by shutdown"
		}
		c.l1.Store(entry.JobID, entry)
	}
	return len(entries), nil
}

func (e *Entry) String() string {
	return fmt.Sprintf("%s[%s attempts=%d]", e.JobID, e.State, e.Attempts)
}
