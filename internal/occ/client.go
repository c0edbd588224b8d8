package occ

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"
)

// Config controls scraper politeness and endpoints.
type Config struct {
	BaseURL        string
	OfferHost      string
	MaxConcurrent  int
	DelayFloor     time.Duration
	Timeout        time.Duration
	RetryBase      time.Duration
	RetryFactor    float64
	RetryJitter    float64
	RetryCap       time.Duration
	RetryMax       int
	DetailBudget   time.Duration
}

// DefaultConfig returns the default scraper settings.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://www.occ.com.mx",
		OfferHost:     "https://www.occ.com.mx",
		MaxConcurrent: 3,
		DelayFloor:    time.Second,
		Timeout:       30 * time.Second,
		RetryBase:     500 * time.Millisecond,
		RetryFactor:   2.0,
		RetryJitter:   0.2,
		RetryCap:      8 * time.Second,
		RetryMax:      4,
		DetailBudget:  45 * time.Second,
	}
}

// Scraper is a polite HTTP client for one job board host. One HTTP client per
// scraper, one token-bucket limiter gating every outgoing request.
type Scraper struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	uaNext  atomic.Uint32
}

// NewScraper builds a scraper from cfg, filling zero fields with defaults.
func NewScraper(cfg Config) *Scraper {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.OfferHost == "" {
		cfg.OfferHost = cfg.BaseURL
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if cfg.DelayFloor <= 0 {
		cfg.DelayFloor = def.DelayFloor
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = def.RetryBase
	}
	if cfg.RetryFactor <= 0 {
		cfg.RetryFactor = def.RetryFactor
	}
	if cfg.RetryCap <= 0 {
		cfg.RetryCap = def.RetryCap
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = def.RetryMax
	}
	if cfg.DetailBudget <= 0 {
		cfg.DetailBudget = def.DetailBudget
	}

	return &Scraper{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     30 * time.Second,
				TLSHandshakeTimeout: 15 * time.Second,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("stopped after 10 redirects")
				}
				return nil
			},
		},
		limiter: rate.NewLimiter(rate.Every(cfg.DelayFloor), 1),
	}
}

// Close releases idle connections. Safe to call more than once.
func (s *Scraper) Close() {
	s.http.CloseIdleConnections()
}

// userAgents is the fixed rotation pool.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:132.0) Gecko/20100101 Firefox/132.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.6 Safari/605.1.15",
}

func (s *Scraper) nextUserAgent() string {
	n := s.uaNext.Add(1)
	return userAgents[int(n)%len(userAgents)]
}

// permanentStatus reports 4xx statuses (other than 429) that must not be
// retried.
func permanentStatus(code int) bool {
	return code >= 400 && code < 500 && code != http.StatusTooManyRequests
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, 500, 502, 503, 504:
		return true
	}
	return false
}

// fetch performs one rate-limited GET with retry and backoff. kind selects
// the header profile: "list" (HTML, no compression) or "json" (detail
// endpoint with Referer).
func (s *Scraper) fetch(ctx context.Context, fetchURL, kind string) ([]byte, error) {
	operation := func() ([]byte, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", s.nextUserAgent())
		req.Header.Set("Accept-Language", "es-MX,es;q=0.9,en;q=0.8")
		switch kind {
		case "json":
			req.Header.Set("Accept", "application/json,text/plain,*/*")
			req.Header.Set("Referer", s.cfg.BaseURL)
		default:
			req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
			req.Header.Set("Accept-Encoding", "identity")
		}

		resp, err := s.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(ctx.Err())
			}
			metrics.HTTPRetries.Add(1)
			return nil, err // transient: connection refused/reset, timeout
		}
		defer resp.Body.Close()

		if retryableStatus(resp.StatusCode) {
			metrics.HTTPRetries.Add(1)
			if ra := resp.Header.Get("Retry-After"); ra != "" {
				if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
					slog.Debug("occ: honoring Retry-After", slog.Int("seconds", secs))
					return nil, backoff.RetryAfter(secs)
				}
			}
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}
		if permanentStatus(resp.StatusCode) {
			return nil, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.RetryBase
	bo.Multiplier = s.cfg.RetryFactor
	bo.RandomizationFactor = s.cfg.RetryJitter
	bo.MaxInterval = s.cfg.RetryCap

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(s.cfg.RetryMax)))
}
