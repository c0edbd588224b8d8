package occ

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Search fetches one list page and returns its offers plus the board's total
// result count (0 when the page does not expose it).
func (s *Scraper) Search(ctx context.Context, filters SearchFilters) ([]JobOffer, int, error) {
	searchURL, err := s.SearchURL(filters)
	if err != nil {
		return nil, 0, err
	}
	metrics.SearchRequests.Add(1)

	body, err := s.fetch(ctx, searchURL, "list")
	if err != nil {
		return nil, 0, fmt.Errorf("occ: search %q page %d: %w", filters.Keyword, filters.Page, err)
	}
	jobs, total, err := parseListPage(body)
	if err != nil {
		return nil, 0, fmt.Errorf("occ: search %q page %d: %w", filters.Keyword, filters.Page, err)
	}
	slog.Debug("search page parsed",
		"keyword", filters.Keyword,
		"page", filters.Page,
		"jobs", len(jobs),
		"total", total)
	return jobs, total, nil
}

// GetJobDetails fetches the full posting for one job. It tries the JSON
// detail endpoint first and falls back to scraping the HTML page. The whole
// attempt is bounded by the configured detail budget.
func (s *Scraper) GetJobDetails(ctx context.Context, jobID string) (JobOffer, error) {
	if jobID == "" {
		return JobOffer{}, fmt.Errorf("occ: empty job id")
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DetailBudget)
	defer cancel()

	metrics.DetailRequests.Add(1)

	body, jsonErr := s.fetch(ctx, s.detailJSONURL(jobID), "json")
	if jsonErr == nil {
		job, parseErr := parseDetailJSON(jobID, body)
		if parseErr == nil {
			return job, nil
		}
		jsonErr = parseErr
	}
	if ctx.Err() != nil {
		return JobOffer{}, fmt.Errorf("occ: details %s: %w", jobID, ctx.Err())
	}

	metrics.DetailFallback.Add(1)
	slog.Debug("detail json failed, trying html", "job_id", jobID, "error", jsonErr)

	body, htmlErr := s.fetch(ctx, s.detailHTMLURL(jobID), "list")
	if htmlErr != nil {
		return JobOffer{}, fmt.Errorf("occ: details %s: json: %v; html: %w", jobID, jsonErr, htmlErr)
	}
	job, parseErr := parseDetailHTML(jobID, body)
	if parseErr != nil {
		return JobOffer{}, fmt.Errorf("occ: details %s: json: %v; html: %w", jobID, jsonErr, parseErr)
	}
	return job, nil
}

// SearchWithDetails runs Search and then enriches each hit with its full
// posting, bounded by the configured concurrency. Detail failures degrade to
// the list-page offer rather than failing the search.
func (s *Scraper) SearchWithDetails(ctx context.Context, filters SearchFilters, fetchFull bool) ([]JobOffer, int, error) {
	jobs, total, err := s.Search(ctx, filters)
	if err != nil || !fetchFull || len(jobs) == 0 {
		return jobs, total, err
	}

	sem := make(chan struct{}, s.cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for i := range jobs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				return
			}
			full, err := s.GetJobDetails(ctx, jobs[i].JobID)
			if err != nil {
				slog.Warn("detail enrichment failed, keeping list data",
					"job_id", jobs[i].JobID, "error", err)
				return
			}
			mergeDetail(&jobs[i], full)
		}(i)
	}
	wg.Wait()
	return jobs, total, ctx.Err()
}

// mergeDetail overlays detail-page fields onto a list-page offer, keeping
// list values where the detail page came back empty.
func mergeDetail(dst *JobOffer, full JobOffer) {
	dst.FullDescription = full.FullDescription
	dst.FetchedAt = full.FetchedAt
	if full.Description != "" {
		dst.Description = full.Description
	}
	if full.Company != "" && full.Company != CompanyUnspecified {
		dst.Company = full.Company
	}
	if full.Location != "" && full.Location != LocationUnspecified {
		dst.Location = full.Location
	}
	if full.Salary != "" {
		dst.Salary = full.Salary
	}
	if full.WorkMode != "" {
		dst.WorkMode = full.WorkMode
	}
	if full.JobType != "" {
		dst.JobType = full.JobType
	}
	if full.ExperienceLevel != "" {
		dst.ExperienceLevel = full.ExperienceLevel
	}
	if full.EducationReq != "" {
		dst.EducationReq = full.EducationReq
	}
	if len(full.Skills) > 0 {
		dst.Skills = full.Skills
	}
	if len(full.Benefits) > 0 {
		dst.Benefits = full.Benefits
	}
	if full.PublicationDate != "" {
		dst.PublicationDate = full.PublicationDate
	}
	if !full.PublishedAt.IsZero() {
		dst.PublishedAt = full.PublishedAt
	}
	if full.URL != "" {
		dst.URL = full.URL
	}
	dst.CompanyVerified = dst.CompanyVerified || full.CompanyVerified
}

// SearchAll walks list pages until maxResults offers are collected, the board
// runs out of results, or the context expires. Offers are deduplicated by
// DedupKey across pages.
func (s *Scraper) SearchAll(ctx context.Context, filters SearchFilters, maxResults int) ([]JobOffer, error) {
	if maxResults <= 0 {
		maxResults = maxJobsPerPage
	}
	var (
		out     []JobOffer
		seen    = map[string]bool{}
		fetched int
	)
	filters.Page = 1
	for len(out) < maxResults {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		jobs, total, err := s.Search(ctx, filters)
		if err != nil {
			if len(out) > 0 {
				slog.Warn("pagination stopped early", "page", filters.Page, "error", err)
				return out, nil
			}
			return nil, err
		}
		if len(jobs) == 0 {
			break
		}
		fetched += len(jobs)
		for _, job := range jobs {
			key := job.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, job)
			if len(out) == maxResults {
				return out, nil
			}
		}
		if total > 0 && fetched >= total {
			break
		}
		filters.Page++
	}
	return out, nil
}

// PublishedWithin reports whether the offer was published inside the window.
// Offers without a parsed timestamp pass, the board occasionally omits dates
// on list cards.
func PublishedWithin(job *JobOffer, window time.Duration) bool {
	if job.PublishedAt.IsZero() {
		return true
	}
	return time.Since(job.PublishedAt) <= window
}
