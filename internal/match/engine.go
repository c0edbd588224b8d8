package match

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/empleomatch/empleomatch/internal/occ"
)

// Provider supplies job offers for ranking. *occ.Scraper wrapped with an
// adapter, the enrichment cache, or a test stub all satisfy it.
type Provider interface {
	Name() string
	Find(ctx context.Context, query Query) ([]occ.JobOffer, error)
}

// Query is what the engine asks providers for.
type Query struct {
	Keywords []string
	Location string
}

// Text joins the keyword tokens for providers that take a single string.
func (q Query) Text() string { return strings.Join(q.Keywords, " ") }

// maxQueryTokens caps query construction: top skills plus project keywords.
const (
	maxQueryTokens    = 8
	topSkillsInQuery  = 5
	keywordsPerProj   = 2
	recommendDeadline = 10 * time.Second
)

// NoProvidersMarker annotates an empty ranking caused by every provider
// coming back empty or failing.
const NoProvidersMarker = "no providers returned results"

// Ranking is a recommend response: ordered results plus an optional
// informational marker. An empty ranking is a valid answer, never an error.
type Ranking struct {
	Results []Result `json:"results"`
	Marker  string   `json:"marker,omitempty"`
}

// Engine runs the scoring kernel over one or more job providers.
type Engine struct {
	scorer    *Scorer
	providers []Provider
}

// NewEngine builds an engine. Providers are queried in order; one failing
// provider never fails the ranking.
func NewEngine(scorer *Scorer, providers ...Provider) *Engine {
	if scorer == nil {
		scorer = NewScorer()
	}
	return &Engine{scorer: scorer, providers: providers}
}

// BuildQuery derives a provider query from a candidate: the top-5 skills and
// 2 keywords per project, at most 8 tokens, plus the location.
func (e *Engine) BuildQuery(c *Candidate, location string) Query {
	var keywords []string
	seen := map[string]bool{}
	add := func(tok string) bool {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if tok == "" || seen[tok] || len(keywords) >= maxQueryTokens {
			return len(keywords) < maxQueryTokens
		}
		seen[tok] = true
		keywords = append(keywords, tok)
		return true
	}

	skills := c.skills()
	for i := 0; i < len(skills) && i < topSkillsInQuery; i++ {
		add(skills[i])
	}
	for _, project := range c.Projects {
		terms, err := e.scorer.vec.TopTerms(project, keywordsPerProj)
		if err != nil {
			continue
		}
		for _, tw := range terms {
			if !add(tw.Term) {
				break
			}
		}
	}
	return Query{Keywords: keywords, Location: location}
}

// Recommend returns a ranked sequence of results for a candidate, bounded by
// the matching deadline. Jobs are deduplicated across providers.
func (e *Engine) Recommend(ctx context.Context, c *Candidate, location string, limit int) Ranking {
	ctx, cancel := context.WithTimeout(ctx, recommendDeadline)
	defer cancel()

	if limit <= 0 {
		limit = 10
	}
	query := e.BuildQuery(c, location)

	var jobs []occ.JobOffer
	seen := map[string]bool{}
	for _, p := range e.providers {
		if ctx.Err() != nil {
			break
		}
		found, err := p.Find(ctx, query)
		if err != nil {
			slog.Warn("match: provider failed, continuing",
				slog.String("provider", p.Name()), slog.Any("error", err))
			continue
		}
		for _, job := range found {
			key := job.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			jobs = append(jobs, job)
		}
	}
	if len(jobs) == 0 {
		return Ranking{Marker: NoProvidersMarker}
	}

	if location != "" && c.Location == "" {
		c = &Candidate{
			Profile: c.Profile, Skills: c.Skills, Projects: c.Projects,
			Location: location, LastActive: c.LastActive,
		}
	}

	results := make([]Result, 0, len(jobs))
	for i := range jobs {
		res := e.scorer.Score(c, &jobs[i])
		if res.Score >= e.scorer.minScore {
			results = append(results, res)
		}
	}
	rank(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return Ranking{Results: results}
}

// CandidateScore pairs a candidate with its score against a job.
type CandidateScore struct {
	Candidate *Candidate `json:"-"`
	Result    Result     `json:"result"`
}

// FilterCandidates is the inverse direction: a company holds a job and ranks
// candidates with the same kernel, roles swapped.
func (e *Engine) FilterCandidates(job *occ.JobOffer, candidates []*Candidate) []CandidateScore {
	var out []CandidateScore
	for _, c := range candidates {
		res := e.scorer.Score(c, job)
		if res.Score >= e.scorer.minScore {
			out = append(out, CandidateScore{Candidate: c, Result: res})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Result, out[j].Result
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.projectOverlap != b.projectOverlap {
			return a.projectOverlap > b.projectOverlap
		}
		return a.skillOverlap > b.skillOverlap
	})
	return out
}
