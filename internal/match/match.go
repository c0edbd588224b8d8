// Package match ranks job offers against candidate profiles. One scoring
// kernel serves both directions: candidates looking at jobs and companies
// filtering candidates.
package match

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/empleomatch/empleomatch/internal/occ"
	"github.com/empleomatch/empleomatch/internal/profile"
	"github.com/empleomatch/empleomatch/internal/textproc"
	"github.com/empleomatch/empleomatch/internal/tfidf"
)

// Weights are the base-score component weights.
type Weights struct {
	Skills   float64
	Projects float64
	Title    float64
}

// Boosts are the additive score adjustments.
type Boosts struct {
	Location  float64
	Activity  float64
	Projects  float64
	Diversity float64
}

// DefaultWeights and DefaultBoosts are the tuned constants; both are
// overridable through configuration.
func DefaultWeights() Weights { return Weights{Skills: 0.55, Projects: 0.25, Title: 0.20} }
func DefaultBoosts() Boosts {
	return Boosts{Location: 0.10, Activity: 0.05, Projects: 0.15, Diversity: 0.10}
}

const (
	// DefaultMinScore excludes weak matches from rankings.
	DefaultMinScore = 0.10
	// activityWindow bounds how recent last_active must be for the boost.
	activityWindow = 7 * 24 * time.Hour
	// diversityThreshold is the skill count that earns the diversity boost.
	diversityThreshold = 8
)

// Candidate is the matching-side view of a person: an extracted profile plus
// the signals the extractor cannot know.
type Candidate struct {
	Profile    *profile.Profile
	Skills     []string
	Projects   []string
	Location   string
	LastActive time.Time
}

// NewCandidate wraps an extracted profile. Explicit skills win over the
// profile's when both are set.
func NewCandidate(p *profile.Profile) Candidate {
	c := Candidate{Profile: p}
	if p != nil {
		c.Skills = p.Skills
	}
	return c
}

func (c *Candidate) skills() []string {
	if len(c.Skills) > 0 {
		return c.Skills
	}
	if c.Profile != nil {
		return c.Profile.Skills
	}
	return nil
}

// Result is one scored job.
type Result struct {
	JobID          string             `json:"job_id"`
	Job            occ.JobOffer       `json:"job"`
	Score          float64            `json:"score"`
	BaseScore      float64            `json:"base_score"`
	BoostTotal     float64            `json:"boost_total"`
	BoostBreakdown map[string]float64 `json:"boost_breakdown,omitempty"`
	MatchingSkills []string           `json:"matching_skills,omitempty"`
	MissingSkills  []string           `json:"missing_skills,omitempty"`

	projectOverlap float64
	skillOverlap   float64
}

// Scorer evaluates candidates against jobs with one set of weights.
type Scorer struct {
	vec      *tfidf.Vectorizer
	weights  Weights
	boosts   Boosts
	minScore float64
}

// ScorerOption customizes a Scorer.
type ScorerOption func(*Scorer)

func WithWeights(w Weights) ScorerOption    { return func(s *Scorer) { s.weights = w } }
func WithBoosts(b Boosts) ScorerOption      { return func(s *Scorer) { s.boosts = b } }
func WithMinScore(min float64) ScorerOption { return func(s *Scorer) { s.minScore = min } }
func WithVectorizer(v *tfidf.Vectorizer) ScorerOption {
	return func(s *Scorer) { s.vec = v }
}

// NewScorer builds a Scorer with default constants and the process-wide
// vectorizer.
func NewScorer(opts ...ScorerOption) *Scorer {
	s := &Scorer{
		weights:  DefaultWeights(),
		boosts:   DefaultBoosts(),
		minScore: DefaultMinScore,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vec == nil {
		s.vec = tfidf.Default()
	}
	return s
}

// MinScore returns the inclusion threshold.
func (s *Scorer) MinScore() float64 { return s.minScore }

// Score evaluates one candidate against one job and returns the full
// breakdown. Empty inputs score zero, never an error.
func (s *Scorer) Score(c *Candidate, job *occ.JobOffer) Result {
	res := Result{JobID: job.JobID, Job: *job, BoostBreakdown: map[string]float64{}}

	jobText := textproc.Normalize(job.Title+" "+job.Description+" "+job.FullDescription, textproc.Basic)
	skills := c.skills()

	// Skill overlap: case-insensitive substring against the job text.
	for _, skill := range skills {
		needle := strings.ToLower(skill)
		if needle != "" && strings.Contains(jobText, needle) {
			res.MatchingSkills = append(res.MatchingSkills, skill)
		}
	}
	res.skillOverlap = float64(len(res.MatchingSkills)) / math.Max(1, float64(len(skills)))

	// Project overlap: fraction of projects whose top terms intersect the
	// job's top terms.
	overlapped := 0
	if len(c.Projects) > 0 {
		jobTerms := s.topTermSet(jobText)
		for _, project := range c.Projects {
			if s.termsIntersect(project, jobTerms) {
				overlapped++
			}
		}
		res.projectOverlap = float64(overlapped) / float64(len(c.Projects))
	}

	res.BaseScore = clamp01(s.weights.Skills*res.skillOverlap +
		s.weights.Projects*res.projectOverlap +
		s.weights.Title*s.titleSimilarity(job.Title, skills))

	// Boosts, each bounded, the sum clamped with the base to 1.
	if c.Location != "" && job.Location != "" && containsEitherFold(c.Location, job.Location) {
		res.BoostBreakdown["location"] = s.boosts.Location
	}
	if !c.LastActive.IsZero() && time.Since(c.LastActive) <= activityWindow {
		res.BoostBreakdown["activity"] = s.boosts.Activity
	}
	if overlapped >= 2 {
		res.BoostBreakdown["projects"] = s.boosts.Projects
	}
	if len(skills) >= diversityThreshold {
		res.BoostBreakdown["diversity"] = s.boosts.Diversity
	}
	for _, b := range res.BoostBreakdown {
		res.BoostTotal += b
	}
	res.Score = clamp01(res.BaseScore + res.BoostTotal)

	res.MissingSkills = missingSkills(job.Skills, skills)
	return res
}

// titleSimilarity is the highest cosine between the job title and any
// single skill. A maximum cannot decrease as skills are added.
func (s *Scorer) titleSimilarity(title string, skills []string) float64 {
	if title == "" || len(skills) == 0 {
		return 0
	}
	titleVec, err := s.vec.Transform(title)
	if err != nil {
		return 0
	}
	best := 0.0
	for _, skill := range skills {
		skillVec, err := s.vec.Transform(skill)
		if err != nil {
			continue
		}
		if sim := tfidf.Similarity(titleVec, skillVec); sim > best {
			best = sim
		}
	}
	return best
}

func (s *Scorer) topTermSet(text string) map[string]bool {
	terms, err := s.vec.TopTerms(text, 10)
	if err != nil {
		return nil
	}
	set := make(map[string]bool, len(terms))
	for _, tw := range terms {
		set[tw.Term] = true
	}
	return set
}

func (s *Scorer) termsIntersect(project string, jobTerms map[string]bool) bool {
	if len(jobTerms) == 0 {
		return false
	}
	terms, err := s.vec.TopTerms(project, 10)
	if err != nil {
		return false
	}
	for _, tw := range terms {
		if jobTerms[tw.Term] {
			return true
		}
	}
	return false
}

// missingSkills lists the job's own required skills absent from the
// candidate's set.
func missingSkills(required, have []string) []string {
	haveSet := make(map[string]bool, len(have))
	for _, skill := range have {
		haveSet[strings.ToLower(skill)] = true
	}
	var missing []string
	for _, req := range required {
		if req != "" && !haveSet[strings.ToLower(req)] {
			missing = append(missing, req)
		}
	}
	return missing
}

// containsEitherFold reports a case-insensitive substring match in either
// direction.
func containsEitherFold(a, b string) bool {
	la, lb := strings.ToLower(a), strings.ToLower(b)
	return strings.Contains(la, lb) || strings.Contains(lb, la)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// rank orders results descending by score with deterministic tie-breaks:
// higher project overlap, then higher skill overlap, then earlier
// publication date.
func rank(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.projectOverlap != b.projectOverlap {
			return a.projectOverlap > b.projectOverlap
		}
		if a.skillOverlap != b.skillOverlap {
			return a.skillOverlap > b.skillOverlap
		}
		ta, tb := a.Job.PublishedAt, b.Job.PublishedAt
		if !ta.IsZero() && !tb.IsZero() && !ta.Equal(tb) {
			return ta.Before(tb)
		}
		return false
	})
}
