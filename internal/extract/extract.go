// Package extract is the façade over the two CV extraction strategies. Both
// run on every call and their outputs are merged; callers never pick one.
package extract

import (
	"log/slog"

	"github.com/empleomatch/empleomatch/internal/cvparse"
	"github.com/empleomatch/empleomatch/internal/ner"
	"github.com/empleomatch/empleomatch/internal/profile"
)

// Pipeline owns the sibling extractors.
type Pipeline struct {
	unsupervised *cvparse.Extractor
	nerAssisted  *ner.Extractor
	maxSkills    int
}

// New builds a pipeline with default limits.
func New() *Pipeline {
	return &Pipeline{
		unsupervised: cvparse.NewExtractor(),
		nerAssisted:  ner.NewExtractor(),
		maxSkills:    profile.DefaultMaxSkills,
	}
}

// WithMaxSkills overrides the skill cap on both strategies.
func (p *Pipeline) WithMaxSkills(max int) *Pipeline {
	if max > 0 {
		p.unsupervised.MaxSkills = max
		p.nerAssisted.MaxSkills = max
		p.maxSkills = max
	}
	return p
}

// WithLanguage forces the input language ("es" or "en") instead of detecting
// it per CV. "auto" and unknown values keep detection on.
func (p *Pipeline) WithLanguage(lang string) *Pipeline {
	switch lang {
	case "es", "en":
		p.nerAssisted.Language = lang
	}
	return p
}

// Profile extracts a merged profile from raw CV text. Never returns an
// error: hostile or empty input yields an empty profile with confidence 0.
func (p *Pipeline) Profile(cvText string) *profile.Profile {
	unsup := p.unsupervised.Extract(cvText)
	assisted := p.nerAssisted.Extract(cvText)
	merged := profile.Merge(unsup, assisted)
	// The union of two capped lists can overflow the cap.
	merged.Skills = profile.NormalizeSkills(merged.Skills, p.maxSkills)

	slog.Debug("extract: profile built",
		slog.Int("education", len(merged.Education)),
		slog.Int("experience", len(merged.Experience)),
		slog.Int("skills", len(merged.Skills)),
		slog.Float64("confidence", merged.Confidence))
	return merged
}
