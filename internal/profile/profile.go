// Package profile defines the typed CV profile produced by the extractor
// pipeline, its invariants, and the merge policy between the unsupervised and
// NER-assisted extractors.
package profile

import (
	"sort"
	"strings"
	"time"
)

// Method records which extraction strategy produced a field.
type Method string

const (
	MethodRegex        Method = "regex"
	MethodUnsupervised Method = "unsupervised"
	MethodNER          Method = "ner"
)

// MinGraduationYear bounds plausible graduation years.
const MinGraduationYear = 1950

// DefaultMaxSkills caps the skills set (extract.max_skills).
const DefaultMaxSkills = 30

// EducationEntry is a single education record. Institution is required;
// everything else is best-effort.
type EducationEntry struct {
	Institution    string `json:"institution"`
	Degree         string `json:"degree,omitempty"`
	FieldOfStudy   string `json:"field_of_study,omitempty"`
	GraduationYear int    `json:"graduation_year,omitempty"`
}

// ExperienceEntry is a single work record. Position is required. EndDate is a
// year string or the token "present".
type ExperienceEntry struct {
	Position    string `json:"position"`
	Company     string `json:"company,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	Description string `json:"description,omitempty"`
}

// Profile is the structured output of CV extraction.
type Profile struct {
	Objective      string            `json:"objective,omitempty"`
	Education      []EducationEntry  `json:"education,omitempty"`
	Experience     []ExperienceEntry `json:"experience,omitempty"`
	Skills         []string          `json:"skills,omitempty"`
	Languages      map[string]string `json:"languages,omitempty"`
	Certifications []string          `json:"certifications,omitempty"`

	// Auxiliary NER fields.
	Organizations []string `json:"organizations,omitempty"`
	Persons       []string `json:"persons,omitempty"`
	Locations     []string `json:"locations,omitempty"`
	Dates         []string `json:"dates,omitempty"`

	Confidence      float64            `json:"confidence"`
	FieldConfidence map[string]float64 `json:"field_confidence,omitempty"`
	FieldMethods    map[string]Method  `json:"field_methods,omitempty"`

	// Truncated marks profiles extracted from input cut at the size ceiling.
	Truncated bool `json:"truncated,omitempty"`
}

// Empty reports whether the profile carries no extracted content.
func (p *Profile) Empty() bool {
	return p.Objective == "" &&
		len(p.Education) == 0 &&
		len(p.Experience) == 0 &&
		len(p.Skills) == 0 &&
		len(p.Languages) == 0 &&
		len(p.Certifications) == 0 &&
		len(p.Organizations) == 0 &&
		len(p.Persons) == 0 &&
		len(p.Locations) == 0 &&
		len(p.Dates) == 0
}

// ValidGraduationYear reports whether year is inside the accepted window
// [1950, current_year+5].
func ValidGraduationYear(year int) bool {
	return year >= MinGraduationYear && year <= time.Now().Year()+5
}

// CanonicalSkill returns the canonical (title-cased) form of a skill, keeping
// all-caps acronyms and symbol tokens as given.
func CanonicalSkill(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if s == strings.ToUpper(s) && len(s) <= 5 {
		return s // AWS, SQL, GCP
	}
	words := strings.Fields(s)
	for i, w := range words {
		if strings.ContainsAny(w, "+#.") || w == strings.ToUpper(w) && len(w) <= 5 {
			continue // c++, c#, node.js, SQL
		}
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// NormalizeSkills dedupes case-insensitively, canonicalizes, and caps the set
// at max entries, preserving first-seen order.
func NormalizeSkills(skills []string, max int) []string {
	if max <= 0 {
		max = DefaultMaxSkills
	}
	seen := make(map[string]bool, len(skills))
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, CanonicalSkill(s))
		if len(out) >= max {
			break
		}
	}
	return out
}

// confidenceWeights are the per-field weights of the overall confidence.
var confidenceWeights = map[string]float64{
	"experience":     0.3,
	"education":      0.2,
	"skills":         0.2,
	"objective":      0.1,
	"languages":      0.1,
	"certifications": 0.1,
}

// OverallConfidence computes the bounded weighted mean over present fields.
// Missing fields contribute 0; an all-empty profile scores 0.
func OverallConfidence(fieldConf map[string]float64) float64 {
	var sum float64
	for field, weight := range confidenceWeights {
		c := fieldConf[field]
		if c < 0 {
			c = 0
		}
		if c > 1 {
			c = 1
		}
		sum += weight * c
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

// auxConfidence is the confidence assigned to profiles whose only content is
// auxiliary entity fields, which carry no weight in OverallConfidence.
const auxConfidence = 0.05

// FloorConfidence keeps Confidence nonzero for any non-empty profile, so a
// zero confidence always means an empty extraction.
func (p *Profile) FloorConfidence() {
	if p.Confidence == 0 && !p.Empty() {
		p.Confidence = auxConfidence
	}
}

// Merge combines the unsupervised and NER extractions per the merge policy:
// NER wins the entity fields, the unsupervised pass wins free text, skills and
// languages are unioned, and structured entries prefer whichever side found
// more.
func Merge(unsup, ner *Profile) *Profile {
	if unsup == nil && ner == nil {
		return &Profile{}
	}
	if unsup == nil {
		return ner
	}
	if ner == nil {
		return unsup
	}

	merged := &Profile{
		Objective:       unsup.Objective,
		Organizations:   ner.Organizations,
		Persons:         ner.Persons,
		Locations:       ner.Locations,
		Dates:           ner.Dates,
		Truncated:       unsup.Truncated || ner.Truncated,
		FieldConfidence: map[string]float64{},
		FieldMethods:    map[string]Method{},
	}

	merged.Education = unsup.Education
	eduMethod := MethodUnsupervised
	if len(ner.Education) > len(unsup.Education) {
		merged.Education = ner.Education
		eduMethod = MethodNER
	}
	merged.Experience = unsup.Experience
	expMethod := MethodUnsupervised
	if len(ner.Experience) > len(unsup.Experience) {
		merged.Experience = ner.Experience
		expMethod = MethodNER
	}

	merged.Skills = NormalizeSkills(append(append([]string{}, unsup.Skills...), ner.Skills...), DefaultMaxSkills)

	merged.Languages = map[string]string{}
	for name, level := range unsup.Languages {
		merged.Languages[name] = level
	}
	for name, level := range ner.Languages {
		if cur, ok := merged.Languages[name]; !ok || cur == "" {
			merged.Languages[name] = level
		}
	}
	if len(merged.Languages) == 0 {
		merged.Languages = nil
	}

	merged.Certifications = unsup.Certifications
	if len(ner.Certifications) > len(unsup.Certifications) {
		merged.Certifications = ner.Certifications
	}

	for field, c := range unsup.FieldConfidence {
		merged.FieldConfidence[field] = c
	}
	for field, c := range ner.FieldConfidence {
		if c > merged.FieldConfidence[field] {
			merged.FieldConfidence[field] = c
		}
	}
	merged.Confidence = OverallConfidence(merged.FieldConfidence)
	merged.FloorConfidence()

	for field, m := range unsup.FieldMethods {
		merged.FieldMethods[field] = m
	}
	for field, m := range ner.FieldMethods {
		if _, ok := merged.FieldMethods[field]; !ok {
			merged.FieldMethods[field] = m
		}
	}
	merged.FieldMethods["organizations"] = MethodNER
	merged.FieldMethods["education"] = eduMethod
	merged.FieldMethods["experience"] = expMethod
	merged.FieldMethods["objective"] = MethodUnsupervised

	sort.Strings(merged.Organizations)
	sort.Strings(merged.Locations)
	return merged
}
