package cvparse

import (
	"math"
	"regexp"
	"strings"
)

// Category is the role a single line plays in a CV.
type Category string

const (
	CatObjective     Category = "objective"
	CatEducation     Category = "education"
	CatExperience    Category = "experience"
	CatSkill         Category = "skill"
	CatLanguage      Category = "language"
	CatCertification Category = "certification"
	CatHeader        Category = "header"
	CatContact       Category = "contact"
	CatOther         Category = "other"
)

// categoryOrder is the stable tie-break order.
var categoryOrder = []Category{
	CatObjective, CatEducation, CatExperience, CatSkill,
	CatLanguage, CatCertification, CatHeader, CatContact, CatOther,
}

// minCategoryScore: below this the line is classified as other.
const minCategoryScore = 0.15

var levelTokenRe = regexp.MustCompile(`(?i)\b(native|nativo|fluent|fluido|advanced|avanzado|intermediate|intermedio|basic|básico|basico|conversational|conversacional|professional|profesional|[abc][12])\b`)

// Classify assigns a category and confidence to one line. Pure and
// independent of neighboring lines; section context is applied by the
// extractor, not here.
func Classify(line string, f LineFeatures) (Category, float64) {
	if strings.TrimSpace(line) == "" || f.WordCount == 0 {
		return CatOther, 0
	}

	scores := scoreCategories(line, f)

	best := CatOther
	bestScore := math.Inf(-1)
	for _, cat := range categoryOrder {
		if s := scores[cat]; s > bestScore {
			best = cat
			bestScore = s
		}
	}

	conf := confidenceFor(scores, best)
	if bestScore < minCategoryScore {
		return CatOther, conf
	}
	return best, conf
}

func scoreCategories(line string, f LineFeatures) map[Category]float64 {
	scores := make(map[Category]float64, len(categoryOrder))
	lower := strings.ToLower(line)

	// header: short, shouty, or colon-terminated lines.
	h := 0.0
	if f.EndsWithColon {
		h += 0.45
	}
	if f.UppercaseRatio > 0.7 && f.WordCount <= 5 {
		h += 0.45
	}
	if f.WordCount <= 3 && !f.HasDates && !f.HasEmail {
		h += 0.1
	}
	scores[CatHeader] = h

	// contact: regex hits dominate.
	c := 0.0
	if f.HasEmail {
		c += 0.6
	}
	if f.HasPhone {
		c += 0.45
	}
	if f.HasURL {
		c += 0.3
	}
	scores[CatContact] = c

	// experience: verbs + dates + org signals.
	e := 0.0
	if f.HasActionVerbs {
		e += 0.35
	}
	if f.HasDates {
		e += 0.25
	}
	if f.HasCompanySignals {
		e += 0.25
	}
	if f.HasMetrics {
		e += 0.1
	}
	if f.IsBulleted && f.HasActionVerbs {
		e += 0.1
	}
	scores[CatExperience] = e

	// education: keywords, dates without action verbs.
	ed := 0.0
	if f.HasEducationKW {
		ed += 0.5
	}
	if f.HasDates && !f.HasActionVerbs {
		ed += 0.2
	}
	if f.HasEducationKW && f.HasDates {
		ed += 0.1
	}
	scores[CatEducation] = ed

	// skill: tech terms, especially short comma-separated lists.
	s := 0.0
	if f.HasTechTerms {
		s += 0.45
		if commas := strings.Count(line, ","); commas >= 2 && f.WordCount <= 14 {
			s += 0.3
		}
		if f.IsBulleted && f.WordCount <= 6 {
			s += 0.1
		}
	}
	scores[CatSkill] = s

	// language: a known language name, stronger with a level token.
	l := 0.0
	if f.HasLanguageKW {
		l += 0.5
		if levelTokenRe.MatchString(line) {
			l += 0.35
		}
		if f.WordCount <= 8 {
			l += 0.1
		}
	}
	scores[CatLanguage] = l

	// certification: cert keywords, plus provider + optional year pattern.
	ct := 0.0
	if f.HasCertKW {
		ct += 0.55
		if f.HasDates {
			ct += 0.1
		}
	}
	if strings.Contains(lower, "certif") || strings.Contains(lower, "cert.") {
		ct += 0.2
	}
	scores[CatCertification] = ct

	// objective: narrative prose with no dates and no bullets.
	o := 0.0
	if !f.HasDates && !f.IsBulleted && !f.HasEmail && !f.HasURL && f.WordCount >= 8 {
		o += 0.3
		if !f.HasTechTerms || f.HasActionVerbs {
			o += 0.05
		}
		if strings.Contains(lower, "seeking") || strings.Contains(lower, "looking for") ||
			strings.Contains(lower, "busco") || strings.Contains(lower, "objetivo") ||
			strings.Contains(lower, "passionate") || strings.Contains(lower, "apasionado") {
			o += 0.25
		}
	}
	scores[CatObjective] = o

	scores[CatOther] = 0.1
	return scores
}

// confidenceFor is the winner's share of the total score mass. Summation
// follows categoryOrder so the value is identical run to run. A line whose
// evidence all points one way scores near 1; a contested line scores near
// an even split.
func confidenceFor(scores map[Category]float64, winner Category) float64 {
	var total float64
	for _, cat := range categoryOrder {
		total += scores[cat]
	}
	if total <= 0 {
		return 0
	}
	return scores[winner] / total
}
