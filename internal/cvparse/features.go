// Package cvparse converts raw CV text into a typed profile without any
// trained model: per-line feature extraction, deterministic line
// classification, and segment-based entry parsing.
package cvparse

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/empleomatch/empleomatch/internal/lexicon"
)

// LineFeatures captures the structural and lexical signals of one CV line.
// The zero value is the feature set of an empty line.
type LineFeatures struct {
	HasDates          bool
	HasActionVerbs    bool
	HasTechTerms      bool
	HasEducationKW    bool
	HasCompanySignals bool
	HasCertKW         bool
	HasLanguageKW     bool
	HasEmail          bool
	HasPhone          bool
	HasURL            bool
	HasMetrics        bool

	Length         int
	WordCount      int
	UppercaseRatio float64
	EndsWithColon  bool
	IsBulleted     bool
}

var (
	yearRe      = regexp.MustCompile(`\b(19[5-9]\d|20\d{2})\b`)
	yearRangeRe = regexp.MustCompile(`(?i)\b((?:19|20)\d{2})\s*(?:[-–—]|a|to|hasta)\s*((?:19|20)\d{2}|present|presente|actual(?:idad)?|current|hoy|now|fecha)\b`)
	monthRe     = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec|enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre|ene|abr|ago|dic)\b`)
	emailRe     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe     = regexp.MustCompile(`(?:\+?\d{1,3}[\s.-]?)?(?:\(\d{2,3}\)[\s.-]?)?\d{2,4}[\s.-]\d{2,4}[\s.-]?\d{2,4}`)
	urlRe       = regexp.MustCompile(`(?i)\b(?:https?://|www\.|linkedin\.com/|github\.com/)\S+`)
	metricsRe   = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?\s*(?:%|k\b|m\b|mm\b|\+)|\$\s*\d`)
	bulletRe    = regexp.MustCompile(`^\s*(?:[-•●▪*·►‣~]|\d+[.)])\s+`)
)

// ExtractFeatures computes LineFeatures for one line. Pure and O(len(line)).
func ExtractFeatures(line string) LineFeatures {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return LineFeatures{}
	}

	lower := strings.ToLower(line)
	words := strings.Fields(line)

	f := LineFeatures{
		Length:        len(line),
		WordCount:     len(words),
		EndsWithColon: strings.HasSuffix(strings.TrimSpace(line), ":"),
		IsBulleted:    bulletRe.MatchString(line),
	}

	f.HasDates = yearRe.MatchString(line) || monthRe.MatchString(line)
	f.HasEmail = emailRe.MatchString(line)
	f.HasPhone = !f.HasEmail && phoneRe.MatchString(line) && !yearRangeRe.MatchString(line)
	f.HasURL = urlRe.MatchString(line)
	f.HasMetrics = metricsRe.MatchString(line)

	verbs := lexicon.ActionVerbs()
	tech := lexicon.Tech()
	langs := lexicon.Languages()
	for _, w := range words {
		t := strings.ToLower(strings.Trim(w, ".,;:()[]"))
		if t == "" {
			continue
		}
		if verbs.Has(t) {
			f.HasActionVerbs = true
		}
		if tech.Has(t) {
			f.HasTechTerms = true
		}
		if langs.Has(t) {
			f.HasLanguageKW = true
		}
	}
	// Multi-word tech entries ("machine learning", "power bi").
	if !f.HasTechTerms {
		for term := range tech {
			if strings.Contains(term, " ") && strings.Contains(lower, term) {
				f.HasTechTerms = true
				break
			}
		}
	}

	f.HasEducationKW = containsKeyword(lower, lexicon.Education())
	f.HasCompanySignals = containsKeyword(lower, lexicon.CompanySignals())
	f.HasCertKW = containsKeyword(lower, lexicon.Certifications())

	f.UppercaseRatio = uppercaseRatio(line)
	return f
}

// containsKeyword checks token-or-substring membership: single-word entries
// must match a whole token, multi-word entries match as substrings.
func containsKeyword(lower string, set lexicon.Set) bool {
	tokens := map[string]bool{}
	for _, w := range strings.Fields(lower) {
		tokens[strings.Trim(w, ".,;:()[]")] = true
	}
	for term := range set {
		if strings.ContainsAny(term, " .") || strings.HasSuffix(term, " ") {
			if strings.Contains(lower, term) {
				return true
			}
			continue
		}
		if tokens[term] {
			return true
		}
	}
	return false
}

func uppercaseRatio(line string) float64 {
	var letters, upper int
	for _, r := range line {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}
