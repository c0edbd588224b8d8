// Package ner implements the NER-assisted CV extractor. A statistical model
// labels persons and locations; organizations and dates come from a lexical
// pass so the extractor stays useful for Spanish CVs, where the statistical
// model is weakest.
package ner

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jdkato/prose/v2"

	"github.com/empleomatch/empleomatch/internal/cvparse"
	"github.com/empleomatch/empleomatch/internal/lexicon"
	"github.com/empleomatch/empleomatch/internal/profile"
	"github.com/empleomatch/empleomatch/internal/textproc"
)

// warmOnce guards the first document build, which loads the statistical
// model. First call is slow (~500ms); later calls reuse the loaded model.
var warmOnce sync.Once

func warmup() {
	warmOnce.Do(func() {
		start := time.Now()
		_, _ = prose.NewDocument("warmup", prose.WithSegmentation(false))
		slog.Debug("ner: model loaded", slog.Duration("took", time.Since(start)))
	})
}

// Extractor is the NER-assisted CV extractor, a sibling strategy to the
// unsupervised one.
type Extractor struct {
	MaxSkills int
	MaxInput  int
	// Language forces the input language ("es" or "en"). Empty or "auto"
	// detects per input.
	Language string
}

// NewExtractor returns an extractor with default limits.
func NewExtractor() *Extractor {
	return &Extractor{
		MaxSkills: profile.DefaultMaxSkills,
		MaxInput:  textproc.DefaultMaxInput,
	}
}

// Extract runs entity recognition plus the lexical pass over cvText. Never
// fails: unparseable text yields an empty profile.
func (e *Extractor) Extract(cvText string) *profile.Profile {
	text, truncated := textproc.Truncate(cvText, e.MaxInput)
	p := &profile.Profile{
		Truncated:       truncated,
		FieldConfidence: map[string]float64{},
		FieldMethods:    map[string]profile.Method{},
	}
	if strings.TrimSpace(text) == "" {
		return p
	}

	lang := e.language(text)

	persons, locations := statisticalEntities(text, lang)
	p.Persons = persons
	p.Locations = locations

	p.Organizations = lexicalOrganizations(text)
	p.Dates = dateMentions(text)
	if len(p.Dates) > 0 {
		p.FieldMethods["dates"] = profile.MethodRegex
	}

	e.fillStructured(p, text)

	if len(p.Organizations) > 0 || len(p.Persons) > 0 || len(p.Locations) > 0 {
		p.FieldMethods["organizations"] = profile.MethodNER
	}
	p.Confidence = profile.OverallConfidence(p.FieldConfidence)
	p.FloorConfidence()
	return p
}

// language resolves the working language, honoring a forced preference.
func (e *Extractor) language(text string) string {
	switch e.Language {
	case "es", "en":
		return e.Language
	}
	return textproc.DetectLanguage(text)
}

// statisticalEntities runs the prose model. The model is English; for
// Spanish input only high-precision PERSON spans are kept.
func statisticalEntities(text, lang string) (persons, locations []string) {
	warmup()
	doc, err := prose.NewDocument(text, prose.WithSegmentation(false))
	if err != nil {
		slog.Warn("ner: document build failed", slog.Any("error", err))
		return nil, nil
	}

	seenP := map[string]bool{}
	seenL := map[string]bool{}
	for _, ent := range doc.Entities() {
		span := strings.TrimSpace(ent.Text)
		if span == "" {
			continue
		}
		switch ent.Label {
		case "PERSON":
			if lang == "es" && len(strings.Fields(span)) < 2 {
				continue // single-token person spans are noise in Spanish
			}
			if !seenP[span] {
				seenP[span] = true
				persons = append(persons, span)
			}
		case "GPE", "LOC":
			if !seenL[span] {
				seenL[span] = true
				locations = append(locations, span)
			}
		}
	}
	sort.Strings(persons)
	sort.Strings(locations)
	return persons, locations
}

// orgPhraseRe matches capitalized phrases that company markers can qualify.
// The joiner stays on one line so a trailing capitalized word never glues
// to the start of the next line.
var orgPhraseRe = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ][\w&.\-áéíóúñ]+(?:[ \t]+[A-ZÁÉÍÓÚÑ][\w&.\-áéíóúñ]+)*`)

var orgContextRe = regexp.MustCompile(`(?i)\b(?:at|en|para|with|con|@)\s*$`)

// lexicalOrganizations finds organization names by company-suffix signals and
// "at <ORG>" context.
func lexicalOrganizations(text string) []string {
	seen := map[string]bool{}
	var orgs []string
	companies := lexicon.CompanySignals()
	edu := lexicon.Education()

	for _, loc := range orgPhraseRe.FindAllStringIndex(text, -1) {
		phrase := strings.Trim(text[loc[0]:loc[1]], ".,-")
		if phrase == "" || len(phrase) > 60 {
			continue
		}
		lower := strings.ToLower(phrase)
		if edu.Has(lower) || lexicon.Tech().Has(lower) || lexicon.Languages().Has(lower) {
			continue
		}
		qualified := companies.ContainsAny(lower+" ") ||
			orgContextRe.MatchString(text[:loc[0]]) ||
			(phrase == strings.ToUpper(phrase) && len(phrase) >= 2 && len(phrase) <= 6)
		if !qualified || seen[phrase] {
			continue
		}
		seen[phrase] = true
		orgs = append(orgs, phrase)
	}
	sort.Strings(orgs)
	return orgs
}

var monthYearRe = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december|enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)\s+(?:de\s+)?(?:19|20)\d{2}\b`)

func dateMentions(text string) []string {
	seen := map[string]bool{}
	var dates []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			dates = append(dates, s)
		}
	}
	for _, m := range yearRangeMatches(text) {
		add(m)
	}
	for _, m := range monthYearRe.FindAllString(text, -1) {
		add(m)
	}
	return dates
}

var nerYearRangeRe = regexp.MustCompile(`(?i)\b(?:19|20)\d{2}\s*(?:[-–—]|a|to|hasta)\s*(?:(?:19|20)\d{2}|present|presente|actual(?:idad)?|current)\b`)

func yearRangeMatches(text string) []string {
	return nerYearRangeRe.FindAllString(text, -1)
}

// fillStructured merges entities with the line-level lexical pass to build
// education and experience entries, and fills skills from the technology
// lexicon.
func (e *Extractor) fillStructured(p *profile.Profile, text string) {
	orgSet := map[string]bool{}
	for _, o := range p.Organizations {
		orgSet[o] = true
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		f := cvparse.ExtractFeatures(line)
		cat, conf := cvparse.Classify(line, f)

		switch cat {
		case cvparse.CatEducation:
			if inst := firstOrgIn(line, orgSet); inst != "" {
				p.Education = append(p.Education, profile.EducationEntry{
					Institution:    inst,
					GraduationYear: validYearIn(line),
				})
				bumpConf(p, "education", conf)
			}
		case cvparse.CatExperience:
			if org := firstOrgIn(line, orgSet); org != "" {
				entry := profile.ExperienceEntry{Position: positionHint(line, org), Company: org}
				entry.StartDate, entry.EndDate = rangeIn(line)
				p.Experience = append(p.Experience, entry)
				bumpConf(p, "experience", conf)
			}
		}
	}

	skills := cvparse.TechTerms(text)
	if len(skills) > 0 {
		p.Skills = profile.NormalizeSkills(skills, e.MaxSkills)
		bumpConf(p, "skills", 0.5)
		p.FieldMethods["skills"] = profile.MethodNER
	}
}

func bumpConf(p *profile.Profile, field string, conf float64) {
	if conf > p.FieldConfidence[field] {
		p.FieldConfidence[field] = conf
	}
	p.FieldMethods[field] = profile.MethodNER
}

func firstOrgIn(line string, orgs map[string]bool) string {
	best := ""
	bestIdx := len(line) + 1
	for org := range orgs {
		if idx := strings.Index(line, org); idx >= 0 && idx < bestIdx {
			best = org
			bestIdx = idx
		}
	}
	return best
}

func positionHint(line, org string) string {
	head := line
	if idx := strings.Index(line, org); idx > 0 {
		head = line[:idx]
	}
	head = strings.TrimRight(strings.TrimSpace(head), " -–—|,@")
	for _, suffix := range []string{" at", " en", " para", " with", " con"} {
		head = strings.TrimSuffix(head, suffix)
	}
	head = strings.TrimSpace(head)
	if head == "" {
		return "Professional experience"
	}
	if words := strings.Fields(head); len(words) > 8 {
		head = strings.Join(words[len(words)-8:], " ")
	}
	return head
}

var (
	yearTokenRe  = regexp.MustCompile(`\b(19[5-9]\d|20\d{2})\b`)
	rangePartRe  = regexp.MustCompile(`(?i)(?:19|20)\d{2}|present|presente|actual(?:idad)?|current`)
	fourDigitsRe = regexp.MustCompile(`^\d{4}$`)
)

func validYearIn(line string) int {
	for _, m := range yearTokenRe.FindAllString(line, -1) {
		var y int
		for _, r := range m {
			y = y*10 + int(r-'0')
		}
		if profile.ValidGraduationYear(y) {
			return y
		}
	}
	return 0
}

func rangeIn(line string) (start, end string) {
	m := nerYearRangeRe.FindString(line)
	if m == "" {
		return "", ""
	}
	fields := rangePartRe.FindAllString(m, -1)
	if len(fields) == 0 {
		return "", ""
	}
	start = fields[0]
	if len(fields) > 1 {
		end = strings.ToLower(fields[1])
		if !fourDigitsRe.MatchString(end) {
			end = "present"
		} else if end < start {
			// Inverted range: keep the start, drop the end.
			end = ""
		}
	}
	return start, end
}
