package cvparse

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/empleomatch/empleomatch/internal/lexicon"
	"github.com/empleomatch/empleomatch/internal/profile"
	"github.com/empleomatch/empleomatch/internal/textproc"
)

// Extractor is the unsupervised CV extractor. It never fails: arbitrary text
// yields a (possibly empty) profile with confidence 0.
type Extractor struct {
	MaxSkills int
	MaxInput  int
}

// NewExtractor returns an extractor with default limits.
func NewExtractor() *Extractor {
	return &Extractor{
		MaxSkills: profile.DefaultMaxSkills,
		MaxInput:  textproc.DefaultMaxInput,
	}
}

// classifiedLine is one non-empty CV line with its classifier vote and the
// section the surrounding headers assign to it.
type classifiedLine struct {
	text    string
	feat    LineFeatures
	cat     Category
	conf    float64
	section Category // CatOther when no header context applies
}

// segment is a run of consecutive lines sharing an effective category.
type segment struct {
	cat   Category
	lines []classifiedLine
}

// sectionHeaders maps header keywords to the section they seed.
var sectionHeaders = map[string]Category{
	"objective": CatObjective, "objetivo": CatObjective, "summary": CatObjective,
	"perfil": CatObjective, "profile": CatObjective, "about": CatObjective,
	"acerca": CatObjective, "resumen": CatObjective,

	"education": CatEducation, "educación": CatEducation, "educacion": CatEducation,
	"formación": CatEducation, "formacion": CatEducation, "académica": CatEducation,
	"academica": CatEducation, "estudios": CatEducation, "academic": CatEducation,

	"experience": CatExperience, "experiencia": CatExperience, "laboral": CatExperience,
	"employment": CatExperience, "work history": CatExperience, "trayectoria": CatExperience,
	"professional": CatExperience, "profesional": CatExperience,

	"skills": CatSkill, "habilidades": CatSkill, "competencias": CatSkill,
	"tecnologías": CatSkill, "tecnologias": CatSkill, "conocimientos": CatSkill,
	"technologies": CatSkill, "herramientas": CatSkill, "tools": CatSkill, "stack": CatSkill,

	"languages": CatLanguage, "idiomas": CatLanguage,

	"certifications": CatCertification, "certificaciones": CatCertification,
	"certificados": CatCertification, "certificates": CatCertification,
	"cursos": CatCertification, "courses": CatCertification,
}

// sectionForHeader matches header text against the keyword table. Returns
// CatOther when the header seeds no known section.
func sectionForHeader(text string) Category {
	lower := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(text), ":"))
	for kw, cat := range sectionHeaders {
		if strings.Contains(lower, kw) {
			return cat
		}
	}
	return CatOther
}

// Extract runs the full unsupervised pipeline on cvText.
func (e *Extractor) Extract(cvText string) *profile.Profile {
	text, truncated := textproc.Truncate(cvText, e.MaxInput)

	lines := e.classifyLines(text)
	if len(lines) == 0 {
		return &profile.Profile{Truncated: truncated}
	}

	segments := segmentLines(lines)

	p := &profile.Profile{
		Truncated:       truncated,
		FieldConfidence: map[string]float64{},
		FieldMethods:    map[string]profile.Method{},
	}

	e.fillObjective(p, segments)
	e.fillEducation(p, segments, text)
	e.fillExperience(p, segments, text)
	e.fillSkills(p, segments, text)
	e.fillLanguages(p, segments, text)
	e.fillCertifications(p, segments)

	p.Confidence = profile.OverallConfidence(p.FieldConfidence)
	slog.Debug("cvparse: extraction complete",
		slog.Int("lines", len(lines)),
		slog.Int("segments", len(segments)),
		slog.Float64("confidence", p.Confidence))
	return p
}

// classifyLines splits, trims, drops empties, classifies, and applies header
// section context. Header lines re-seed the section for the following lines
// until another header appears.
func (e *Extractor) classifyLines(text string) []classifiedLine {
	var out []classifiedLine
	section := CatOther
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if len(line) > 1000 {
			line = line[:1000]
		}
		f := ExtractFeatures(line)
		cat, conf := Classify(line, f)

		if cat == CatHeader {
			if s := sectionForHeader(line); s != CatOther {
				section = s
			}
			out = append(out, classifiedLine{text: line, feat: f, cat: cat, conf: conf, section: CatHeader})
			continue
		}
		out = append(out, classifiedLine{text: line, feat: f, cat: cat, conf: conf, section: section})
	}
	return out
}

// effectiveCategory: the section header overrides the classifier vote, except
// for contact lines which keep their regex-backed identity.
func (l classifiedLine) effectiveCategory() Category {
	if l.section == CatHeader {
		return CatHeader
	}
	if l.cat == CatContact {
		return CatContact
	}
	if l.section != CatOther {
		return l.section
	}
	return l.cat
}

func segmentLines(lines []classifiedLine) []segment {
	var segs []segment
	for _, l := range lines {
		cat := l.effectiveCategory()
		if cat == CatHeader {
			continue
		}
		if n := len(segs); n > 0 && segs[n-1].cat == cat {
			segs[n-1].lines = append(segs[n-1].lines, l)
			continue
		}
		segs = append(segs, segment{cat: cat, lines: []classifiedLine{l}})
	}
	return segs
}

func segmentsOf(segments []segment, cat Category) []segment {
	var out []segment
	for _, s := range segments {
		if s.cat == cat {
			out = append(out, s)
		}
	}
	return out
}

func averageConf(lines []classifiedLine) float64 {
	if len(lines) == 0 {
		return 0
	}
	var sum float64
	for _, l := range lines {
		sum += l.conf
	}
	return sum / float64(len(lines))
}

// fillObjective takes the first narrative run after the contact block,
// bounded to 500 characters.
func (e *Extractor) fillObjective(p *profile.Profile, segments []segment) {
	for _, s := range segmentsOf(segments, CatObjective) {
		var parts []string
		for _, l := range s.lines {
			if l.feat.HasDates || l.feat.IsBulleted {
				continue
			}
			parts = append(parts, l.text)
		}
		obj := strings.TrimSpace(strings.Join(parts, " "))
		if obj == "" {
			continue
		}
		if len(obj) > 500 {
			obj, _ = textproc.Truncate(obj, 500)
		}
		p.Objective = obj
		p.FieldConfidence["objective"] = averageConf(s.lines)
		p.FieldMethods["objective"] = profile.MethodUnsupervised
		return
	}
}

func (e *Extractor) fillSkills(p *profile.Profile, segments []segment, fullText string) {
	var skills []string
	var confLines []classifiedLine

	for _, s := range segmentsOf(segments, CatSkill) {
		for _, l := range s.lines {
			confLines = append(confLines, l)
			skills = append(skills, splitSkillLine(l.text)...)
		}
	}

	// Full-text technology pass: catches skills named inline in prose.
	skills = append(skills, techTermsIn(fullText)...)

	p.Skills = profile.NormalizeSkills(skills, e.MaxSkills)
	if len(p.Skills) > 0 {
		conf := averageConf(confLines)
		if conf == 0 {
			conf = 0.5 // lexicon hit without a dedicated section
		}
		p.FieldConfidence["skills"] = conf
		p.FieldMethods["skills"] = profile.MethodUnsupervised
	}
}

var skillSplitRe = regexp.MustCompile(`[,;|/·•]+`)

// splitSkillLine breaks a skill line on list punctuation, dropping the
// leading "Skills:" style label and bullet markers.
func splitSkillLine(line string) []string {
	line = bulletRe.ReplaceAllString(line, "")
	if idx := strings.Index(line, ":"); idx >= 0 && idx < 30 {
		line = line[idx+1:]
	}
	var out []string
	for _, part := range skillSplitRe.Split(line, -1) {
		part = strings.TrimSpace(part)
		if part == "" || len(part) > 40 {
			continue
		}
		out = append(out, part)
	}
	return out
}

// TechTerms returns every technology-lexicon entry present in text. Shared
// with the NER-assisted extractor's lexical pass.
func TechTerms(text string) []string { return techTermsIn(text) }

// techTermsIn returns every technology-lexicon entry present in text.
func techTermsIn(text string) []string {
	lower := strings.ToLower(text)
	tokens := map[string]bool{}
	for _, tok := range textproc.Tokenize(lower) {
		tokens[tok] = true
	}
	var out []string
	for term := range lexicon.Tech() {
		if strings.Contains(term, " ") {
			if strings.Contains(lower, term) {
				out = append(out, term)
			}
			continue
		}
		if tokens[term] {
			out = append(out, term)
		}
	}
	sort.Strings(out)
	return out
}

var langLevelAfterRe = regexp.MustCompile(`(?i)^[\s:(\-–]*([a-záéíóúñ1-2 ]{2,20})`)

// fillLanguages matches language names followed by an optional level token,
// in language segments first and then across the full text.
func (e *Extractor) fillLanguages(p *profile.Profile, segments []segment, fullText string) {
	langs := map[string]string{}
	var confLines []classifiedLine

	scan := func(text string) {
		lower := strings.ToLower(text)
		for name := range lexicon.Languages() {
			idx := indexToken(lower, name)
			if idx < 0 {
				continue
			}
			canonical := profile.CanonicalSkill(name)
			level := ""
			rest := text[idx+len(name):]
			if m := langLevelAfterRe.FindStringSubmatch(rest); m != nil {
				if lm := levelTokenRe.FindString(m[1]); lm != "" {
					level = canonicalLevel(lm)
				}
			}
			if cur, ok := langs[canonical]; !ok || cur == "" {
				langs[canonical] = level
			}
		}
	}

	for _, s := range segmentsOf(segments, CatLanguage) {
		for _, l := range s.lines {
			confLines = append(confLines, l)
			scan(l.text)
		}
	}
	if len(langs) == 0 {
		scan(fullText)
	}

	if len(langs) > 0 {
		p.Languages = langs
		conf := averageConf(confLines)
		if conf == 0 {
			conf = 0.45
		}
		p.FieldConfidence["languages"] = conf
		p.FieldMethods["languages"] = profile.MethodUnsupervised
	}
}

// indexToken finds needle in haystack at a token boundary. Both lowercased.
func indexToken(haystack, needle string) int {
	from := 0
	for {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return -1
		}
		idx += from
		beforeOK := idx == 0 || !isWordByte(haystack[idx-1])
		after := idx + len(needle)
		afterOK := after >= len(haystack) || !isWordByte(haystack[after])
		if beforeOK && afterOK {
			return idx
		}
		from = idx + len(needle)
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b >= 0x80
}

var levelCanonical = map[string]string{
	"nativo": "native", "native": "native",
	"fluido": "fluent", "fluent": "fluent",
	"avanzado": "advanced", "advanced": "advanced",
	"intermedio": "intermediate", "intermediate": "intermediate",
	"básico": "basic", "basico": "basic", "basic": "basic",
	"conversacional": "conversational", "conversational": "conversational",
	"profesional": "professional", "professional": "professional",
}

func canonicalLevel(tok string) string {
	lower := strings.ToLower(tok)
	if c, ok := levelCanonical[lower]; ok {
		return c
	}
	// CEFR levels pass through upper-cased: a1..c2.
	if len(lower) == 2 && lower[0] >= 'a' && lower[0] <= 'c' && (lower[1] == '1' || lower[1] == '2') {
		return strings.ToUpper(lower)
	}
	return lower
}

var certMarkerRe = regexp.MustCompile(`(?i)\b(certif\w*|cert\.)`)

func (e *Extractor) fillCertifications(p *profile.Profile, segments []segment) {
	var certs []string
	var confLines []classifiedLine
	seen := map[string]bool{}

	add := func(l classifiedLine) {
		text := strings.TrimSpace(bulletRe.ReplaceAllString(l.text, ""))
		key := strings.ToLower(text)
		if text == "" || seen[key] {
			return
		}
		seen[key] = true
		certs = append(certs, text)
		confLines = append(confLines, l)
	}

	for _, s := range segmentsOf(segments, CatCertification) {
		for _, l := range s.lines {
			add(l)
		}
	}
	// Cert-marker lines elsewhere in the document.
	for _, s := range segments {
		if s.cat == CatCertification {
			continue
		}
		for _, l := range s.lines {
			if certMarkerRe.MatchString(l.text) && l.feat.HasCertKW {
				add(l)
			}
		}
	}

	if len(certs) > 0 {
		p.Certifications = certs
		p.FieldConfidence["certifications"] = averageConf(confLines)
		p.FieldMethods["certifications"] = profile.MethodUnsupervised
	}
}
