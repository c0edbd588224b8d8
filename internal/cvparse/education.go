package cvparse

import (
	"regexp"
	"strings"

	"github.com/empleomatch/empleomatch/internal/lexicon"
	"github.com/empleomatch/empleomatch/internal/profile"
)

// institutionSignals mark a text fragment as naming a school.
var institutionSignals = []string{
	"university", "universidad", "college", "institute", "instituto",
	"tecnológico", "tecnologico", "politécnico", "politecnico", "school",
	"escuela", "academia", "academy",
}

var acronymRe = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ]{2,6}\b`)

func (e *Extractor) fillEducation(p *profile.Profile, segments []segment, fullText string) {
	var entries []profile.EducationEntry
	var confLines []classifiedLine

	for _, s := range segmentsOf(segments, CatEducation) {
		for _, block := range splitEducationBlocks(s.lines) {
			if entry, ok := parseEducationBlock(block); ok {
				entries = append(entries, entry)
				confLines = append(confLines, block...)
			}
		}
	}

	if len(entries) == 0 {
		entries = narrativeEducation(fullText)
	}

	if len(entries) > 0 {
		p.Education = entries
		conf := averageConf(confLines)
		if conf == 0 {
			conf = 0.4
		}
		p.FieldConfidence["education"] = conf
		p.FieldMethods["education"] = profile.MethodUnsupervised
	}
}

// splitEducationBlocks starts a new block each time the institution signal
// reappears on a non-bulleted line.
func splitEducationBlocks(lines []classifiedLine) [][]classifiedLine {
	var blocks [][]classifiedLine
	var cur []classifiedLine
	for _, l := range lines {
		if len(cur) > 0 && !l.feat.IsBulleted && hasInstitutionSignal(l.text) && blockHasInstitution(cur) {
			blocks = append(blocks, cur)
			cur = nil
		}
		cur = append(cur, l)
	}
	if len(cur) > 0 {
		blocks = append(blocks, cur)
	}
	return blocks
}

func blockHasInstitution(block []classifiedLine) bool {
	for _, l := range block {
		if hasInstitutionSignal(l.text) {
			return true
		}
	}
	return false
}

func hasInstitutionSignal(text string) bool {
	lower := strings.ToLower(text)
	for _, sig := range institutionSignals {
		if strings.Contains(lower, sig) {
			return true
		}
	}
	return acronymRe.MatchString(text)
}

// parseEducationBlock builds one entry from a block of education lines.
// Institution is required; the parse fails without one.
func parseEducationBlock(block []classifiedLine) (profile.EducationEntry, bool) {
	var entry profile.EducationEntry
	var joined strings.Builder
	for _, l := range block {
		joined.WriteString(l.text)
		joined.WriteByte('\n')
	}
	text := joined.String()

	if y := firstValidYear(text); y != 0 {
		entry.GraduationYear = y
	}

	// Institution: first non-bulleted line carrying education signals.
	for _, l := range block {
		if l.feat.IsBulleted {
			continue
		}
		parseEducationLine(l.text, &entry)
		if entry.Institution != "" {
			break
		}
	}
	if entry.Institution == "" {
		return entry, false
	}
	return entry, true
}

// parseEducationLine fills degree/field/institution from one line, usually of
// the form "B.S. Computer Science, UC Berkeley, 2015".
func parseEducationLine(line string, entry *profile.EducationEntry) {
	line = bulletRe.ReplaceAllString(line, "")
	for _, part := range regexp.MustCompile(`[,;|]`).Split(line, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		lower := strings.ToLower(part)

		if deg := matchDegree(lower); deg != "" {
			if entry.Degree == "" {
				entry.Degree = strings.TrimSpace(part[:len(deg)])
				if rest := strings.TrimSpace(part[len(deg):]); rest != "" && entry.FieldOfStudy == "" {
					// "B.S. in Computer Science" / "Licenciatura en Derecho"
					lowerRest := strings.ToLower(rest)
					switch {
					case strings.HasPrefix(lowerRest, "in "):
						rest = rest[3:]
					case strings.HasPrefix(lowerRest, "en "):
						rest = rest[3:]
					case strings.HasPrefix(lowerRest, "of "):
						rest = rest[3:]
					}
					entry.FieldOfStudy = strings.TrimSpace(rest)
				}
			}
			continue
		}

		if soloYearRe.MatchString(part) && len(part) <= 12 {
			continue // year already captured at block level
		}

		if entry.Institution == "" && hasInstitutionSignal(part) {
			entry.Institution = strings.TrimSpace(part)
		}
	}

	// Fallback: a lone acronym somewhere in the line (UNAM, IPN).
	if entry.Institution == "" {
		if acr := acronymRe.FindString(line); acr != "" && !lexicon.Degrees().Has(acr) {
			entry.Institution = acr
		}
	}
}

// matchDegree returns the longest degree token that prefixes part.
func matchDegree(lowerPart string) string {
	best := ""
	for deg := range lexicon.Degrees() {
		if strings.HasPrefix(lowerPart, deg) && len(deg) > len(best) {
			best = deg
		}
	}
	return best
}

// narrativeEducation scans prose for education mentions: a sentence with an
// education keyword, a year, and an institution signal.
func narrativeEducation(fullText string) []profile.EducationEntry {
	var entries []profile.EducationEntry
	seen := map[string]bool{}
	edu := lexicon.Education()

	for _, sentence := range splitSentences(fullText) {
		if !containsKeyword(strings.ToLower(sentence), edu) {
			continue
		}
		var entry profile.EducationEntry
		entry.GraduationYear = firstValidYear(sentence)
		parseEducationLine(sentence, &entry)
		if entry.Degree == "" {
			if deg := findDegreeToken(sentence); deg != "" {
				entry.Degree = deg
			}
		}
		if entry.Institution == "" || seen[entry.Institution] {
			continue
		}
		seen[entry.Institution] = true
		entries = append(entries, entry)
	}
	return entries
}

func findDegreeToken(sentence string) string {
	lower := strings.ToLower(sentence)
	best := ""
	for deg := range lexicon.Degrees() {
		if idx := indexToken(lower, deg); idx >= 0 && len(deg) > len(best) {
			best = deg
		}
	}
	if best == "" {
		return ""
	}
	return profile.CanonicalSkill(best)
}

var sentenceSplitRe = regexp.MustCompile(`[.;\n]+`)

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
