package cvparse

import (
	"regexp"
	"strings"

	"github.com/empleomatch/empleomatch/internal/profile"
)

// atCompanyRe matches "at TechCorp" / "en Grupo Bimbo" / "@ Acme Labs"
// capturing the capitalized organization phrase.
var atCompanyRe = regexp.MustCompile(`(?:\bat\b|\ben\b|@)\s+([A-ZÁÉÍÓÚÑ][\w&.\-áéíóúñ]*(?:\s+(?:de|del|la|los|of|the|[A-ZÁÉÍÓÚÑ][\w&.\-áéíóúñ]*))*)`)

// roleWords flag a phrase as a job title.
var roleWords = []string{
	"engineer", "developer", "programmer", "architect", "analyst", "scientist",
	"manager", "director", "consultant", "designer", "lead", "administrator",
	"specialist", "intern", "tester", "devops", "researcher",
	"ingeniero", "ingeniera", "desarrollador", "desarrolladora", "programador",
	"programadora", "arquitecto", "arquitecta", "analista", "científico",
	"científica", "gerente", "director", "directora", "consultor", "consultora",
	"diseñador", "diseñadora", "líder", "lider", "administrador", "especialista",
	"becario", "practicante", "jefe", "jefa", "coordinador", "coordinadora",
}

func (e *Extractor) fillExperience(p *profile.Profile, segments []segment, fullText string) {
	var entries []profile.ExperienceEntry
	var confLines []classifiedLine

	for _, s := range segmentsOf(segments, CatExperience) {
		for _, block := range splitExperienceBlocks(s.lines) {
			if entry, ok := parseExperienceBlock(block); ok {
				entries = append(entries, entry)
				confLines = append(confLines, block...)
			}
		}
	}

	if len(entries) == 0 {
		entries = narrativeExperience(fullText)
	}

	if len(entries) > 0 {
		p.Experience = entries
		conf := averageConf(confLines)
		if conf == 0 {
			conf = 0.4
		}
		p.FieldConfidence["experience"] = conf
		p.FieldMethods["experience"] = profile.MethodUnsupervised
	}
}

// splitExperienceBlocks starts a new sub-block whenever a new year range, a
// new "at <ORG>" pattern, or an uppercase title line appears.
func splitExperienceBlocks(lines []classifiedLine) [][]classifiedLine {
	var blocks [][]classifiedLine
	var cur []classifiedLine

	isBoundary := func(l classifiedLine) bool {
		if l.feat.IsBulleted {
			return false
		}
		if yearRangeRe.MatchString(l.text) {
			return true
		}
		if atCompanyRe.MatchString(l.text) {
			return true
		}
		return l.feat.UppercaseRatio > 0.7 && l.feat.WordCount <= 6
	}

	for _, l := range lines {
		if len(cur) > 0 && isBoundary(l) {
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

// parseExperienceBlock builds one entry from a sub-block. Position is
// required; the parse fails without a title-like line.
func parseExperienceBlock(block []classifiedLine) (profile.ExperienceEntry, bool) {
	var entry profile.ExperienceEntry

	var blockText strings.Builder
	for _, l := range block {
		blockText.WriteString(l.text)
		blockText.WriteByte('\n')
	}
	entry.StartDate, entry.EndDate = parseYearRange(blockText.String())

	// Position: the first title-like line, stripped of dates and company.
	for _, l := range block {
		if l.feat.IsBulleted {
			continue
		}
		if pos := extractPosition(l.text); pos != "" {
			entry.Position = pos
			if m := atCompanyRe.FindStringSubmatch(l.text); m != nil {
				entry.Company = cleanCompany(m[1])
			}
			break
		}
	}
	if entry.Position == "" {
		return entry, false
	}

	// Company fallback: an organization-like neighbor line.
	if entry.Company == "" {
		for _, l := range block {
			if l.feat.IsBulleted || !l.feat.HasCompanySignals {
				continue
			}
			if m := atCompanyRe.FindStringSubmatch(l.text); m != nil {
				entry.Company = cleanCompany(m[1])
				break
			}
			if l.feat.UppercaseRatio > 0.5 && l.feat.WordCount <= 6 {
				entry.Company = strings.TrimSpace(l.text)
				break
			}
		}
	}

	// Description: the bulleted lines, bounded.
	var desc []string
	for _, l := range block {
		if l.feat.IsBulleted {
			desc = append(desc, strings.TrimSpace(bulletRe.ReplaceAllString(l.text, "")))
		}
	}
	if len(desc) > 0 {
		joined := strings.Join(desc, ". ")
		if len(joined) > 500 {
			joined = joined[:500]
		}
		entry.Description = joined
	}
	return entry, true
}

// extractPosition returns the title part of a line like
// "Software Engineer at TechCorp (2020 - Present)", empty when the line does
// not look like a title.
func extractPosition(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || len(strings.Fields(line)) > 12 {
		return ""
	}

	title := line
	if m := atCompanyRe.FindStringIndex(line); m != nil {
		title = strings.TrimSpace(line[:m[0]])
	}
	if m := yearRangeRe.FindStringIndex(title); m != nil {
		title = strings.TrimSpace(title[:m[0]])
	}
	title = strings.Trim(title, " -–—|,(")
	if title == "" {
		return ""
	}

	lower := strings.ToLower(title)
	for _, role := range roleWords {
		if strings.Contains(lower, role) {
			return title
		}
	}
	// No role word: accept only when the rest of the line carries the
	// experience shape (dates or company).
	if yearRangeRe.MatchString(line) || atCompanyRe.MatchString(line) {
		return title
	}
	return ""
}

func cleanCompany(raw string) string {
	company := strings.Trim(strings.TrimSpace(raw), ",.-–(")
	// Range artifacts glued to the capture ("TechCorp 2020").
	if m := soloYearRe.FindStringIndex(company); m != nil {
		company = strings.TrimSpace(company[:m[0]])
	}
	return strings.Trim(company, " ,.-–(")
}

// narrativeExperience scans prose for year ranges and derives one entry per
// range from its surrounding window.
func narrativeExperience(fullText string) []profile.ExperienceEntry {
	var entries []profile.ExperienceEntry
	seen := map[string]bool{}

	for _, loc := range yearRangeRe.FindAllStringIndex(fullText, -1) {
		winStart := loc[0] - 120
		if winStart < 0 {
			winStart = 0
		}
		window := fullText[winStart:loc[1]]

		var entry profile.ExperienceEntry
		entry.StartDate, entry.EndDate = parseYearRange(fullText[loc[0]:loc[1]])

		if m := atCompanyRe.FindAllStringSubmatch(window, -1); len(m) > 0 {
			entry.Company = cleanCompany(m[len(m)-1][1])
		}

		lower := strings.ToLower(window)
		for _, role := range roleWords {
			if idx := indexToken(lower, role); idx >= 0 {
				entry.Position = titleAround(window, idx, len(role))
				break
			}
		}
		if entry.Position == "" {
			if entry.Company == "" {
				continue
			}
			entry.Position = "Professional experience"
		}

		key := entry.Company + "|" + entry.StartDate
		if seen[key] {
			continue
		}
		seen[key] = true
		entries = append(entries, entry)
	}
	return entries
}

// titleAround expands a role-word hit to the enclosing short phrase.
func titleAround(window string, idx, roleLen int) string {
	start := strings.LastIndexAny(window[:idx], ".,;:()\n")
	if start < 0 {
		start = 0
	} else {
		start++
	}
	end := idx + roleLen
	if next := strings.IndexAny(window[end:], ".,;:()\n"); next >= 0 {
		end += next
	} else {
		end = len(window)
	}
	phrase := strings.TrimSpace(window[start:end])
	if m := atCompanyRe.FindStringIndex(phrase); m != nil {
		phrase = strings.TrimSpace(phrase[:m[0]])
	}
	if m := soloYearRe.FindStringIndex(phrase); m != nil {
		phrase = strings.TrimSpace(phrase[:m[0]])
	}
	phrase = strings.Trim(phrase, " ,.-–de")
	words := strings.Fields(phrase)
	if len(words) > 6 {
		words = words[len(words)-6:]
	}
	return strings.Join(words, " ")
}
