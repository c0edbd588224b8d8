package occ

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxJobsPerPage bounds how many containers one list page can yield.
const maxJobsPerPage = 20

var (
	cityStateRe   = regexp.MustCompile(`\b[A-ZÁÉÍÓÚÑ][\wáéíóúñ.]+(?:\s+[A-ZÁÉÍÓÚÑa-záéíóúñ.]+)*,\s*[A-ZÁÉÍÓÚÑ][\wáéíóúñ.]+`)
	totalCountRe  = regexp.MustCompile(`([\d,]+)\s*(?:resultados|empleos|vacantes)`)
	relativeDayRe = regexp.MustCompile(`(?i)hace\s+(\d+)\s+(día|días|dia|dias|hora|horas|semana|semanas)`)
)

// knownCities backs the location fallback when the "Ciudad, Estado" pattern
// is absent.
var knownCities = []string{
	"Ciudad de México", "CDMX", "Guadalajara", "Monterrey", "Querétaro",
	"Puebla", "Tijuana", "León", "Mérida", "Cancún", "Toluca", "Aguascalientes",
	"San Luis Potosí", "Hermosillo", "Chihuahua", "Saltillo", "Culiacán",
	"Veracruz", "Morelia", "Remoto",
}

// parseListPage extracts job offers and the reported total from one list
// page. A malformed container is skipped, logged, and never aborts siblings.
func parseListPage(data []byte) ([]JobOffer, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("occ: list parse: %w", err)
	}

	var jobs []JobOffer
	doc.Find("[data-id], .job-card, article.job, div[id^=jobcard]").Each(func(i int, card *goquery.Selection) {
		if len(jobs) >= maxJobsPerPage {
			return
		}
		job, err := parseListCard(card)
		if err != nil {
			metrics.ParseFailures.Add(1)
			slog.Warn("occ: skipping malformed list card", slog.Int("index", i), slog.Any("error", err))
			return
		}
		jobs = append(jobs, job)
	})

	total := len(jobs)
	if m := totalCountRe.FindStringSubmatch(doc.Text()); m != nil {
		if n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil && n >= total {
			total = n
		}
	}
	return jobs, total, nil
}

func parseListCard(card *goquery.Selection) (JobOffer, error) {
	job := JobOffer{FetchedAt: time.Now().UTC()}

	job.Title = firstText(card, "h2", "h3", ".job-title", "a.title")
	if job.Title == "" {
		return job, fmt.Errorf("container has no title")
	}

	if id, ok := card.Attr("data-id"); ok && id != "" {
		job.JobID = id
	} else if id, ok := card.Attr("id"); ok && strings.HasPrefix(id, "jobcard-") {
		job.JobID = strings.TrimPrefix(id, "jobcard-")
	} else {
		job.JobID = SynthesizeJobID(job.Title)
	}

	job.Company = parseCompany(card)
	job.Location = parseLocation(card)

	if salary := firstText(card, ".salary", ".sueldo"); salary != "" &&
		!strings.Contains(strings.ToLower(salary), "sueldo no mostrado") {
		job.Salary = salary
	}

	if date := firstText(card, ".date", ".publication-date", "time"); date != "" {
		job.PublicationDate = date
		if ts, ok := parseListDate(date); ok {
			job.PublishedAt = ts
		}
	}

	card.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		if b := strings.TrimSpace(li.Text()); b != "" {
			job.Benefits = append(job.Benefits, b)
		}
	})

	cardText := strings.ToLower(card.Text())
	for _, mode := range []string{"remoto", "híbrido", "hibrido", "presencial"} {
		if strings.Contains(cardText, mode) {
			job.WorkMode = normalizeWorkMode(mode)
			break
		}
	}
	for _, jt := range []string{"tiempo completo", "medio tiempo", "freelance", "temporal"} {
		if strings.Contains(cardText, jt) {
			job.JobType = normalizeJobType(jt)
			break
		}
	}

	if hint := firstText(card, ".experience", ".experiencia"); hint != "" {
		job.ExperienceLevel = hint
	}
	if hint := firstText(card, ".education", ".escolaridad"); hint != "" {
		job.EducationReq = hint
	}

	job.CompanyVerified = card.Find(".verified, .badge-verified, [data-verified=true]").Length() > 0
	job.IsFeatured = card.Find(".featured, .destacado").Length() > 0
	if logo, ok := card.Find("img").First().Attr("src"); ok {
		job.LogoURL = logo
	}
	if href, ok := card.Find("a").First().Attr("href"); ok {
		job.URL = href
	}

	if desc := firstText(card, ".description, p"); desc != "" {
		if len(desc) > 300 {
			desc = desc[:300]
		}
		job.Description = desc
	}
	return job, nil
}

// parseCompany applies the fallback chain: explicit element, confidential
// marker, link text, any heading, else the unspecified label.
func parseCompany(card *goquery.Selection) string {
	if c := firstText(card, ".company", ".company-name", "[data-company]"); c != "" {
		return c
	}
	lower := strings.ToLower(card.Text())
	if strings.Contains(lower, "confidencial") {
		return CompanyConfidential
	}
	if c := strings.TrimSpace(card.Find("a.company-link").Text()); c != "" {
		return c
	}
	// Any secondary heading that is not the title.
	title := firstText(card, "h2", "h3")
	var heading string
	card.Find("h2, h3, h4").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		if t := strings.TrimSpace(h.Text()); t != "" && t != title {
			heading = t
			return false
		}
		return true
	})
	if heading != "" {
		return heading
	}
	return CompanyUnspecified
}

func parseLocation(card *goquery.Selection) string {
	if l := firstText(card, ".location", ".ubicacion", "[data-location]"); l != "" {
		return l
	}
	text := card.Text()
	if m := cityStateRe.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	for _, city := range knownCities {
		if strings.Contains(text, city) {
			return city
		}
	}
	return LocationUnspecified
}

// parseListDate turns the list view's date into a timestamp when it is
// unambiguous: ISO dates and relative Spanish forms ("Hace 3 días"). Anything
// else stays an opaque string.
func parseListDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	if m := relativeDayRe.FindStringSubmatch(raw); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		var d time.Duration
		switch {
		case strings.HasPrefix(m[2], "hora"):
			d = time.Duration(n) * time.Hour
		case strings.HasPrefix(m[2], "semana"):
			d = time.Duration(n) * 7 * 24 * time.Hour
		default:
			d = time.Duration(n) * 24 * time.Hour
		}
		return time.Now().UTC().Add(-d).Truncate(time.Hour), true
	}
	return time.Time{}, false
}

// firstText returns the trimmed text of the first selector with content.
func firstText(sel *goquery.Selection, selectors ...string) string {
	for _, s := range selectors {
		if t := strings.TrimSpace(sel.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
