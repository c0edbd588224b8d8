package occ

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var slugCleanRe = regexp.MustCompile(`[^a-z0-9ñáéíóú]+`)

// keywordSlug lowercases and hyphenates a search keyword the way the board's
// URLs expect ("data engineer" → "data-engineer").
func keywordSlug(keyword string) string {
	slug := strings.ToLower(strings.TrimSpace(keyword))
	slug = slugCleanRe.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// workModeParam maps WorkMode onto the board's modalidad values.
func workModeParam(m WorkMode) string {
	switch m {
	case WorkModeRemote:
		return "remoto"
	case WorkModeHybrid:
		return "hibrido"
	case WorkModeOnsite:
		return "presencial"
	}
	return ""
}

// SearchURL builds the list-page URL for filters. The query parameter set is
// closed; unknown filters are never forwarded.
func (s *Scraper) SearchURL(f SearchFilters) (string, error) {
	if strings.TrimSpace(f.Keyword) == "" {
		return "", fmt.Errorf("occ: keyword is required")
	}

	q := url.Values{}
	if f.Location != "" {
		q.Set("l", strings.ToLower(strings.TrimSpace(f.Location)))
	}
	if f.Salary > 0 {
		q.Set("salario", strconv.Itoa(f.Salary))
	}
	if f.ExperienceLevel != "" {
		q.Set("experiencia", strings.ToLower(f.ExperienceLevel))
	}
	if p := workModeParam(f.WorkMode); p != "" {
		q.Set("modalidad", p)
	}
	if f.JobType != "" {
		q.Set("tipo", strings.ToLower(string(f.JobType)))
	}
	if f.CompanyVerified {
		q.Set("empresa_verificada", "1")
	}
	switch f.Sort {
	case SortDate:
		q.Set("sort", "2")
	case SortRelevance:
		q.Set("sort", "1")
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}

	u := fmt.Sprintf("%s/empleos/de-%s/", strings.TrimRight(s.cfg.BaseURL, "/"), keywordSlug(f.Keyword))
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u, nil
}

// detailJSONURL is the board's compact JSON endpoint for one offer.
func (s *Scraper) detailJSONURL(jobID string) string {
	return fmt.Sprintf("%s/offer/%s/d/j?ipo=41&iapo=1", strings.TrimRight(s.cfg.OfferHost, "/"), url.PathEscape(jobID))
}

// detailHTMLURL is the human detail page, used as parse fallback.
func (s *Scraper) detailHTMLURL(jobID string) string {
	return fmt.Sprintf("%s/empleo/%s", strings.TrimRight(s.cfg.BaseURL, "/"), url.PathEscape(jobID))
}
