// Package occ implements the polite scraper for the OCC job board: search
// URL construction, list-page parsing, the JSON detail endpoint with HTML
// fallback, rate control, and retry with backoff.
package occ

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"
)

// WorkMode is the physical work arrangement, normalized to the board's
// Spanish labels. Empty means unknown.
type WorkMode string

const (
	WorkModeRemote WorkMode = "Remoto"
	WorkModeHybrid WorkMode = "Híbrido"
	WorkModeOnsite WorkMode = "Presencial"
)

// JobType is the contract shape. Empty means unknown.
type JobType string

const (
	JobTypeFull      JobType = "Tiempo completo"
	JobTypePart      JobType = "Medio tiempo"
	JobTypeFreelance JobType = "Freelance"
	JobTypeTemp      JobType = "Temporal"
)

// Fallback labels for fields the list view does not always carry.
const (
	CompanyUnspecified  = "Empresa no especificada"
	CompanyConfidential = "Empresa confidencial"
	LocationUnspecified = "Ubicación no especificada"
)

// JobOffer is one job posting. JobID is the board's stable external identity
// (or a synthesized hash when the list view omits it).
type JobOffer struct {
	JobID           string    `json:"job_id"`
	Title           string    `json:"title"`
	Company         string    `json:"company"`
	Location        string    `json:"location"`
	Salary          string    `json:"salary,omitempty"`
	PublicationDate string    `json:"publication_date,omitempty"`
	PublishedAt     time.Time `json:"published_at,omitempty"`
	Description     string    `json:"description,omitempty"`
	FullDescription string    `json:"full_description,omitempty"`
	Skills          []string  `json:"skills,omitempty"`
	Benefits        []string  `json:"benefits,omitempty"`
	WorkMode        WorkMode  `json:"work_mode,omitempty"`
	JobType         JobType   `json:"job_type,omitempty"`
	ExperienceLevel string    `json:"experience_level,omitempty"`
	EducationReq    string    `json:"education_required,omitempty"`
	URL             string    `json:"url,omitempty"`
	LogoURL         string    `json:"logo_url,omitempty"`
	CompanyVerified bool      `json:"company_verified,omitempty"`
	IsFeatured      bool      `json:"is_featured,omitempty"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// SortOrder selects result ordering.
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortDate      SortOrder = "date"
)

// SearchFilters is a board search query. Keyword is required.
type SearchFilters struct {
	Keyword         string
	Location        string
	Salary          int
	ExperienceLevel string
	WorkMode        WorkMode
	JobType         JobType
	CompanyVerified bool
	Sort            SortOrder
	Page            int
}

// SynthesizeJobID derives a stable identifier from a title when the list
// container carries no data-id attribute.
func SynthesizeJobID(title string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return fmt.Sprintf("occ-%x", sum[:8])
}

// DedupKey returns a normalized cross-source dedup key: same title and
// location collapse to the same key regardless of source formatting.
func (j *JobOffer) DedupKey() string {
	norm := func(s string) string {
		s = strings.ToLower(strings.TrimSpace(s))
		var b strings.Builder
		prevSpace := true
		for _, r := range s {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
				prevSpace = false
			} else if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
		}
		return strings.TrimRight(b.String(), " ")
	}
	return norm(j.Title) + "|" + norm(j.Location)
}

// normalizeWorkMode maps board labels and query values onto a WorkMode.
func normalizeWorkMode(raw string) WorkMode {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "remoto", "remote", "home office", "desde casa":
		return WorkModeRemote
	case "híbrido", "hibrido", "hybrid", "mixto":
		return WorkModeHybrid
	case "presencial", "onsite", "on-site", "en sitio", "oficina":
		return WorkModeOnsite
	}
	return ""
}

func normalizeJobType(raw string) JobType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "tiempo completo", "full time", "full-time", "indefinido", "permanente":
		return JobTypeFull
	case "medio tiempo", "part time", "part-time", "por horas":
		return JobTypePart
	case "freelance", "por proyecto", "contractor", "honorarios":
		return JobTypeFreelance
	case "temporal", "eventual", "temporary", "por temporada":
		return JobTypeTemp
	}
	return ""
}
