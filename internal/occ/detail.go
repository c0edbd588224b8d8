package occ

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/empleomatch/empleomatch/internal/textproc"
)

// detailResponse mirrors the board's compact JSON detail payload.
type detailResponse struct {
	O struct {
		T    string `json:"t"`    // title
		L    string `json:"l"`    // location
		Smin int    `json:"smin"` // salary range
		Smax int    `json:"smax"`
		Sc   string `json:"sc"` // salary currency
		Wm   string `json:"wm"` // work mode
		Ct   string `json:"ct"` // contract type
		Ld   string `json:"ld"` // HTML description
		St   string `json:"st"` // ISO publication date
		Dluf string `json:"dluf"`
		Dlur string `json:"dlur"`
		Lha  string `json:"lha"` // canonical URL
		Ur   string `json:"ur"`  // share URL
	} `json:"o"`
	C struct {
		Cn   string `json:"cn"`   // company name
		Cver bool   `json:"cver"` // verified
	} `json:"c"`
	E struct {
		Me string `json:"me"` // education required
		Ex string `json:"ex"` // experience required
	} `json:"e"`
	Sk []struct {
		N string `json:"n"`
	} `json:"sk"`
}

// parseDetailJSON maps the compact JSON payload onto a JobOffer.
func parseDetailJSON(jobID string, data []byte) (JobOffer, error) {
	var dr detailResponse
	if err := json.Unmarshal(data, &dr); err != nil {
		return JobOffer{}, fmt.Errorf("occ: detail json for %s: %w", jobID, err)
	}
	if dr.O.T == "" {
		return JobOffer{}, fmt.Errorf("occ: detail json for %s: empty title", jobID)
	}

	job := JobOffer{
		JobID:           jobID,
		Title:           dr.O.T,
		Company:         dr.C.Cn,
		CompanyVerified: dr.C.Cver,
		Location:        dr.O.L,
		WorkMode:        normalizeWorkMode(dr.O.Wm),
		JobType:         normalizeJobType(dr.O.Ct),
		EducationReq:    dr.E.Me,
		ExperienceLevel: dr.E.Ex,
		FetchedAt:       time.Now().UTC(),
	}
	if job.Company == "" {
		job.Company = CompanyUnspecified
	}

	job.Salary = formatSalary(dr.O.Smin, dr.O.Smax, dr.O.Sc)

	if dr.O.Ld != "" {
		raw := html.UnescapeString(dr.O.Ld)
		if md, err := htmltomarkdown.ConvertString(raw); err == nil {
			job.FullDescription = strings.TrimSpace(md)
		} else {
			job.FullDescription = textproc.StripHTML(raw)
		}
		job.Description, _ = textproc.Truncate(textproc.StripHTML(raw), 300)
		job.Benefits = benefitsFromHTML(raw)
	}

	for _, sk := range dr.Sk {
		if sk.N != "" {
			job.Skills = append(job.Skills, sk.N)
		}
	}

	job.PublicationDate, job.PublishedAt = normalizePublicationDate(dr.O.St, dr.O.Dluf, dr.O.Dlur)

	switch {
	case dr.O.Lha != "":
		job.URL = dr.O.Lha
	case dr.O.Ur != "":
		job.URL = dr.O.Ur
	}
	return job, nil
}

// normalizePublicationDate prefers the ISO `st` field; the fallbacks are
// stored opaque, with a parsed timestamp only when unambiguous.
func normalizePublicationDate(st, dluf, dlur string) (string, time.Time) {
	for _, candidate := range []string{st, dluf, dlur} {
		if candidate == "" {
			continue
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, candidate); err == nil {
				return ts.UTC().Format("2006-01-02 15:04:05"), ts.UTC()
			}
		}
		return candidate, time.Time{} // opaque
	}
	return "", time.Time{}
}

// formatSalary renders "$30,000 - $45,000 MXN". Zero bounds collapse to the
// known side; all-zero means the board hides the salary.
func formatSalary(smin, smax int, currency string) string {
	if smin <= 0 && smax <= 0 {
		return ""
	}
	cur := strings.ToUpper(strings.TrimSpace(currency))
	switch {
	case smin > 0 && smax > 0:
		s := fmt.Sprintf("$%s - $%s", formatThousands(smin), formatThousands(smax))
		if cur != "" {
			s += " " + cur
		}
		return s
	case smin > 0:
		s := "Desde $" + formatThousands(smin)
		if cur != "" {
			s += " " + cur
		}
		return s
	default:
		s := "Hasta $" + formatThousands(smax)
		if cur != "" {
			s += " " + cur
		}
		return s
	}
}

func formatThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// benefitsFromHTML pulls `<ul><li>` items out of the description HTML, used
// when the JSON payload carries no structured benefits.
func benefitsFromHTML(rawHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}
	var out []string
	seen := map[string]bool{}
	doc.Find("ul li").Each(func(_ int, li *goquery.Selection) {
		item := strings.TrimSpace(li.Text())
		if item == "" || len(item) > 120 || seen[strings.ToLower(item)] {
			return
		}
		seen[strings.ToLower(item)] = true
		out = append(out, item)
	})
	return out
}

// parseDetailHTML scrapes the human detail page; the fallback path when the
// JSON endpoint fails.
func parseDetailHTML(jobID string, data []byte) (JobOffer, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return JobOffer{}, fmt.Errorf("occ: detail html for %s: %w", jobID, err)
	}

	job := JobOffer{JobID: jobID, FetchedAt: time.Now().UTC()}
	job.Title = firstText(doc.Selection, "h1", ".job-title")
	if job.Title == "" {
		return JobOffer{}, fmt.Errorf("occ: detail html for %s: no title", jobID)
	}
	job.Company = firstText(doc.Selection, ".company", ".company-name")
	if job.Company == "" {
		job.Company = CompanyUnspecified
	}
	job.Location = firstText(doc.Selection, ".location", ".ubicacion")
	if job.Location == "" {
		job.Location = LocationUnspecified
	}
	if salary := firstText(doc.Selection, ".salary", ".sueldo"); salary != "" &&
		!strings.Contains(strings.ToLower(salary), "sueldo no mostrado") {
		job.Salary = salary
	}

	if descHTML, err := doc.Find(".job-description, #job-description, .description").First().Html(); err == nil && descHTML != "" {
		if md, err := htmltomarkdown.ConvertString(descHTML); err == nil {
			job.FullDescription = strings.TrimSpace(md)
		}
		job.Description, _ = textproc.Truncate(textproc.StripHTML(descHTML), 300)
		job.Benefits = benefitsFromHTML(descHTML)
	}

	job.WorkMode = normalizeWorkMode(firstText(doc.Selection, ".work-mode, .modalidad"))
	job.JobType = normalizeJobType(firstText(doc.Selection, ".job-type, .tipo-contrato"))
	job.CompanyVerified = doc.Find(".verified, .badge-verified").Length() > 0
	return job, nil
}
