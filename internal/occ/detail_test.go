package occ

import (
	"strings"
	"testing"
	"time"
)

const detailJSONFixture = `{
  "o": {
    "t": "Data Engineer",
    "l": "Ciudad de México, CDMX",
    "smin": 30000,
    "smax": 45000,
    "sc": "MXN",
    "wm": "remoto",
    "ct": "tiempo completo",
    "ld": "<p>Construye pipelines de datos.</p><ul><li>Home office</li><li>Bono anual</li></ul>",
    "st": "2025-10-21T00:00:00Z",
    "lha": "https://board.example/empleo/20456789"
  },
  "c": {"cn": "Datawise", "cver": true},
  "e": {"me": "Licenciatura", "ex": "3 años"},
  "sk": [{"n": "Python"}, {"n": "SQL"}, {"n": ""}]
}`

func TestParseDetailJSON(t *testing.T) {
	job, err := parseDetailJSON("20456789", []byte(detailJSONFixture))
	if err != nil {
		t.Fatalf("parseDetailJSON: %v", err)
	}
	if job.Title != "Data Engineer" {
		t.Errorf("Title = %q", job.Title)
	}
	if job.Company != "Datawise" || !job.CompanyVerified {
		t.Errorf("Company = %q verified=%v", job.Company, job.CompanyVerified)
	}
	if job.Salary != "$30,000 - $45,000 MXN" {
		t.Errorf("Salary = %q, want $30,000 - $45,000 MXN", job.Salary)
	}
	if job.WorkMode != WorkModeRemote {
		t.Errorf("WorkMode = %q, want Remoto", job.WorkMode)
	}
	if job.JobType != JobTypeFull {
		t.Errorf("JobType = %q", job.JobType)
	}
	if job.PublicationDate != "2025-10-21 00:00:00" {
		t.Errorf("PublicationDate = %q, want 2025-10-21 00:00:00", job.PublicationDate)
	}
	if job.PublishedAt.IsZero() {
		t.Error("PublishedAt not parsed")
	}
	if got, want := job.Skills, []string{"Python", "SQL"}; len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Skills = %v, want %v", got, want)
	}
	if len(job.Benefits) != 2 || job.Benefits[0] != "Home office" {
		t.Errorf("Benefits = %v, want list items from description html", job.Benefits)
	}
	if !strings.Contains(job.FullDescription, "Construye pipelines") {
		t.Errorf("FullDescription = %q", job.FullDescription)
	}
	if strings.Contains(job.Description, "<p>") {
		t.Errorf("Description still carries markup: %q", job.Description)
	}
	if job.URL != "https://board.example/empleo/20456789" {
		t.Errorf("URL = %q", job.URL)
	}
	if job.EducationReq != "Licenciatura" || job.ExperienceLevel != "3 años" {
		t.Errorf("requirements = %q / %q", job.EducationReq, job.ExperienceLevel)
	}
}

func TestParseDetailJSONRejectsEmptyTitle(t *testing.T) {
	if _, err := parseDetailJSON("x", []byte(`{"o":{"t":""}}`)); err == nil {
		t.Error("expected error for payload without title")
	}
	if _, err := parseDetailJSON("x", []byte(`not json`)); err == nil {
		t.Error("expected error for malformed payload")
	}
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		smin, smax int
		cur        string
		want       string
	}{
		{30000, 45000, "MXN", "$30,000 - $45,000 MXN"},
		{1500000, 2000000, "mxn", "$1,500,000 - $2,000,000 MXN"},
		{25000, 0, "MXN", "Desde $25,000 MXN"},
		{0, 18000, "", "Hasta $18,000"},
		{0, 0, "MXN", ""},
		{800, 900, "", "$800 - $900"},
	}
	for _, tt := range tests {
		if got := formatSalary(tt.smin, tt.smax, tt.cur); got != tt.want {
			t.Errorf("formatSalary(%d, %d, %q) = %q, want %q", tt.smin, tt.smax, tt.cur, got, tt.want)
		}
	}
}

func TestNormalizePublicationDate(t *testing.T) {
	tests := []struct {
		name           string
		st, dluf, dlur string
		want           string
		parsed         bool
	}{
		{"iso with zone", "2025-10-21T00:00:00Z", "", "", "2025-10-21 00:00:00", true},
		{"iso without zone", "2025-08-02T09:30:00", "", "", "2025-08-02 09:30:00", true},
		{"date only fallback", "", "2025-07-15", "", "2025-07-15 00:00:00", true},
		{"opaque fallback", "", "", "hace un rato", "hace un rato", false},
		{"all empty", "", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ts := normalizePublicationDate(tt.st, tt.dluf, tt.dlur)
			if got != tt.want {
				t.Errorf("date = %q, want %q", got, tt.want)
			}
			if ts.IsZero() == tt.parsed {
				t.Errorf("parsed timestamp zero = %v, want parsed = %v", ts.IsZero(), tt.parsed)
			}
		})
	}
}

func TestParseDetailHTML(t *testing.T) {
	page := `<html><body>
	  <h1>DevOps Engineer</h1>
	  <div class="company">CloudMex</div>
	  <span class="location">Monterrey, Nuevo León</span>
	  <span class="salary">$50,000 MXN</span>
	  <div class="job-description"><p>Automatiza despliegues con Kubernetes.</p><ul><li>Fondo de ahorro</li></ul></div>
	  <span class="badge-verified"></span>
	</body></html>`

	job, err := parseDetailHTML("777", []byte(page))
	if err != nil {
		t.Fatalf("parseDetailHTML: %v", err)
	}
	if job.Title != "DevOps Engineer" || job.Company != "CloudMex" {
		t.Errorf("parsed %q at %q", job.Title, job.Company)
	}
	if !job.CompanyVerified {
		t.Error("CompanyVerified = false")
	}
	if !strings.Contains(job.FullDescription, "Kubernetes") {
		t.Errorf("FullDescription = %q", job.FullDescription)
	}
	if len(job.Benefits) != 1 || job.Benefits[0] != "Fondo de ahorro" {
		t.Errorf("Benefits = %v", job.Benefits)
	}
}

func TestPublishedWithin(t *testing.T) {
	recent := JobOffer{PublishedAt: time.Now().Add(-48 * time.Hour)}
	stale := JobOffer{PublishedAt: time.Now().Add(-30 * 24 * time.Hour)}
	undated := JobOffer{}

	if !PublishedWithin(&recent, 7*24*time.Hour) {
		t.Error("recent offer rejected")
	}
	if PublishedWithin(&stale, 7*24*time.Hour) {
		t.Error("stale offer accepted")
	}
	if !PublishedWithin(&undated, time.Hour) {
		t.Error("undated offer rejected")
	}
}
