package occ

import (
	"strings"
	"testing"
	"time"
)

const listFixture = `<html><body>
<div class="results">
  <span>128 resultados</span>
  <div data-id="20456789" class="job-card">
    <h2>Senior Backend Developer</h2>
    <h3 class="company">Acme Logistics</h3>
    <span class="location">Guadalajara, Jalisco</span>
    <span class="salary">$40,000 - $55,000 MXN</span>
    <span class="date">Hace 3 días</span>
    <span class="badge-verified">Verificada</span>
    <span>Remoto · Tiempo completo</span>
    <ul><li>Vales de despensa</li><li>Seguro de gastos médicos</li></ul>
    <p class="description">Buscamos backend developer con Go y PostgreSQL.</p>
    <a href="/empleo/20456789">Ver empleo</a>
  </div>
  <div data-id="" class="job-card">
    <span class="location">Monterrey, Nuevo León</span>
  </div>
  <div class="job-card" id="jobcard-998877">
    <h2>QA Analyst</h2>
    <span>Empresa confidencial busca QA en Querétaro</span>
  </div>
</div>
</body></html>`

func TestParseListPage(t *testing.T) {
	jobs, total, err := parseListPage([]byte(listFixture))
	if err != nil {
		t.Fatalf("parseListPage: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("got %d jobs, want 2 (title-less card is skipped)", len(jobs))
	}
	if total != 128 {
		t.Errorf("total = %d, want 128", total)
	}

	first := jobs[0]
	if first.JobID != "20456789" {
		t.Errorf("JobID = %q, want 20456789", first.JobID)
	}
	if first.Title != "Senior Backend Developer" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Company != "Acme Logistics" {
		t.Errorf("Company = %q", first.Company)
	}
	if first.Location != "Guadalajara, Jalisco" {
		t.Errorf("Location = %q", first.Location)
	}
	if first.Salary != "$40,000 - $55,000 MXN" {
		t.Errorf("Salary = %q", first.Salary)
	}
	if !first.CompanyVerified {
		t.Error("CompanyVerified = false, want true")
	}
	if first.WorkMode != WorkModeRemote {
		t.Errorf("WorkMode = %q, want Remoto", first.WorkMode)
	}
	if first.JobType != JobTypeFull {
		t.Errorf("JobType = %q, want Tiempo completo", first.JobType)
	}
	if len(first.Benefits) != 2 || first.Benefits[0] != "Vales de despensa" {
		t.Errorf("Benefits = %v", first.Benefits)
	}
	if first.PublishedAt.IsZero() {
		t.Error("PublishedAt not parsed from relative date")
	}

	second := jobs[1]
	if second.JobID != "998877" {
		t.Errorf("JobID = %q, want 998877 (from jobcard- id)", second.JobID)
	}
	if second.Company != CompanyConfidential {
		t.Errorf("Company = %q, want confidential label", second.Company)
	}
	if second.Location != "Querétaro" {
		t.Errorf("Location = %q, want known-city fallback", second.Location)
	}
}

func TestParseListPageFallbackLabels(t *testing.T) {
	page := `<div data-id="x1"><h2>Algo Trader</h2></div>`
	jobs, _, err := parseListPage([]byte(page))
	if err != nil {
		t.Fatalf("parseListPage: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(jobs))
	}
	if jobs[0].Company != CompanyUnspecified {
		t.Errorf("Company = %q, want %q", jobs[0].Company, CompanyUnspecified)
	}
	if jobs[0].Location != LocationUnspecified {
		t.Errorf("Location = %q, want %q", jobs[0].Location, LocationUnspecified)
	}
}

func TestParseListPageCapsAtTwenty(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 30; i++ {
		b.WriteString(`<div data-id="id` + strings.Repeat("x", i+1) + `"><h2>Role</h2></div>`)
	}
	b.WriteString("</body></html>")

	jobs, _, err := parseListPage([]byte(b.String()))
	if err != nil {
		t.Fatalf("parseListPage: %v", err)
	}
	if len(jobs) != maxJobsPerPage {
		t.Errorf("got %d jobs, want cap %d", len(jobs), maxJobsPerPage)
	}
}

func TestParseListDate(t *testing.T) {
	tests := []struct {
		raw  string
		ok   bool
		back time.Duration
	}{
		{"2025-08-20", true, 0},
		{"Hace 3 días", true, 72 * time.Hour},
		{"hace 5 horas", true, 5 * time.Hour},
		{"Hace 2 semanas", true, 14 * 24 * time.Hour},
		{"ayer por la tarde", false, 0},
		{"", false, 0},
	}
	for _, tt := range tests {
		ts, ok := parseListDate(tt.raw)
		if ok != tt.ok {
			t.Errorf("parseListDate(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			continue
		}
		if !ok || tt.back == 0 {
			continue
		}
		want := time.Now().UTC().Add(-tt.back)
		if diff := want.Sub(ts); diff < -2*time.Hour || diff > 2*time.Hour {
			t.Errorf("parseListDate(%q) = %v, want about %v", tt.raw, ts, want)
		}
	}
}

func TestSynthesizeJobIDIsStable(t *testing.T) {
	a := SynthesizeJobID("Senior Backend Developer")
	b := SynthesizeJobID("Senior Backend Developer")
	if a != b {
		t.Errorf("synthesized ids differ: %q vs %q", a, b)
	}
	if !strings.HasPrefix(a, "occ-") {
		t.Errorf("id %q missing occ- prefix", a)
	}
	if a == SynthesizeJobID("QA Analyst") {
		t.Error("distinct titles collided")
	}
}
