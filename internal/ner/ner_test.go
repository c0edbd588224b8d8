package ner

import (
	"reflect"
	"strings"
	"testing"

	"github.com/empleomatch/empleomatch/internal/profile"
)

func TestLexicalOrganizations(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "company suffix and at-context",
			text: "I worked at DataWorks Inc in Mexico City",
			want: []string{"DataWorks Inc"},
		},
		{
			name: "spanish company marker",
			text: "Colaboré con Grupo Bimbo durante tres años",
			want: []string{"Grupo Bimbo"},
		},
		{
			name: "lexicon entries are not organizations",
			text: "Used Python at UNAM",
			want: nil,
		},
		{
			name: "no signals",
			text: "nothing capitalized here",
			want: nil,
		},
		{
			name: "phrases do not span lines",
			text: "Experiencia\nGrupo Modelo",
			want: []string{"Grupo Modelo"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lexicalOrganizations(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("lexicalOrganizations(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDateMentions(t *testing.T) {
	got := dateMentions("March 2020 and enero de 2019, plus 2018 - 2021")
	want := []string{"2018 - 2021", "March 2020", "enero de 2019"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("dateMentions = %v, want %v", got, want)
	}
}

func TestRangeIn(t *testing.T) {
	tests := []struct {
		in         string
		start, end string
	}{
		{"worked 2019 - Present", "2019", "present"},
		{"2015 a 2018", "2015", "2018"},
		{"2020 hasta actualidad", "2020", "present"},
		{"2023 a 2019", "2023", ""},
		{"no dates here", "", ""},
	}
	for _, tt := range tests {
		start, end := rangeIn(tt.in)
		if start != tt.start || end != tt.end {
			t.Errorf("rangeIn(%q) = (%q, %q), want (%q, %q)", tt.in, start, end, tt.start, tt.end)
		}
	}
}

func TestValidYearIn(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"Class of 2016", 2016},
		{"graduated 2099", 0},
		{"no year", 0},
	}
	for _, tt := range tests {
		if got := validYearIn(tt.in); got != tt.want {
			t.Errorf("validYearIn(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestPositionHint(t *testing.T) {
	tests := []struct {
		line, org, want string
	}{
		{"Backend Engineer at TechCorp", "TechCorp", "Backend Engineer"},
		{"Analista de datos en Softtek", "Softtek", "Analista de datos"},
		{"@ Acme", "Acme", "Professional experience"},
	}
	for _, tt := range tests {
		if got := positionHint(tt.line, tt.org); got != tt.want {
			t.Errorf("positionHint(%q, %q) = %q, want %q", tt.line, tt.org, got, tt.want)
		}
	}
}

func TestFirstOrgIn(t *testing.T) {
	orgs := map[string]bool{"Acme": true, "Globex": true}
	if got := firstOrgIn("Worked at Acme before Globex", orgs); got != "Acme" {
		t.Errorf("firstOrgIn = %q, want Acme", got)
	}
	if got := firstOrgIn("no orgs here", orgs); got != "" {
		t.Errorf("firstOrgIn = %q, want empty", got)
	}
}

const sampleCV = `John Smith
Backend Engineer at TechCorp Solutions (2019 - 2021)
Studied at MIT, graduated 2015
Skills include Python and Docker
`

func TestExtract(t *testing.T) {
	p := NewExtractor().Extract(sampleCV)

	orgSet := map[string]bool{}
	for _, o := range p.Organizations {
		orgSet[o] = true
	}
	if !orgSet["TechCorp Solutions"] || !orgSet["MIT"] {
		t.Errorf("organizations = %v", p.Organizations)
	}

	if len(p.Experience) != 1 {
		t.Fatalf("experience = %+v", p.Experience)
	}
	job := p.Experience[0]
	if job.Company != "TechCorp Solutions" || job.Position != "Backend Engineer" {
		t.Errorf("job = %+v", job)
	}
	if job.StartDate != "2019" || job.EndDate != "2021" {
		t.Errorf("job dates = %q - %q", job.StartDate, job.EndDate)
	}

	if len(p.Education) != 1 || p.Education[0].Institution != "MIT" {
		t.Fatalf("education = %+v", p.Education)
	}
	if p.Education[0].GraduationYear != 2015 {
		t.Errorf("graduation year = %d", p.Education[0].GraduationYear)
	}

	if !reflect.DeepEqual(p.Skills, []string{"Docker", "Python"}) {
		t.Errorf("skills = %v", p.Skills)
	}

	if len(p.Dates) == 0 || !strings.Contains(p.Dates[0], "2019") {
		t.Errorf("dates = %v", p.Dates)
	}
	if p.FieldMethods["dates"] != profile.MethodRegex {
		t.Errorf("dates method = %q, want %q", p.FieldMethods["dates"], profile.MethodRegex)
	}

	if p.Confidence <= 0 {
		t.Errorf("confidence = %v", p.Confidence)
	}
}

func TestLanguagePreference(t *testing.T) {
	e := NewExtractor()
	text := "worked with the team on the billing system and the reporting tools"

	if got := e.language(text); got != "en" {
		t.Errorf("detected language = %q, want en", got)
	}
	e.Language = "es"
	if got := e.language(text); got != "es" {
		t.Errorf("forced language = %q, want es", got)
	}
	e.Language = "fr"
	if got := e.language(text); got != "en" {
		t.Errorf("unknown preference fell back to %q, want en", got)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	p := NewExtractor().Extract("   ")
	if !p.Empty() {
		t.Errorf("empty input produced content: %+v", p)
	}
	if p.Confidence != 0 {
		t.Errorf("confidence = %v, want 0", p.Confidence)
	}
}
