package cvparse

import (
	"reflect"
	"strings"
	"testing"
)

// mkLine builds a classifiedLine for block-level parser tests.
func mkLine(text string) classifiedLine {
	f := ExtractFeatures(text)
	cat, conf := Classify(text, f)
	return classifiedLine{text: text, feat: f, cat: cat, conf: conf, section: CatOther}
}

func TestSectionForHeader(t *testing.T) {
	tests := []struct {
		header string
		want   Category
	}{
		{"EXPERIENCE:", CatExperience},
		{"Experiencia Laboral", CatExperience},
		{"EDUCATION", CatEducation},
		{"Formación Académica:", CatEducation},
		{"SKILLS", CatSkill},
		{"Habilidades Técnicas", CatSkill},
		{"IDIOMAS", CatLanguage},
		{"CERTIFICATIONS", CatCertification},
		{"OBJECTIVE", CatObjective},
		{"RANDOM HEADER", CatOther},
	}
	for _, tt := range tests {
		if got := sectionForHeader(tt.header); got != tt.want {
			t.Errorf("sectionForHeader(%q) = %q, want %q", tt.header, got, tt.want)
		}
	}
}

func TestSplitSkillLine(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"Skills: Python, Django; PostgreSQL | Docker", []string{"Python", "Django", "PostgreSQL", "Docker"}},
		{"• Git", []string{"Git"}},
		{"React / Vue / Angular", []string{"React", "Vue", "Angular"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitSkillLine(tt.line)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitSkillLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestTechTerms(t *testing.T) {
	got := TechTerms("I know Python and machine learning plus node.js")
	want := map[string]bool{"python": true, "machine learning": true, "node.js": true}
	if len(got) != len(want) {
		t.Fatalf("TechTerms = %v, want 3 terms", got)
	}
	for _, term := range got {
		if !want[term] {
			t.Errorf("unexpected term %q", term)
		}
	}
	// Output is sorted so repeated extractions agree.
	if !sortedStrings(got) {
		t.Errorf("terms not sorted: %v", got)
	}
}

func sortedStrings(ss []string) bool {
	for i := 1; i < len(ss); i++ {
		if ss[i-1] > ss[i] {
			return false
		}
	}
	return true
}

const structuredCV = `John Doe
john.doe@example.com | +52 55 1234 5678

OBJECTIVE
Software engineer with 8 years of experience seeking new backend challenges

EXPERIENCE
Senior Software Engineer at TechCorp Solutions (2019 - Present)
- Developed microservices in Python and Go
- Reduced deployment time by 40%
Software Developer at DataWorks Inc (2015 - 2019)
- Built ETL pipelines with Airflow

EDUCATION
B.S. Computer Science, Stanford University, 2015

SKILLS
Python, Go, Docker, Kubernetes, PostgreSQL

LANGUAGES
English - Native
Spanish - Intermediate

CERTIFICATIONS
AWS Certified Solutions Architect, 2021
`

func TestExtractStructuredCV(t *testing.T) {
	p := NewExtractor().Extract(structuredCV)

	if !strings.Contains(p.Objective, "seeking") {
		t.Errorf("objective = %q", p.Objective)
	}

	if len(p.Education) != 1 {
		t.Fatalf("education entries = %d, want 1", len(p.Education))
	}
	edu := p.Education[0]
	if edu.Institution != "Stanford University" || edu.Degree != "B.S." ||
		edu.FieldOfStudy != "Computer Science" || edu.GraduationYear != 2015 {
		t.Errorf("education = %+v", edu)
	}

	if len(p.Experience) != 2 {
		t.Fatalf("experience entries = %d, want 2", len(p.Experience))
	}
	first := p.Experience[0]
	if first.Position != "Senior Software Engineer" || first.Company != "TechCorp Solutions" {
		t.Errorf("first job = %+v", first)
	}
	if first.StartDate != "2019" || first.EndDate != "present" {
		t.Errorf("first job dates = %q - %q", first.StartDate, first.EndDate)
	}
	if !strings.Contains(first.Description, "microservices") {
		t.Errorf("first job description = %q", first.Description)
	}
	second := p.Experience[1]
	if second.Company != "DataWorks Inc" || second.StartDate != "2015" || second.EndDate != "2019" {
		t.Errorf("second job = %+v", second)
	}

	wantHead := []string{"Python", "Go", "Docker", "Kubernetes", "Postgresql"}
	if len(p.Skills) < len(wantHead) {
		t.Fatalf("skills = %v", p.Skills)
	}
	for i, want := range wantHead {
		if p.Skills[i] != want {
			t.Errorf("skills[%d] = %q, want %q", i, p.Skills[i], want)
		}
	}

	if p.Languages["English"] != "native" || p.Languages["Spanish"] != "intermediate" {
		t.Errorf("languages = %v", p.Languages)
	}

	if len(p.Certifications) != 1 || !strings.Contains(p.Certifications[0], "AWS Certified") {
		t.Errorf("certifications = %v", p.Certifications)
	}

	if p.Confidence < 0.6 || p.Confidence > 1 {
		t.Errorf("confidence = %v, want at least 0.6 for a fully sectioned CV", p.Confidence)
	}
	if p.FieldMethods["experience"] == "" {
		t.Error("experience method not recorded")
	}
}

const narrativeCV = `Soy desarrollador de software con cinco años de experiencia buscando nuevos retos
Trabajé como Desarrollador Web en Soluciones Digitales, 2018 a 2022
Estudié la Licenciatura en Informática en la Universidad de Guadalajara, 2018
Manejo Python, Django y MySQL
Hablo español nativo e inglés intermedio
`

func TestExtractNarrativeSpanishCV(t *testing.T) {
	p := NewExtractor().Extract(narrativeCV)

	if !strings.Contains(strings.ToLower(p.Objective), "desarrollador") {
		t.Errorf("objective = %q", p.Objective)
	}

	if len(p.Experience) != 1 {
		t.Fatalf("experience entries = %d, want 1: %+v", len(p.Experience), p.Experience)
	}
	job := p.Experience[0]
	if job.Company != "Soluciones Digitales" {
		t.Errorf("company = %q", job.Company)
	}
	if job.StartDate != "2018" || job.EndDate != "2022" {
		t.Errorf("dates = %q - %q", job.StartDate, job.EndDate)
	}

	if len(p.Education) != 1 {
		t.Fatalf("education entries = %d, want 1", len(p.Education))
	}
	if !strings.Contains(p.Education[0].Institution, "Universidad de Guadalajara") {
		t.Errorf("institution = %q", p.Education[0].Institution)
	}
	if p.Education[0].GraduationYear != 2018 {
		t.Errorf("year = %d", p.Education[0].GraduationYear)
	}

	skillSet := map[string]bool{}
	for _, s := range p.Skills {
		skillSet[s] = true
	}
	for _, want := range []string{"Python", "Django"} {
		if !skillSet[want] {
			t.Errorf("skills missing %q: %v", want, p.Skills)
		}
	}

	if p.Languages["Español"] != "native" || p.Languages["Inglés"] != "intermediate" {
		t.Errorf("languages = %v", p.Languages)
	}

	if p.Confidence < 0.35 {
		t.Errorf("confidence = %v, want at least 0.35 for a narrative CV", p.Confidence)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n\n  ", "\t"} {
		p := NewExtractor().Extract(in)
		if !p.Empty() {
			t.Errorf("Extract(%q) produced content: %+v", in, p)
		}
		if p.Confidence != 0 {
			t.Errorf("Extract(%q) confidence = %v, want 0", in, p.Confidence)
		}
	}
}

func TestExtractTruncatesOversizedInput(t *testing.T) {
	e := NewExtractor()
	e.MaxInput = 100
	p := e.Extract(strings.Repeat("experience at BigCo from 2019 - 2021. ", 20))
	if !p.Truncated {
		t.Error("oversized input not marked truncated")
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := NewExtractor()
	a := e.Extract(structuredCV)
	b := e.Extract(structuredCV)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated extraction differs:\n%+v\n%+v", a, b)
	}
}
