package extract

import (
	"reflect"
	"strings"
	"testing"
)

const englishCV = `Jane Roe
jane.roe@example.com

OBJECTIVE
Software engineer with 8 years of experience seeking backend roles

EXPERIENCE
Senior Software Engineer at TechCorp Solutions (2019 - Present)
- Developed microservices in Python and Go

EDUCATION
B.S. Computer Science, Stanford University, 2015

SKILLS
Python, Go, Docker, PostgreSQL

LANGUAGES
English - Native
`

func TestProfileMergesBothStrategies(t *testing.T) {
	p := New().Profile(englishCV)

	if !strings.Contains(p.Objective, "seeking") {
		t.Errorf("objective = %q", p.Objective)
	}
	if len(p.Education) == 0 {
		t.Fatal("no education extracted")
	}
	if len(p.Experience) == 0 {
		t.Fatal("no experience extracted")
	}

	skillSet := map[string]bool{}
	for _, s := range p.Skills {
		skillSet[s] = true
	}
	for _, want := range []string{"Python", "Go", "Docker"} {
		if !skillSet[want] {
			t.Errorf("skills missing %q: %v", want, p.Skills)
		}
	}

	if p.Languages["English"] == "" {
		t.Errorf("languages = %v", p.Languages)
	}

	// The lexical organization pass feeds the merged profile.
	found := false
	for _, org := range p.Organizations {
		if strings.Contains(org, "TechCorp") {
			found = true
		}
	}
	if !found {
		t.Errorf("organizations = %v", p.Organizations)
	}

	if p.Confidence <= 0 || p.Confidence > 1 {
		t.Errorf("confidence = %v", p.Confidence)
	}
	if p.FieldMethods["objective"] == "" || p.FieldMethods["organizations"] == "" {
		t.Errorf("field methods = %v", p.FieldMethods)
	}
}

func TestProfileEmptyInput(t *testing.T) {
	for _, in := range []string{"", "   \n\t  "} {
		p := New().Profile(in)
		if !p.Empty() {
			t.Errorf("Profile(%q) produced content: %+v", in, p)
		}
		if p.Confidence != 0 {
			t.Errorf("Profile(%q) confidence = %v, want 0", in, p.Confidence)
		}
	}
}

func TestProfileHostileInputNeverPanics(t *testing.T) {
	inputs := []string{
		strings.Repeat("\x00", 100),
		strings.Repeat("ñ", 5000),
		"<html><body>not a cv</body></html>",
		strings.Repeat("2020 - 2021 ", 500),
	}
	for _, in := range inputs {
		p := New().Profile(in)
		if p == nil {
			t.Fatal("nil profile")
		}
	}
}

func TestProfileDeterministic(t *testing.T) {
	pipe := New()
	a := pipe.Profile(englishCV)
	b := pipe.Profile(englishCV)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated extraction differs:\n%+v\n%+v", a, b)
	}
}

func TestWithLanguage(t *testing.T) {
	p := New().WithLanguage("es")
	if p.nerAssisted.Language != "es" {
		t.Errorf("language = %q, want es", p.nerAssisted.Language)
	}

	// "auto" and unknown values keep per-input detection.
	for _, lang := range []string{"auto", "", "fr"} {
		p = New().WithLanguage(lang)
		if p.nerAssisted.Language != "" {
			t.Errorf("WithLanguage(%q) forced %q", lang, p.nerAssisted.Language)
		}
	}
}

func TestWithMaxSkills(t *testing.T) {
	p := New().WithMaxSkills(2).Profile(englishCV)
	if len(p.Skills) > 2 {
		t.Errorf("skills = %v, cap is 2", p.Skills)
	}

	// Non-positive values keep the default cap.
	p = New().WithMaxSkills(0).Profile(englishCV)
	if len(p.Skills) == 0 {
		t.Error("zero cap wiped the skill list")
	}
}
