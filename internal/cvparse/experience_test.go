package cvparse

import (
	"strings"
	"testing"
)

func TestExtractPosition(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"Senior Software Engineer at TechCorp (2020 - Present)", "Senior Software Engineer"},
		{"Ingeniero de Software en Grupo Bimbo, 2019 a 2021", "Ingeniero de Software"},
		{"Data Analyst", "Data Analyst"},
		{"Just some random text", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractPosition(tt.line); got != tt.want {
			t.Errorf("extractPosition(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestCleanCompany(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"TechCorp 2020", "TechCorp"},
		{" Acme Labs, ", "Acme Labs"},
		{"DataWorks Inc", "DataWorks Inc"},
	}
	for _, tt := range tests {
		if got := cleanCompany(tt.in); got != tt.want {
			t.Errorf("cleanCompany(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitExperienceBlocks(t *testing.T) {
	lines := []classifiedLine{
		mkLine("Senior Software Engineer at TechCorp Solutions (2019 - Present)"),
		mkLine("- Developed microservices in Python and Go"),
		mkLine("- Reduced deployment time by 40%"),
		mkLine("Software Developer at DataWorks Inc (2015 - 2019)"),
		mkLine("- Built ETL pipelines with Airflow"),
	}
	blocks := splitExperienceBlocks(lines)
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	if n := len(blocks[0]); n != 3 {
		t.Errorf("first block has %d lines, want 3", n)
	}
	if n := len(blocks[1]); n != 2 {
		t.Errorf("second block has %d lines, want 2", n)
	}
}

func TestParseExperienceBlock(t *testing.T) {
	block := []classifiedLine{
		mkLine("Senior Software Engineer at TechCorp Solutions (2019 - Present)"),
		mkLine("- Developed microservices in Python and Go"),
		mkLine("- Reduced deployment time by 40%"),
	}
	entry, ok := parseExperienceBlock(block)
	if !ok {
		t.Fatal("valid block rejected")
	}
	if entry.Position != "Senior Software Engineer" {
		t.Errorf("position = %q", entry.Position)
	}
	if entry.Company != "TechCorp Solutions" {
		t.Errorf("company = %q", entry.Company)
	}
	if entry.StartDate != "2019" || entry.EndDate != "present" {
		t.Errorf("dates = %q - %q", entry.StartDate, entry.EndDate)
	}
	if !strings.Contains(entry.Description, "microservices") {
		t.Errorf("description = %q", entry.Description)
	}
}

func TestParseExperienceBlockRequiresPosition(t *testing.T) {
	block := []classifiedLine{mkLine("- improved various things")}
	if _, ok := parseExperienceBlock(block); ok {
		t.Error("bullet-only block must not produce an entry")
	}
}

func TestNarrativeExperience(t *testing.T) {
	text := "Trabajé como desarrollador web en Soluciones Digitales de 2018 a 2022 con proyectos de comercio"
	entries := narrativeExperience(text)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.StartDate != "2018" || e.EndDate != "2022" {
		t.Errorf("dates = %q - %q", e.StartDate, e.EndDate)
	}
	if !strings.Contains(e.Company, "Soluciones Digitales") {
		t.Errorf("company = %q", e.Company)
	}
	if !strings.Contains(strings.ToLower(e.Position), "desarrollador") {
		t.Errorf("position = %q", e.Position)
	}
}
