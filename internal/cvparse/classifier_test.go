package cvparse

import "testing"

func classify(line string) (Category, float64) {
	return Classify(line, ExtractFeatures(line))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want Category
	}{
		{"", CatOther},
		{"asdf", CatOther},
		{"EXPERIENCE:", CatHeader},
		{"HABILIDADES", CatHeader},
		{"john.doe@example.com", CatContact},
		{"Python, Django, PostgreSQL, Docker", CatSkill},
		{"- Led a team of 5 engineers, increased throughput by 40%", CatExperience},
		{"Developed microservices in Python (2020 - 2023)", CatExperience},
		{"B.S. Computer Science, Stanford University, 2015", CatEducation},
		{"English - Fluent", CatLanguage},
		{"Hablo español nativo e inglés intermedio", CatLanguage},
		{"AWS Certified Solutions Architect, 2021", CatCertification},
		{"Software engineer with 8 years of experience seeking new backend challenges", CatObjective},
	}
	for _, tt := range tests {
		got, _ := classify(tt.line)
		if got != tt.want {
			t.Errorf("Classify(%q) = %q, want %q", tt.line, got, tt.want)
		}
	}
}

func TestClassifyConfidenceBounds(t *testing.T) {
	lines := []string{
		"EXPERIENCE:",
		"Python, Django, PostgreSQL",
		"English - Fluent",
		"random words here",
	}
	for _, line := range lines {
		_, conf := classify(line)
		if conf <= 0 || conf >= 1 {
			t.Errorf("Classify(%q) confidence %v out of (0,1)", line, conf)
		}
	}
}

func TestClassifyConfidenceReflectsEvidence(t *testing.T) {
	_, strong := classify("EXPERIENCE:")
	_, weak := classify("random words here")
	if strong < 0.8 {
		t.Errorf("unambiguous header confidence = %v, want at least 0.8", strong)
	}
	if weak >= strong {
		t.Errorf("featureless line confidence %v not below header confidence %v", weak, strong)
	}
}

func TestClassifyIsPure(t *testing.T) {
	line := "Developed the billing pipeline (2019 - 2022)"
	c1, conf1 := classify(line)
	c2, conf2 := classify(line)
	if c1 != c2 || conf1 != conf2 {
		t.Errorf("classification not stable: %q/%v vs %q/%v", c1, conf1, c2, conf2)
	}
}
