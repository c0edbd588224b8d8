package textproc

import (
	"strings"
	"testing"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
		cut   bool
	}{
		{"hello", 10, "hello", false},
		{"hello", 5, "hello", false},
		{"hello world", 5, "hello", true},
		{"", 5, "", false},
		{"niño", 3, "ni", true}, // ñ is 2 bytes, never split mid-rune
	}
	for _, tt := range tests {
		got, cut := Truncate(tt.in, tt.limit)
		if got != tt.want || cut != tt.cut {
			t.Errorf("Truncate(%q, %d) = %q, %v; want %q, %v", tt.in, tt.limit, got, cut, tt.want, tt.cut)
		}
	}
}

func TestNormalizeBasic(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  Hello   World  ", "hello world"},
		{"PYTHON Developer", "python developer"},
		{"ﬁnance", "finance"}, // NFKC expands the ligature
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in, Basic); got != tt.want {
			t.Errorf("Normalize(%q, Basic) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAggressiveDropsStopwords(t *testing.T) {
	got := Normalize("the experience with the team", Aggressive)
	if strings.Contains(" "+got+" ", " the ") {
		t.Errorf("stopword survived: %q", got)
	}
	if got == "" {
		t.Error("content words were dropped entirely")
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	in := "Desarrollador de software con experiencia en Python y AWS"
	for _, mode := range []Mode{Basic, Stemmed, Aggressive} {
		if Normalize(in, mode) != Normalize(in, mode) {
			t.Errorf("mode %d not deterministic", mode)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"node.js and e-commerce", []string{"node.js", "and", "e-commerce"}},
		{"c++ c# f# python", []string{"c++", "c#", "f#", "python"}},
		{"rated A+ overall", []string{"rated", "A+", "overall"}},
		{"end. of-sentence", []string{"end", "of-sentence"}},
		{"ci/cd, docker!", []string{"ci", "cd", "docker"}},
		{"x#y+z", []string{"xyz"}}, // symbols stripped outside the allow-list
		{"", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"I have five years of experience with the team and this company", "en"},
		{"Desarrollador con experiencia en el desarrollo de software para la empresa", "es"},
		{"", "es"}, // tie resolves to Spanish
		{"python docker kubernetes", "es"},
	}
	for _, tt := range tests {
		if got := DetectLanguage(tt.in); got != tt.want {
			t.Errorf("DetectLanguage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStem(t *testing.T) {
	tests := []struct {
		word, lang, want string
	}{
		{"developers", "en", "developer"},
		{"testing", "en", "test"},
		{"libraries", "en", "library"},
		{"organization", "en", "organize"},
		{"cat", "en", "cat"}, // too short, untouched
		{"habilidades", "es", "habilidad"},
		{"aplicaciones", "es", "aplicación"},
		{"desarrollando", "es", "desarrollar"},
		{"desarrolladores", "es", "desarrollador"},
	}
	for _, tt := range tests {
		if got := Stem(tt.word, tt.lang); got != tt.want {
			t.Errorf("Stem(%q, %q) = %q, want %q", tt.word, tt.lang, got, tt.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	in := `<html><head><style>p{color:red}</style><script>alert(1)</script></head>
	<body><p>Desarrollador <b>Python</b></p><ul><li>Docker</li></ul></body></html>`
	got := StripHTML(in)
	if strings.Contains(got, "alert") || strings.Contains(got, "color") {
		t.Errorf("script/style content leaked: %q", got)
	}
	for _, want := range []string{"Desarrollador", "Python", "Docker"} {
		if !strings.Contains(got, want) {
			t.Errorf("StripHTML dropped %q: %q", want, got)
		}
	}
	if strings.Contains(got, "<") {
		t.Errorf("markup survived: %q", got)
	}
}
