// Package textproc provides text normalization, tokenization and language
// detection for the extraction and matching pipeline. All functions are pure
// and deterministic.
package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Mode selects how aggressively Normalize rewrites text.
type Mode int

const (
	// Basic applies unicode NFKC, lowercasing and whitespace collapsing.
	Basic Mode = iota
	// Stemmed is Basic plus light per-language suffix stripping.
	Stemmed
	// Aggressive is Stemmed plus stopword removal.
	Aggressive
)

// DefaultMaxInput caps input size to avoid pathological documents.
const DefaultMaxInput = 200 << 10 // 200 KiB

// symbolTokens is the closed allow-list of tokens where '+' and '#' are
// meaningful and must survive tokenization.
var symbolTokens = map[string]bool{
	"c++": true, "c#": true, "f#": true, "g++": true, ".net": true,
	"a+": true, "notes++": true,
}

// Truncate caps s at limit bytes on a rune boundary. Returns the (possibly
// shortened) string and whether truncation happened.
func Truncate(s string, limit int) (string, bool) {
	if limit <= 0 || len(s) <= limit {
		return s, false
	}
	cut := limit
	for cut > 0 && !utf8Start(s[cut]) {
		cut--
	}
	return s[:cut], true
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

// Normalize rewrites text according to mode. Inputs above DefaultMaxInput
// are truncated first.
func Normalize(text string, mode Mode) string {
	text, _ = Truncate(text, DefaultMaxInput)
	text = norm.NFKC.String(text)
	text = strings.ToLower(text)
	text = strings.Join(strings.Fields(text), " ")
	if mode == Basic {
		return text
	}

	lang := DetectLanguage(text)
	tokens := Tokenize(text)
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if mode == Aggressive && IsStopword(tok, lang) {
			continue
		}
		out = append(out, Stem(tok, lang))
	}
	return strings.Join(out, " ")
}

// Tokenize splits text on whitespace and punctuation. Intra-token '.' and '-'
// survive when flanked by alphanumerics ("node.js", "e-commerce"); '+' and '#'
// survive only for tokens in the symbol allow-list.
func Tokenize(text string) []string {
	runes := []rune(text)
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() == 0 {
			return
		}
		tok := strings.Trim(b.String(), ".-")
		b.Reset()
		if tok == "" {
			return
		}
		if strings.ContainsAny(tok, "+#") && !symbolTokens[strings.ToLower(tok)] {
			tok = strings.Map(func(r rune) rune {
				if r == '+' || r == '#' {
					return -1
				}
				return r
			}, tok)
		}
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	alnum := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

	for i, r := range runes {
		switch {
		case alnum(r), r == '+', r == '#':
			b.WriteRune(r)
		case r == '.' || r == '-':
			if i > 0 && i+1 < len(runes) && alnum(runes[i-1]) && alnum(runes[i+1]) {
				b.WriteRune(r)
			} else {
				flush()
			}
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// langMarkersES and langMarkersEN are closed marker-word lists for the
// language heuristic. Ties resolve to Spanish, the board's primary language.
var langMarkersES = []string{
	"el", "la", "los", "las", "de", "del", "en", "con", "por", "para",
	"una", "uno", "que", "como", "más", "años", "experiencia", "empresa",
	"trabajo", "desarrollo", "habilidades", "educación", "actual", "desde",
}

var langMarkersEN = []string{
	"the", "and", "with", "for", "from", "this", "that", "have", "work",
	"experience", "skills", "education", "company", "developed", "team",
	"years", "present", "currently", "university", "degree",
}

// DetectLanguage returns "es" or "en" using marker-word counts.
func DetectLanguage(text string) string {
	seen := make(map[string]int)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		seen[strings.Trim(tok, ".,;:()")]++
	}
	var es, en int
	for _, w := range langMarkersES {
		es += seen[w]
	}
	for _, w := range langMarkersEN {
		en += seen[w]
	}
	if en > es {
		return "en"
	}
	return "es"
}

// IsStopword reports whether tok is a stopword in lang ("es" or "en").
func IsStopword(tok, lang string) bool {
	if lang == "en" {
		return stopwordsEN[tok]
	}
	return stopwordsES[tok]
}

// Stem applies light suffix stripping for lang. Not a full Porter stemmer;
// enough to collapse plurals and common verb forms for TF-IDF purposes.
func Stem(word, lang string) string {
	if len(word) < 4 {
		return word
	}
	suffixes := stemSuffixesES
	if lang == "en" {
		suffixes = stemSuffixesEN
	}
	for _, suf := range suffixes {
		if strings.HasSuffix(word, suf.strip) && len(word)-len(suf.strip) >= suf.minStem {
			return word[:len(word)-len(suf.strip)] + suf.replace
		}
	}
	return word
}

type stemRule struct {
	strip   string
	replace string
	minStem int
}

// Ordered longest-first; the first applicable rule wins.
var stemSuffixesEN = []stemRule{
	{"ization", "ize", 3},
	{"ations", "ate", 3},
	{"ation", "ate", 3},
	{"ness", "", 3},
	{"ment", "", 3},
	{"ing", "", 3},
	{"ies", "y", 2},
	{"ed", "", 3},
	{"ly", "", 3},
	{"es", "", 3},
	{"s", "", 3},
}

var stemSuffixesES = []stemRule{
	{"aciones", "ación", 2},
	{"amiento", "", 3},
	{"mente", "", 3},
	{"idades", "idad", 2},
	{"ciones", "ción", 2},
	{"adores", "ador", 2},
	{"iendo", "er", 2},
	{"ando", "ar", 2},
	{"adas", "ada", 2},
	{"ados", "ado", 2},
	{"es", "", 3},
	{"s", "", 3},
}
