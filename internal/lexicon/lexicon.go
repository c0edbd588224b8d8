// Package lexicon loads the curated keyword lists that drive line feature
// extraction and term filtering. Lists are data, not code: they live in
// embedded JSON and can be overridden from tests.
package lexicon

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

//go:embed data/*.json
var dataFS embed.FS

// Set is a case-insensitive membership set over lexicon entries.
type Set map[string]bool

// Has reports whether s (any case) is in the set.
func (s Set) Has(term string) bool {
	return s[strings.ToLower(strings.TrimSpace(term))]
}

// ContainsAny reports whether any entry of the set appears as a substring of
// text (lowercased). Used for multi-word entries like "s.a. de c.v.".
func (s Set) ContainsAny(text string) bool {
	lower := strings.ToLower(text)
	for term := range s {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}

// Entries returns the raw entries in unspecified order.
func (s Set) Entries() []string {
	out := make([]string, 0, len(s))
	for term := range s {
		out = append(out, term)
	}
	return out
}

var (
	mu     sync.RWMutex
	loaded map[string]Set
	once   sync.Once
)

var files = map[string]string{
	"tech":           "data/tech.json",
	"action_verbs":   "data/action_verbs.json",
	"education":      "data/education.json",
	"degrees":        "data/degrees.json",
	"companies":      "data/companies.json",
	"certifications": "data/certifications.json",
	"languages":      "data/languages.json",
	"soft_skills":    "data/soft_skills.json",
}

func loadAll() {
	loaded = make(map[string]Set, len(files))
	for name, path := range files {
		raw, err := dataFS.ReadFile(path)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded %s missing: %v", path, err))
		}
		var entries []string
		if err := json.Unmarshal(raw, &entries); err != nil {
			panic(fmt.Sprintf("lexicon: parse %s: %v", path, err))
		}
		set := make(Set, len(entries))
		for _, e := range entries {
			set[strings.ToLower(e)] = true
		}
		loaded[name] = set
	}
}

func get(name string) Set {
	once.Do(loadAll)
	mu.RLock()
	defer mu.RUnlock()
	return loaded[name]
}

// Tech is the technology vocabulary.
func Tech() Set { return get("tech") }

// ActionVerbs is the bilingual action-verb list.
func ActionVerbs() Set { return get("action_verbs") }

// Education is the education keyword list.
func Education() Set { return get("education") }

// Degrees is the closed list of degree tokens.
func Degrees() Set { return get("degrees") }

// CompanySignals is the company suffix/marker list.
func CompanySignals() Set { return get("companies") }

// Certifications is the certification keyword list.
func Certifications() Set { return get("certifications") }

// Languages is the spoken-language name list (English and Spanish names).
func Languages() Set { return get("languages") }

// SoftSkills is the soft-skill phrase list.
func SoftSkills() Set { return get("soft_skills") }

// Override replaces a named lexicon for the duration of a test. Returns a
// restore func. Panics on unknown names so typos fail fast.
func Override(name string, entries []string) (restore func()) {
	once.Do(loadAll)
	if _, ok := files[name]; !ok {
		panic("lexicon: unknown lexicon " + name)
	}
	set := make(Set, len(entries))
	for _, e := range entries {
		set[strings.ToLower(e)] = true
	}
	mu.Lock()
	prev := loaded[name]
	loaded[name] = set
	mu.Unlock()
	return func() {
		mu.Lock()
		loaded[name] = prev
		mu.Unlock()
	}
}
