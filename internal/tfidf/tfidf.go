// Package tfidf implements the vectorizer behind similarity scoring and term
// extraction: vocabulary construction, smoothed IDF, L2-normalized sparse
// vectors and cosine similarity.
package tfidf

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/empleomatch/empleomatch/internal/lexicon"
	"github.com/empleomatch/empleomatch/internal/textproc"
)

var (
	// ErrEmptyVocabulary is returned by Fit when no term survives the
	// document-frequency filters.
	ErrEmptyVocabulary = errors.New("tfidf: empty vocabulary")
	// ErrNotFitted is returned by Transform before Fit has run.
	ErrNotFitted = errors.New("tfidf: vectorizer not fitted")
)

// epsilon: weights below this are treated as zero.
const epsilon = 1e-12

// Vector is a sparse document vector mapping term index to weight.
type Vector map[int]float64

// TermWeight pairs a vocabulary term with its weight in a document.
type TermWeight struct {
	Term   string
	Weight float64
}

// Vectorizer holds a fitted vocabulary and IDF table. Immutable after Fit;
// safe for concurrent reads.
type Vectorizer struct {
	vocab      map[string]int
	terms      []string
	idf        []float64
	minDF      int
	maxDFRatio float64
	fitted     bool
}

// Option configures a Vectorizer before fitting.
type Option func(*Vectorizer)

// WithMinDF sets the minimum document frequency for vocabulary terms.
func WithMinDF(n int) Option { return func(v *Vectorizer) { v.minDF = n } }

// WithMaxDFRatio drops terms present in more than ratio of documents.
func WithMaxDFRatio(ratio float64) Option { return func(v *Vectorizer) { v.maxDFRatio = ratio } }

// New returns an unfitted vectorizer with default df filters (min 1, max 0.95).
func New(opts ...Option) *Vectorizer {
	v := &Vectorizer{minDF: 1, maxDFRatio: 0.95}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func tokenizeDoc(text string) []string {
	return textproc.Tokenize(textproc.Normalize(text, textproc.Basic))
}

// Fit builds the vocabulary and IDF table from the corpus. Runs once; a
// second call replaces the previous fit. Uses the smoothed form
// idf(t) = ln((1+N)/(1+df(t))) + 1.
func (v *Vectorizer) Fit(documents []string) error {
	df := make(map[string]int)
	n := 0
	for _, doc := range documents {
		tokens := tokenizeDoc(doc)
		if len(tokens) == 0 {
			continue
		}
		n++
		seen := make(map[string]bool, len(tokens))
		for _, tok := range tokens {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}
	if n == 0 || len(df) == 0 {
		return ErrEmptyVocabulary
	}

	maxDF := int(math.Floor(v.maxDFRatio * float64(n)))
	if maxDF < 1 {
		maxDF = 1
	}

	kept := make([]string, 0, len(df))
	for term, count := range df {
		if count >= v.minDF && count <= maxDF {
			kept = append(kept, term)
		}
	}
	if len(kept) == 0 {
		return ErrEmptyVocabulary
	}
	sort.Strings(kept) // stable indices across runs

	v.terms = kept
	v.vocab = make(map[string]int, len(kept))
	v.idf = make([]float64, len(kept))
	for i, term := range kept {
		v.vocab[term] = i
		v.idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}
	v.fitted = true
	return nil
}

// Fitted reports whether Fit has completed.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// VocabularySize returns the number of terms in the fitted vocabulary.
func (v *Vectorizer) VocabularySize() int { return len(v.terms) }

// Transform converts text into an L2-normalized sparse vector. Terms outside
// the vocabulary are ignored; the vocabulary is never extended here.
func (v *Vectorizer) Transform(text string) (Vector, error) {
	if !v.fitted {
		return nil, ErrNotFitted
	}

	counts := make(map[int]float64)
	total := 0
	for _, tok := range tokenizeDoc(text) {
		if idx, ok := v.vocab[tok]; ok {
			counts[idx]++
			total++
		}
	}
	if total == 0 {
		return Vector{}, nil
	}

	vec := make(Vector, len(counts))
	var sumSq float64
	for idx, count := range counts {
		w := (count / float64(total)) * v.idf[idx]
		if w < epsilon {
			continue
		}
		vec[idx] = w
		sumSq += w * w
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec, nil
}

// Similarity returns the cosine similarity of two vectors in [0,1].
// Zero-length vectors yield 0.
func Similarity(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for idx, wa := range a {
		na += wa * wa
		if wb, ok := b[idx]; ok {
			dot += wa * wb
		}
	}
	for _, wb := range b {
		nb += wb * wb
	}
	if na < epsilon || nb < epsilon {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if sim > 1 {
		sim = 1
	}
	if sim < 0 {
		sim = 0
	}
	return sim
}

// TopTerms returns the k highest-weighted vocabulary terms of text.
// Weight ties break alphabetically on term.
func (v *Vectorizer) TopTerms(text string, k int) ([]TermWeight, error) {
	return v.topTermsFiltered(text, k, nil)
}

// TechnicalTerms is TopTerms restricted to the technology vocabulary.
func (v *Vectorizer) TechnicalTerms(text string, k int) ([]TermWeight, error) {
	tech := lexicon.Tech()
	return v.topTermsFiltered(text, k, func(term string) bool { return tech.Has(term) })
}

// SoftSkills is TopTerms restricted to the soft-skill list.
func (v *Vectorizer) SoftSkills(text string, k int) ([]TermWeight, error) {
	soft := lexicon.SoftSkills()
	return v.topTermsFiltered(text, k, func(term string) bool { return soft.Has(term) })
}

func (v *Vectorizer) topTermsFiltered(text string, k int, keep func(string) bool) ([]TermWeight, error) {
	vec, err := v.Transform(text)
	if err != nil {
		return nil, err
	}
	out := make([]TermWeight, 0, len(vec))
	for idx, w := range vec {
		term := v.terms[idx]
		if keep != nil && !keep(term) {
			continue
		}
		out = append(out, TermWeight{Term: term, Weight: w})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Weight != out[j].Weight {
			return out[i].Weight > out[j].Weight
		}
		return out[i].Term < out[j].Term
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}

// Keyphrases extracts the top-k n-gram phrases (1 ≤ n ≤ 3) of text, scored by
// the sum of member-term weights. Phrases with no in-vocabulary member are
// dropped.
func (v *Vectorizer) Keyphrases(text string, k int) ([]TermWeight, error) {
	vec, err := v.Transform(text)
	if err != nil {
		return nil, err
	}
	tokens := tokenizeDoc(text)

	seen := make(map[string]bool)
	var phrases []TermWeight
	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i : i+n]
			var weight float64
			hit := false
			for _, tok := range gram {
				if idx, ok := v.vocab[tok]; ok {
					if w, ok := vec[idx]; ok {
						weight += w
						hit = true
					}
				}
			}
			if !hit {
				continue
			}
			phrase := strings.Join(gram, " ")
			if seen[phrase] {
				continue
			}
			seen[phrase] = true
			phrases = append(phrases, TermWeight{Term: phrase, Weight: weight})
		}
	}
	sort.Slice(phrases, func(i, j int) bool {
		if phrases[i].Weight != phrases[j].Weight {
			return phrases[i].Weight > phrases[j].Weight
		}
		return phrases[i].Term < phrases[j].Term
	})
	if k > 0 && len(phrases) > k {
		phrases = phrases[:k]
	}
	return phrases, nil
}
