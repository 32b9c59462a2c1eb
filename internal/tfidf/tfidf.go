package tfidf

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// DefaultMaxFeatures caps the vocabulary size.
const DefaultMaxFeatures = 1000

// Vectorizer is a TF-IDF vectorizer with a fixed vocabulary. Fit builds the
// vocabulary from the chunk corpus exactly once; Transform maps arbitrary
// text into the same space. Unknown terms are dropped, never added, so the
// vector space is stable for the life of the fitted model.
type Vectorizer struct {
	maxFeatures int
	terms       []string
	vocab       map[string]int
	idf         []float64

	tokenRe   *regexp.Regexp
	stopwords map[string]struct{}
}

// New creates an unfitted vectorizer. maxFeatures <= 0 uses DefaultMaxFeatures.
func New(maxFeatures int) *Vectorizer {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	return &Vectorizer{
		maxFeatures: maxFeatures,
		tokenRe:     regexp.MustCompile(`[a-z0-9]+(?:'[a-z]+)?`),
		stopwords:   englishStopwords(),
	}
}

// Fitted reports whether Fit has completed.
func (v *Vectorizer) Fitted() bool { return len(v.terms) > 0 }

// Dimension returns the vector dimensionality (the vocabulary size).
func (v *Vectorizer) Dimension() int { return len(v.terms) }

// Fit builds the vocabulary and IDF weights from the corpus. Calling Fit on
// an already-fitted vectorizer is an error: any corpus change requires a
// full rebuild, never a re-fit.
func (v *Vectorizer) Fit(corpus []string) error {
	if v.Fitted() {
		return errors.New("vectorizer is already fitted")
	}
	if len(corpus) == 0 {
		return errors.New("empty corpus")
	}

	// Document frequency per term.
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(doc) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return errors.New("corpus contains no indexable terms")
	}

	// Cap the vocabulary at maxFeatures, keeping the most frequent terms.
	// Ties break lexicographically so the fit is deterministic.
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool {
		if df[terms[i]] != df[terms[j]] {
			return df[terms[i]] > df[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.maxFeatures {
		terms = terms[:v.maxFeatures]
	}
	sort.Strings(terms)

	v.terms = terms
	v.vocab = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocab[term] = i
		// Smoothed IDF.
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	return nil
}

// Transform maps text into the fitted vector space. The result is
// L2-normalized; text with no known terms yields the zero vector.
func (v *Vectorizer) Transform(text string) []float64 {
	vec := make([]float64, len(v.terms))
	if !v.Fitted() {
		return vec
	}

	counts := make(map[int]int)
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocab[tok]; ok {
			counts[idx]++
		}
	}
	for idx, c := range counts {
		vec[idx] = float64(c) * v.idf[idx]
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

func (v *Vectorizer) tokenize(text string) []string {
	raw := v.tokenRe.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := v.stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// vectorizerState is the serialized form of a fitted vectorizer.
type vectorizerState struct {
	MaxFeatures int       `json:"max_features"`
	Terms       []string  `json:"terms"`
	IDF         []float64 `json:"idf"`
}

func (v *Vectorizer) MarshalJSON() ([]byte, error) {
	return json.Marshal(vectorizerState{
		MaxFeatures: v.maxFeatures,
		Terms:       v.terms,
		IDF:         v.idf,
	})
}

func (v *Vectorizer) UnmarshalJSON(data []byte) error {
	var st vectorizerState
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if len(st.Terms) != len(st.IDF) {
		return errors.New("corrupt vectorizer state: terms/idf length mismatch")
	}
	fresh := New(st.MaxFeatures)
	fresh.terms = st.Terms
	fresh.idf = st.IDF
	fresh.vocab = make(map[string]int, len(st.Terms))
	for i, term := range st.Terms {
		fresh.vocab[term] = i
	}
	*v = *fresh
	return nil
}

// englishStopwords returns common English terms excluded from the vocabulary.
func englishStopwords() map[string]struct{} {
	words := []string{
		"a", "about", "above", "after", "again", "all", "an", "and", "any",
		"are", "as", "at", "be", "because", "been", "before", "being",
		"below", "between", "both", "but", "by", "can", "did", "do", "does",
		"doing", "down", "during", "each", "few", "for", "from", "further",
		"had", "has", "have", "having", "he", "her", "here", "hers", "him",
		"his", "how", "i", "if", "in", "into", "is", "it", "its", "just",
		"me", "more", "most", "my", "no", "nor", "not", "now", "of", "off",
		"on", "once", "only", "or", "other", "our", "out", "over", "own",
		"same", "she", "should", "so", "some", "such", "than", "that", "the",
		"their", "them", "then", "there", "these", "they", "this", "those",
		"through", "to", "too", "under", "until", "up", "very", "was", "we",
		"were", "what", "when", "where", "which", "while", "who", "whom",
		"why", "will", "with", "you", "your", "yours",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
