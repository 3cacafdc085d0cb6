package synonyms

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// SimilarityFunc scores two descriptors
type SimilarityFunc func(a, b *Descriptor) float64

// Cosine computes cosine similarity between two sparse descriptors.
// It iterates the smaller descriptor and looks keys up in the larger one.
// Nil or zero-norm descriptors score 0. The dot product is accumulated over
// the shared keys in ascending order whichever argument comes first, so
// Cosine(a, b) == Cosine(b, a) exactly.
func Cosine(a, b *Descriptor) float64 {
	if a.Norm() == 0 || b.Norm() == 0 {
		return 0
	}

	small, large := a, b
	if large.Len() < small.Len() {
		small, large = large, small
	}

	dot := 0.0
	for i, k := range small.keys {
		if j, ok := large.index[k]; ok {
			dot += small.weights[i] * large.weights[j]
		}
	}
	if dot == 0 {
		return 0
	}

	sim := dot / (a.norm * b.norm)
	if sim > 1 {
		sim = 1
	}
	return sim
}

// CosineByWord looks both words up and returns their cosine similarity.
// Out-of-vocabulary words score 0.
func CosineByWord(t *Table, a, b string) float64 {
	da, ok := t.Lookup(a)
	if !ok {
		return 0
	}
	db, ok := t.Lookup(b)
	if !ok {
		return 0
	}
	return Cosine(da, db)
}

// WordScorer is what the selector and evaluator need from a similarity source
type WordScorer interface {
	Similarity(a, b string) float64
	Contains(word string) bool
}

// Similarity implements WordScorer using cosine similarity
func (t *Table) Similarity(a, b string) float64 {
	return CosineByWord(t, a, b)
}

// wordPair is an unordered pair of words used as a cache key
type wordPair struct {
	a, b string
}

func makePair(a, b string) wordPair {
	if b < a {
		a, b = b, a
	}
	return wordPair{a, b}
}

// ScorerOption configures a Scorer
type ScorerOption func(*Scorer) error

// WithSimilarity replaces cosine with another symmetric similarity function
func WithSimilarity(fn SimilarityFunc) ScorerOption {
	return func(s *Scorer) error {
		if fn == nil {
			return fmt.Errorf("similarity function is nil")
		}
		s.similarity = fn
		return nil
	}
}

// WithCache keeps up to size pair scores in an LRU cache
func WithCache(size int) ScorerOption {
	return func(s *Scorer) error {
		if size <= 0 {
			s.cache = nil
			return nil
		}
		cache, err := lru.New[wordPair, float64](size)
		if err != nil {
			return fmt.Errorf("failed to create score cache: %w", err)
		}
		s.cache = cache
		return nil
	}
}

// Scorer scores word pairs against a table.
// It is safe for concurrent use; the cache is internally synchronized.
type Scorer struct {
	table      *Table
	similarity SimilarityFunc
	cache      *lru.Cache[wordPair, float64]
}

// NewScorer creates a cosine scorer over the table
func NewScorer(t *Table, opts ...ScorerOption) (*Scorer, error) {
	s := &Scorer{
		table:      t,
		similarity: Cosine,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Table returns the underlying table
func (s *Scorer) Table() *Table {
	return s.table
}

// Contains reports whether the word is in the vocabulary
func (s *Scorer) Contains(word string) bool {
	return s.table.Contains(word)
}

// Similarity returns the score for a pair of words, 0 if either is unknown
func (s *Scorer) Similarity(a, b string) float64 {
	da, ok := s.table.Lookup(a)
	if !ok {
		return 0
	}
	db, ok := s.table.Lookup(b)
	if !ok {
		return 0
	}

	if s.cache == nil {
		return s.similarity(da, db)
	}
	key := makePair(a, b)
	if v, ok := s.cache.Get(key); ok {
		return v
	}
	// Score in key order so cached and uncached results agree
	var v float64
	if key.a == a {
		v = s.similarity(da, db)
	} else {
		v = s.similarity(db, da)
	}
	s.cache.Add(key, v)
	return v
}

// WordScore pairs a word with its similarity score
type WordScore struct {
	Word  string
	Score float64
}

// Nearest returns up to n vocabulary words most similar to word, excluding
// the word itself. Ties are ordered alphabetically. Unknown words yield nil.
func (s *Scorer) Nearest(word string, n int) []WordScore {
	target, ok := s.table.Lookup(word)
	if !ok || n <= 0 {
		return nil
	}

	var similarities []WordScore
	for other, d := range s.table.descriptors {
		if other == word {
			continue
		}
		sim := s.similarity(target, d)
		if sim <= 0 {
			continue
		}
		similarities = append(similarities, WordScore{other, sim})
	}

	// Sort by descending similarity
	sort.Slice(similarities, func(i, j int) bool {
		if similarities[i].Score != similarities[j].Score {
			return similarities[i].Score > similarities[j].Score
		}
		return similarities[i].Word < similarities[j].Word
	})

	if len(similarities) > n {
		similarities = similarities[:n]
	}
	return similarities
}
