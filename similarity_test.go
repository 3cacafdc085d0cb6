package synonyms

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomDescriptor(rng *rand.Rand, word string) *Descriptor {
	counts := make(map[string]float64)
	for range rng.Intn(12) {
		counts[testVocabulary[rng.Intn(len(testVocabulary))]] += rng.Float64()*10 + 0.01
	}
	return newDescriptor(word, counts)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     map[string]float64
		expected float64
	}{
		{
			name:     "partial overlap",
			a:        map[string]float64{"a": 1, "b": 2, "c": 3},
			b:        map[string]float64{"b": 4, "c": 5, "d": 6},
			expected: 23 / (math.Sqrt(14) * math.Sqrt(77)),
		},
		{
			name:     "identical",
			a:        map[string]float64{"a": 1, "b": 2},
			b:        map[string]float64{"a": 1, "b": 2},
			expected: 1,
		},
		{
			name:     "scaled",
			a:        map[string]float64{"a": 1, "b": 2},
			b:        map[string]float64{"a": 3, "b": 6},
			expected: 1,
		},
		{
			name:     "disjoint",
			a:        map[string]float64{"a": 1},
			b:        map[string]float64{"b": 1},
			expected: 0,
		},
		{
			name:     "empty",
			a:        map[string]float64{"a": 1},
			b:        map[string]float64{},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := newDescriptor("a", tt.a), newDescriptor("b", tt.b)
			got := Cosine(a, b)
			assert.InDelta(t, tt.expected, got, TestEpsilon)
			assert.LessOrEqual(t, got, 1.0)
			assert.Equal(t, got, Cosine(b, a))
		})
	}
}

func TestCosineZeroVector(t *testing.T) {
	d := newDescriptor("d", map[string]float64{"x": 2})
	empty := newDescriptor("empty", nil)

	for _, got := range []float64{
		Cosine(d, empty),
		Cosine(empty, d),
		Cosine(empty, empty),
		Cosine(nil, d),
		Cosine(d, nil),
		Cosine(nil, nil),
	} {
		assert.False(t, math.IsNaN(got))
		assert.Equal(t, 0.0, got)
	}
}

func TestSelfSimilarity(t *testing.T) {
	table, err := BuildSentences(slices.Values(randomSentences(11, 100)), Options{Window: 2, Weighting: WeightInverseDistance})
	require.NoError(t, err)

	for _, w := range table.Vocabulary() {
		d, _ := table.Lookup(w)
		if d.Norm() == 0 {
			continue
		}
		sim := CosineByWord(table, w, w)
		assert.InDelta(t, 1.0, sim, 1e-12, w)
		assert.LessOrEqual(t, sim, 1.0, w)
	}
}

func TestCosineSymmetryProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("cosine is exactly symmetric and within [0, 1]", prop.ForAll(
		func(seed int64) bool {
			rng := rand.New(rand.NewSource(seed))
			a, b := randomDescriptor(rng, "a"), randomDescriptor(rng, "b")
			ab, ba := Cosine(a, b), Cosine(b, a)
			return ab == ba && ab >= 0 && ab <= 1 && !math.IsNaN(ab)
		},
		gen.Int64Range(1, 1<<40),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestScorer(t *testing.T) {
	table, err := BuildSentences(slices.Values(randomSentences(5, 80)), Options{Window: 2, Weighting: WeightInverseDistance})
	require.NoError(t, err)

	plain, err := NewScorer(table)
	require.NoError(t, err)
	cached, err := NewScorer(table, WithCache(8))
	require.NoError(t, err)

	vocab := append(table.Vocabulary(), "zzzznotaword")
	for round := 0; round < 2; round++ {
		for _, a := range vocab {
			for _, b := range vocab {
				want := CosineByWord(table, a, b)
				assert.Equal(t, want, plain.Similarity(a, b), "%s/%s", a, b)
				assert.Equal(t, want, cached.Similarity(a, b), "%s/%s", a, b)
				assert.Equal(t, cached.Similarity(a, b), cached.Similarity(b, a))
			}
		}
	}

	assert.Same(t, table, cached.Table())
	assert.True(t, cached.Contains("cat"))
	assert.False(t, cached.Contains("zzzznotaword"))
}

func TestScorerOptions(t *testing.T) {
	table := exampleTable(t)

	_, err := NewScorer(table, WithSimilarity(nil))
	assert.Error(t, err)

	s, err := NewScorer(table, WithCache(0))
	require.NoError(t, err)
	assert.Nil(t, s.cache)

	constant := func(a, b *Descriptor) float64 { return 0.25 }
	s, err = NewScorer(table, WithSimilarity(constant), WithCache(4))
	require.NoError(t, err)
	assert.Equal(t, 0.25, s.Similarity("dog", "fast"))
	assert.Equal(t, 0.0, s.Similarity("dog", "unknown"), "unknown words never reach the similarity function")
}

func TestScorerConcurrent(t *testing.T) {
	table := exampleTable(t)
	s, err := NewScorer(table, WithCache(2))
	require.NoError(t, err)
	want := CosineByWord(table, "dog", "fast")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				assert.Equal(t, want, s.Similarity("dog", "fast"))
				s.Similarity("runs", "eats")
			}
		}()
	}
	wg.Wait()
}

func TestNearest(t *testing.T) {
	table := exampleTable(t)
	s, err := NewScorer(table)
	require.NoError(t, err)

	got := s.Nearest("dog", 10)
	require.Len(t, got, 3)
	for i, ws := range got {
		assert.NotEqual(t, "dog", ws.Word)
		assert.Greater(t, ws.Score, 0.0)
		if i > 0 {
			prev := got[i-1]
			assert.True(t, prev.Score > ws.Score || (prev.Score == ws.Score && prev.Word < ws.Word),
				"results are ordered by score then word: %v", got)
		}
	}
	assert.Equal(t, "fast", got[0].Word)
	assert.InDelta(t, 2.0/3.0, got[0].Score, TestEpsilon)

	assert.Len(t, s.Nearest("dog", 1), 1)
	assert.Nil(t, s.Nearest("dog", 0))
	assert.Nil(t, s.Nearest("zzzznotaword", 5))
}

func BenchmarkCosine(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	descriptors := make([]*Descriptor, 100)
	for i := range descriptors {
		descriptors[i] = randomDescriptor(rng, fmt.Sprintf("w%d", i))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Cosine(descriptors[i%100], descriptors[(i+1)%100])
	}
}

func BenchmarkScorerCached(b *testing.B) {
	table, err := BuildSentences(slices.Values(randomSentences(1, 500)), DefaultOptions())
	if err != nil {
		b.Fatal(err)
	}
	s, err := NewScorer(table, WithCache(1024))
	if err != nil {
		b.Fatal(err)
	}
	vocab := table.Vocabulary()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Similarity(vocab[i%len(vocab)], vocab[(i+3)%len(vocab)])
	}
}
