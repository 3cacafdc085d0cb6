package synonyms

import (
	"iter"
	"maps"
	"slices"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// BuildInfo records the parameters a table was built with
type BuildInfo struct {
	Window    int       // Context window radius (0 for sentence context)
	Weighting Weighting // Weight added per co-occurrence
	Context   Context   // Window or whole-sentence context
	Tokens    int64     // Number of tokens that took part in the build
	Sentences int64     // Number of sentences fed to the builder
}

// Descriptor is the sparse semantic descriptor of a single word.
// Keys absent from the descriptor have weight zero; every stored weight is > 0.
// A Descriptor is immutable once built and safe for concurrent reads.
type Descriptor struct {
	word    string
	keys    []string // Context words, sorted ascending
	weights []float64
	index   map[string]int
	norm    float64
}

// newDescriptor freezes a context -> weight mapping, dropping non-positive weights
func newDescriptor(word string, counts map[string]float64) *Descriptor {
	keys := make([]string, 0, len(counts))
	for k, v := range counts {
		if v > 0 {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	d := &Descriptor{
		word:    word,
		keys:    keys,
		weights: make([]float64, len(keys)),
		index:   make(map[string]int, len(keys)),
	}
	for i, k := range keys {
		d.weights[i] = counts[k]
		d.index[k] = i
	}
	if len(d.weights) > 0 {
		d.norm = floats.Norm(d.weights, 2)
	}
	return d
}

// Word returns the word this descriptor belongs to
func (d *Descriptor) Word() string {
	if d == nil {
		return ""
	}
	return d.word
}

// Weight returns the co-occurrence weight for a context word (0 when absent)
func (d *Descriptor) Weight(context string) float64 {
	if d == nil {
		return 0
	}
	if i, ok := d.index[context]; ok {
		return d.weights[i]
	}
	return 0
}

// Len returns the number of non-zero entries
func (d *Descriptor) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Norm returns the cached Euclidean norm
func (d *Descriptor) Norm() float64 {
	if d == nil {
		return 0
	}
	return d.norm
}

// All iterates over the entries in ascending context-word order
func (d *Descriptor) All() iter.Seq2[string, float64] {
	return func(yield func(string, float64) bool) {
		if d == nil {
			return
		}
		for i, k := range d.keys {
			if !yield(k, d.weights[i]) {
				return
			}
		}
	}
}

// Map returns a copy of the descriptor as a plain map
func (d *Descriptor) Map() map[string]float64 {
	m := make(map[string]float64, d.Len())
	for k, v := range d.All() {
		m[k] = v
	}
	return m
}

// Table is an immutable collection of descriptors, one per known word.
// It is built once by a Builder and then shared read-only.
type Table struct {
	descriptors map[string]*Descriptor
	frequency   map[string]int64
	info        BuildInfo
}

func newTable(counts cooccurrence, frequency map[string]int64, info BuildInfo) *Table {
	t := &Table{
		descriptors: make(map[string]*Descriptor, len(counts)),
		frequency:   make(map[string]int64, len(frequency)),
		info:        info,
	}
	for word, row := range counts {
		t.descriptors[word] = newDescriptor(word, row)
	}
	maps.Copy(t.frequency, frequency)
	return t
}

// Lookup returns the descriptor of a word; ok is false for out-of-vocabulary words
func (t *Table) Lookup(word string) (*Descriptor, bool) {
	if t == nil {
		return nil, false
	}
	d, ok := t.descriptors[word]
	return d, ok
}

// Contains reports whether the word is in the vocabulary
func (t *Table) Contains(word string) bool {
	_, ok := t.Lookup(word)
	return ok
}

// Len returns the vocabulary size
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.descriptors)
}

// Vocabulary returns the known words in ascending order
func (t *Table) Vocabulary() []string {
	if t == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(t.descriptors))
}

// Frequency returns how many times the word was seen as a focus token
func (t *Table) Frequency(word string) int64 {
	if t == nil {
		return 0
	}
	return t.frequency[word]
}

// Info returns the build parameters
func (t *Table) Info() BuildInfo {
	if t == nil {
		return BuildInfo{}
	}
	return t.info
}

// Entries returns the number of non-zero (word, context) cells
func (t *Table) Entries() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, d := range t.descriptors {
		n += d.Len()
	}
	return n
}

// Merge sums tables cell by cell into a new table.
// Merging is commutative and associative, so partitions built independently
// combine into the same table a single pass over all of them would produce.
// The resulting BuildInfo keeps the parameters of the first non-nil table.
func Merge(tables ...*Table) *Table {
	counts := make(cooccurrence)
	frequency := make(map[string]int64)
	var info BuildInfo
	first := true

	for _, t := range tables {
		if t == nil {
			continue
		}
		if first {
			info = t.info
			info.Tokens, info.Sentences = 0, 0
			first = false
		}
		info.Tokens += t.info.Tokens
		info.Sentences += t.info.Sentences

		// Sorted order keeps floating-point sums reproducible
		for _, word := range t.Vocabulary() {
			row := counts.row(word)
			for k, v := range t.descriptors[word].All() {
				row[k] += v
			}
		}
		for word, n := range t.frequency {
			frequency[word] += n
		}
	}

	return newTable(counts, frequency, info)
}
