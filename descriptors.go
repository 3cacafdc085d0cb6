// Package synonyms builds sparse semantic descriptors for words from
// co-occurrence statistics of a text corpus, and answers multiple-choice
// synonym questions by ranking candidates with cosine similarity.
package synonyms

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"
)

// Defaults
const (
	DefaultWindow        = 4     // Context window radius
	DefaultProgressEvery = 10000 // Sentences between progress callbacks
)

var (
	ErrInvalidWindow    = errors.New("window radius must be at least 1")
	ErrUnknownWeighting = errors.New("unknown weighting")
	ErrUnknownContext   = errors.New("unknown context mode")
)

// Weighting selects how much a single co-occurrence contributes
type Weighting int

const (
	// WeightUniform adds 1 per co-occurrence inside the window
	WeightUniform Weighting = iota
	// WeightInverseDistance adds 1/d for neighbours at distance d (GloVe style)
	WeightInverseDistance
)

func (w Weighting) String() string {
	switch w {
	case WeightUniform:
		return "uniform"
	case WeightInverseDistance:
		return "inverse-distance"
	default:
		return fmt.Sprintf("Weighting(%d)", int(w))
	}
}

// ParseWeighting converts a configuration string to a Weighting
func ParseWeighting(s string) (Weighting, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform", "count":
		return WeightUniform, nil
	case "inverse-distance", "inverse", "1/d", "harmonic":
		return WeightInverseDistance, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: uniform, inverse-distance)", ErrUnknownWeighting, s)
	}
}

// Context selects which neighbours count as co-occurring with a focus word
type Context int

const (
	// ContextWindow counts tokens within Window positions of the focus token
	ContextWindow Context = iota
	// ContextSentence counts every distinct word sharing the sentence, once per sentence
	ContextSentence
)

func (c Context) String() string {
	switch c {
	case ContextWindow:
		return "window"
	case ContextSentence:
		return "sentence"
	default:
		return fmt.Sprintf("Context(%d)", int(c))
	}
}

// ParseContext converts a configuration string to a Context
func ParseContext(s string) (Context, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "window":
		return ContextWindow, nil
	case "sentence":
		return ContextSentence, nil
	default:
		return 0, fmt.Errorf("%w %q (valid: window, sentence)", ErrUnknownContext, s)
	}
}

// BuildProgress contains information about the current build progress
type BuildProgress struct {
	Sentences  int64         // Sentences processed so far
	Tokens     int64         // Tokens counted so far (after exclusion)
	Vocabulary int           // Distinct words seen so far
	Elapsed    time.Duration // Time since the builder was created
}

// ProgressCallback is a function type for receiving build progress updates
type ProgressCallback func(progress BuildProgress)

// Options controls how descriptors are accumulated
type Options struct {
	Window    int       // Context window radius, >= 1 for ContextWindow
	Weighting Weighting // Fixed weighting policy for the whole build, uniform under ContextSentence
	Context   Context   // Window or sentence context

	// Exclusion: tokens shorter than MinLength runes or in Stopwords are
	// dropped before windowing, so they are neither focus nor neighbour.
	MinLength int
	Stopwords StopwordSet

	Progress      ProgressCallback // Optional
	ProgressEvery int              // Sentences between callbacks (0 uses DefaultProgressEvery)
}

// DefaultOptions returns uniform weighting over a window of radius DefaultWindow
func DefaultOptions() Options {
	return Options{
		Window:    DefaultWindow,
		Weighting: WeightUniform,
		Context:   ContextWindow,
	}
}

func (o Options) validate() error {
	switch o.Context {
	case ContextWindow:
		if o.Window < 1 {
			return fmt.Errorf("%w, got %d", ErrInvalidWindow, o.Window)
		}
	case ContextSentence:
	default:
		return fmt.Errorf("%w %d", ErrUnknownContext, int(o.Context))
	}
	if o.Weighting != WeightUniform && o.Weighting != WeightInverseDistance {
		return fmt.Errorf("%w %d", ErrUnknownWeighting, int(o.Weighting))
	}
	return nil
}

// buildInfo records the parameters the build actually applies.
// Sentence context has no distance, so it always counts uniformly.
func (o Options) buildInfo() BuildInfo {
	info := BuildInfo{Window: o.Window, Weighting: o.Weighting, Context: o.Context}
	if o.Context == ContextSentence {
		info.Window = 0
		info.Weighting = WeightUniform
	}
	return info
}

// cooccurrence is the build-time accumulator: word -> context word -> weight.
// A missing row or cell means zero. Cells are only ever incremented.
type cooccurrence map[string]map[string]float64

// row returns the row for word, creating it if needed
func (c cooccurrence) row(word string) map[string]float64 {
	r, ok := c[word]
	if !ok {
		r = make(map[string]float64)
		c[word] = r
	}
	return r
}

// Builder accumulates co-occurrence counts sentence by sentence.
// A Builder is not safe for concurrent use; build partitions with separate
// builders and Merge the resulting tables.
type Builder struct {
	opts      Options
	counts    cooccurrence
	frequency map[string]int64
	tokens    int64
	sentences int64
	start     time.Time
}

// NewBuilder creates a builder after validating the options
func NewBuilder(opts Options) (*Builder, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	return &Builder{
		opts:      opts,
		counts:    make(cooccurrence, 1<<10),
		frequency: make(map[string]int64, 1<<10),
		start:     time.Now(),
	}, nil
}

// excluded reports whether a token is filtered out of the build
func (b *Builder) excluded(token string) bool {
	if token == "" {
		return true
	}
	if b.opts.MinLength > 0 && utf8.RuneCountInString(token) < b.opts.MinLength {
		return true
	}
	return b.opts.Stopwords.Contains(token)
}

// weight returns the contribution of a co-occurrence at the given distance
func (b *Builder) weight(distance int) float64 {
	if b.opts.Weighting == WeightInverseDistance {
		return 1.0 / float64(distance)
	}
	return 1.0
}

// AddTokens consumes one sentence given as a lazy token sequence.
// Windows never reach across calls.
func (b *Builder) AddTokens(tokens iter.Seq[string]) {
	var (
		recent   []string            // last Window accepted tokens (window context)
		seen     map[string]struct{} // distinct words so far (sentence context)
		distinct []string
	)
	if b.opts.Context == ContextSentence {
		seen = make(map[string]struct{})
	}

	for token := range tokens {
		if b.excluded(token) {
			continue
		}
		b.tokens++
		b.frequency[token]++
		row := b.counts.row(token)

		switch b.opts.Context {
		case ContextWindow:
			// Left context only; adding both directions covers the right context
			n := len(recent)
			for k, prev := range recent {
				w := b.weight(n - k)
				row[prev] += w
				b.counts[prev][token] += w
			}
			if len(recent) == b.opts.Window {
				copy(recent, recent[1:])
				recent = recent[:len(recent)-1]
			}
			recent = append(recent, token)

		case ContextSentence:
			if _, ok := seen[token]; ok {
				continue
			}
			for _, prev := range distinct {
				row[prev]++
				b.counts[prev][token]++
			}
			seen[token] = struct{}{}
			distinct = append(distinct, token)
		}
	}

	b.sentences++
	if b.opts.Progress != nil && b.sentences%int64(b.opts.ProgressEvery) == 0 {
		b.opts.Progress(b.progress())
	}
}

// AddSentence consumes one tokenized sentence
func (b *Builder) AddSentence(tokens []string) {
	b.AddTokens(slices.Values(tokens))
}

func (b *Builder) progress() BuildProgress {
	return BuildProgress{
		Sentences:  b.sentences,
		Tokens:     b.tokens,
		Vocabulary: len(b.counts),
		Elapsed:    time.Since(b.start),
	}
}

// Table freezes the accumulated counts into an immutable Table.
// The builder can keep accepting sentences; later tables include them.
func (b *Builder) Table() *Table {
	info := b.opts.buildInfo()
	info.Tokens, info.Sentences = b.tokens, b.sentences
	return newTable(b.counts, b.frequency, info)
}

// Build builds a table from a single token stream treated as one sentence.
// An empty stream yields an empty table.
func Build(tokens iter.Seq[string], opts Options) (*Table, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	b.AddTokens(tokens)
	return b.Table(), nil
}

// BuildSentences builds a table from a sequence of tokenized sentences
func BuildSentences(sentences iter.Seq[[]string], opts Options) (*Table, error) {
	b, err := NewBuilder(opts)
	if err != nil {
		return nil, err
	}
	for s := range sentences {
		b.AddSentence(s)
	}
	return b.Table(), nil
}

// BuildParallel builds each partition on its own builder and merges the
// results. Partitions must split the corpus at sentence boundaries; the
// result then equals a single BuildSentences pass over all of them, exactly
// for uniform weights and up to summation order for inverse-distance weights.
// The first read error or context cancellation aborts the build.
// Progress callbacks are not delivered for partitioned builds.
func BuildParallel(ctx context.Context, partitions []iter.Seq2[[]string, error], opts Options, workers int) (*Table, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	opts.Progress = nil

	tables := make([]*Table, len(partitions))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, part := range partitions {
		g.Go(func() error {
			b, err := NewBuilder(opts)
			if err != nil {
				return err
			}
			for s, err := range part {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				b.AddSentence(s)
			}
			tables[i] = b.Table()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := Merge(tables...)
	info := opts.buildInfo()
	info.Tokens, info.Sentences = t.info.Tokens, t.info.Sentences
	t.info = info
	return t, nil
}
