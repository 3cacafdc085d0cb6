package synonyms

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	bleveunicode "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/registry"
	"golang.org/x/text/cases"
)

// Tokenizer turns a piece of raw text into normalized tokens.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) []string
}

// TokenizerFunc adapts a plain function to the Tokenizer interface
type TokenizerFunc func(text string) []string

// Tokenize calls f(text)
func (f TokenizerFunc) Tokenize(text string) []string {
	return f(text)
}

// Tokenizer names accepted by NewTokenizer
const (
	TokenizerSimple  = "simple"
	TokenizerUnicode = "unicode"
)

// TokenizerOptions configures SimpleTokenizer
type TokenizerOptions struct {
	Lowercase    bool // Case-fold tokens
	DigitsToZero bool // Normalize all digits to 0
	KeepHyphens  bool // Keep hyphenated words intact instead of splitting them
}

// DefaultTokenizerOptions case-folds and splits hyphenated words
func DefaultTokenizerOptions() TokenizerOptions {
	return TokenizerOptions{Lowercase: true}
}

// SimpleTokenizer splits text on everything that is not a letter, digit or
// intra-word apostrophe. Hyphens split words unless KeepHyphens is set.
type SimpleTokenizer struct {
	Options TokenizerOptions
}

// NewSimpleTokenizer creates a SimpleTokenizer
func NewSimpleTokenizer(options TokenizerOptions) *SimpleTokenizer {
	return &SimpleTokenizer{Options: options}
}

// Tokenize implements Tokenizer
func (t *SimpleTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	text = preprocessText(text)
	if t.Options.Lowercase {
		// Casers are stateful, so each call gets its own
		text = cases.Fold().String(text)
	}

	fields := strings.FieldsFunc(text, func(r rune) bool {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'':
			return false
		case r == '-':
			return !t.Options.KeepHyphens
		default:
			return true
		}
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f == "" {
			continue
		}
		if t.Options.DigitsToZero {
			f = digitsToZero(f)
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// textReplacer maps typographic characters to ASCII equivalents
var textReplacer = strings.NewReplacer(
	"“", "\"",
	"”", "\"",
	"‘", "'",
	"’", "'",
	"–", "-",
	"\u2014", " ",
	"−", "-",
	"…", " ",
	"--", " ",
)

// preprocessText normalizes quotes and dashes
func preprocessText(text string) string {
	return textReplacer.Replace(text)
}

// NormalizeWord folds a single word the way the default SimpleTokenizer
// folds corpus text, so hand-written words match corpus tokens.
func NormalizeWord(word string) string {
	return strings.TrimSpace(cases.Fold().String(preprocessText(word)))
}

// NormalizeWordWith normalizes word with tok when tok maps it to exactly one
// token, and falls back to NormalizeWord otherwise.
func NormalizeWordWith(tok Tokenizer, word string) string {
	if tok != nil {
		if tokens := tok.Tokenize(word); len(tokens) == 1 {
			return tokens[0]
		}
	}
	return NormalizeWord(word)
}

func digitsToZero(token string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return '0'
		}
		return r
	}, token)
}

// AnalyzerTokenizer tokenizes with a bleve analysis chain:
// unicode word segmentation, lowercasing and optionally English stop words.
type AnalyzerTokenizer struct {
	analyzer analysis.Analyzer
}

// NewAnalyzerTokenizer builds the bleve analysis chain
func NewAnalyzerTokenizer(removeStopwords bool) (*AnalyzerTokenizer, error) {
	cache := registry.NewCache()

	tokenizer, err := cache.TokenizerNamed(bleveunicode.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load unicode tokenizer: %w", err)
	}

	lower, err := cache.TokenFilterNamed(lowercase.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load lowercase filter: %w", err)
	}
	filters := []analysis.TokenFilter{lower}

	if removeStopwords {
		stop, err := cache.TokenFilterNamed(en.StopName)
		if err != nil {
			return nil, fmt.Errorf("failed to load stop word filter: %w", err)
		}
		filters = append(filters, stop)
	}

	return &AnalyzerTokenizer{
		analyzer: &analysis.DefaultAnalyzer{
			Tokenizer:    tokenizer,
			TokenFilters: filters,
		},
	}, nil
}

// Tokenize implements Tokenizer
func (t *AnalyzerTokenizer) Tokenize(text string) []string {
	if text == "" {
		return nil
	}
	stream := t.analyzer.Analyze([]byte(text))
	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		if len(tok.Term) > 0 {
			tokens = append(tokens, string(tok.Term))
		}
	}
	return tokens
}

// NewTokenizer returns a tokenizer by name: "simple" or "unicode" (bleve).
// removeStopwords only applies to the unicode tokenizer; the builder's
// stopword set is the general way to exclude words.
func NewTokenizer(name string, options TokenizerOptions, removeStopwords bool) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TokenizerSimple:
		return NewSimpleTokenizer(options), nil
	case TokenizerUnicode, "bleve":
		return NewAnalyzerTokenizer(removeStopwords)
	default:
		return nil, fmt.Errorf("unknown tokenizer %q (valid: %s, %s)", name, TokenizerSimple, TokenizerUnicode)
	}
}
