package synonyms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimpleTokenizer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		options  TokenizerOptions
		expected []string
	}{
		{
			name:     "Basic tokenization lowercases",
			input:    "Hello, World!",
			options:  DefaultTokenizerOptions(),
			expected: []string{"hello", "world"},
		},
		{
			name:     "Preserve case",
			input:    "Hello World",
			options:  TokenizerOptions{},
			expected: []string{"Hello", "World"},
		},
		{
			name:     "Contractions stay whole",
			input:    "Don't stop, it's fine",
			options:  DefaultTokenizerOptions(),
			expected: []string{"don't", "stop", "it's", "fine"},
		},
		{
			name:     "Smart apostrophes",
			input:    "It’s Anna’s",
			options:  DefaultTokenizerOptions(),
			expected: []string{"it's", "anna's"},
		},
		{
			name:     "Quotes are stripped",
			input:    "'quoted' “double”",
			options:  DefaultTokenizerOptions(),
			expected: []string{"quoted", "double"},
		},
		{
			name:     "Hyphens split by default",
			input:    "well-known state-of-the-art",
			options:  DefaultTokenizerOptions(),
			expected: []string{"well", "known", "state", "of", "the", "art"},
		},
		{
			name:     "Keep hyphens",
			input:    "well-known -dash- a--b",
			options:  TokenizerOptions{Lowercase: true, KeepHyphens: true},
			expected: []string{"well-known", "dash", "a", "b"},
		},
		{
			name:     "Em dash separates words",
			input:    "word\u2014another",
			options:  TokenizerOptions{Lowercase: true, KeepHyphens: true},
			expected: []string{"word", "another"},
		},
		{
			name:     "Digits to zero",
			input:    "In 1984 there were 3 cats",
			options:  TokenizerOptions{Lowercase: true, DigitsToZero: true},
			expected: []string{"in", "0000", "there", "were", "0", "cats"},
		},
		{
			name:     "Unicode letters",
			input:    "ÉCOLE naïve café",
			options:  DefaultTokenizerOptions(),
			expected: []string{"école", "naïve", "café"},
		},
		{
			name:     "Punctuation only",
			input:    "... !!! ???",
			options:  DefaultTokenizerOptions(),
			expected: []string{},
		},
		{
			name:     "Newlines and tabs",
			input:    "one\ntwo\tthree",
			options:  DefaultTokenizerOptions(),
			expected: []string{"one", "two", "three"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSimpleTokenizer(tt.options).Tokenize(tt.input)
			assert.Equal(t, tt.expected, got)
		})
	}

	assert.Nil(t, NewSimpleTokenizer(DefaultTokenizerOptions()).Tokenize(""))
}

func TestAnalyzerTokenizer(t *testing.T) {
	tok, err := NewAnalyzerTokenizer(false)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello", "world"}, tok.Tokenize("Hello, World!"))
	assert.Equal(t, []string{"the", "cat", "and", "the", "hat"}, tok.Tokenize("The cat and the hat."))
	assert.Nil(t, tok.Tokenize(""))

	stop, err := NewAnalyzerTokenizer(true)
	require.NoError(t, err)
	assert.Equal(t, []string{"cat", "hat"}, stop.Tokenize("The cat and the hat."))
}

func TestNewTokenizer(t *testing.T) {
	tok, err := NewTokenizer("", DefaultTokenizerOptions(), false)
	require.NoError(t, err)
	assert.IsType(t, &SimpleTokenizer{}, tok)

	tok, err = NewTokenizer("Unicode", DefaultTokenizerOptions(), false)
	require.NoError(t, err)
	assert.IsType(t, &AnalyzerTokenizer{}, tok)

	_, err = NewTokenizer("whitespace", DefaultTokenizerOptions(), false)
	assert.Error(t, err)
}

func TestTokenizerFunc(t *testing.T) {
	var tok Tokenizer = TokenizerFunc(strings.Fields)
	assert.Equal(t, []string{"A", "b"}, tok.Tokenize(" A b "))
}

func BenchmarkSimpleTokenizer(b *testing.B) {
	text := strings.Repeat(TestCorpus+" ", 100)
	tok := NewSimpleTokenizer(DefaultTokenizerOptions())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(text)
	}
}

func BenchmarkAnalyzerTokenizer(b *testing.B) {
	text := strings.Repeat(TestCorpus+" ", 100)
	tok, err := NewAnalyzerTokenizer(false)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tok.Tokenize(text)
	}
}
