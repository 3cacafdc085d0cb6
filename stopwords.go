package synonyms

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
)

// StopwordSet is a set of tokens excluded from descriptor building.
// The zero value is an empty set.
type StopwordSet map[string]struct{}

// NewStopwordSet creates a set from the given words
func NewStopwordSet(words ...string) StopwordSet {
	s := make(StopwordSet, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Contains reports whether the token is a stopword
func (s StopwordSet) Contains(token string) bool {
	if s == nil {
		return false
	}
	_, ok := s[token]
	return ok
}

// Len returns the number of stopwords
func (s StopwordSet) Len() int {
	return len(s)
}

// EnglishStopwords returns bleve's English stop list
func EnglishStopwords() (StopwordSet, error) {
	tm := analysis.NewTokenMap()
	if err := tm.LoadBytes(en.EnglishStopWords); err != nil {
		return nil, fmt.Errorf("failed to load english stop words: %w", err)
	}
	s := make(StopwordSet, len(tm))
	for w := range tm {
		s[w] = struct{}{}
	}
	return s, nil
}

// ReadStopwords reads one stopword per line; blank lines and '#' comments are skipped
func ReadStopwords(r io.Reader) (StopwordSet, error) {
	s := make(StopwordSet)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, w := range strings.Fields(line) {
			s[strings.ToLower(w)] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading stopwords: %w", err)
	}
	return s, nil
}

// LoadStopwords resolves a stopword source: "" or "none" for no
// stopwords, "english" for the built-in list, anything else is a file path.
func LoadStopwords(source string) (StopwordSet, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "", "none":
		return nil, nil
	case "english", "en":
		return EnglishStopwords()
	}

	f, err := os.Open(source)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadStopwords(f)
}
