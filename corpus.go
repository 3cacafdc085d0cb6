package synonyms

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"sort"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// maxSentenceBytes bounds a single sentence (or line) read from a corpus
const maxSentenceBytes = 16 * 1024 * 1024

// CorpusReader turns raw corpus text into tokenized sentences
type CorpusReader struct {
	Tokenizer       Tokenizer // nil uses a default SimpleTokenizer
	Encoding        string    // "utf-8" (default), "latin1"/"iso-8859-1" or "windows-1252"
	SentencePerLine bool      // Treat each line as a sentence instead of splitting on . ! ?
}

// lookupEncoding resolves an encoding name
func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1":
		return charmap.ISO8859_1, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

func (c *CorpusReader) tokenizer() Tokenizer {
	if c.Tokenizer != nil {
		return c.Tokenizer
	}
	return NewSimpleTokenizer(DefaultTokenizerOptions())
}

// scanSentences is a bufio.SplitFunc that ends sentences at '.', '!' or '?'
func scanSentences(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, ".!?"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	// Request more data
	return 0, nil, nil
}

// SentenceScanner reads tokenized sentences, skipping those without tokens
type SentenceScanner struct {
	scanner   *bufio.Scanner
	tokenizer Tokenizer
	sentence  []string
}

// Scanner returns a SentenceScanner over r
func (c *CorpusReader) Scanner(r io.Reader) (*SentenceScanner, error) {
	enc, err := lookupEncoding(c.Encoding)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(enc.NewDecoder().Reader(r))
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, maxSentenceBytes)
	if c.SentencePerLine {
		scanner.Split(bufio.ScanLines)
	} else {
		scanner.Split(scanSentences)
	}

	return &SentenceScanner{scanner: scanner, tokenizer: c.tokenizer()}, nil
}

// Scan advances to the next non-empty sentence
func (s *SentenceScanner) Scan() bool {
	for s.scanner.Scan() {
		tokens := s.tokenizer.Tokenize(s.scanner.Text())
		if len(tokens) > 0 {
			s.sentence = tokens
			return true
		}
	}
	s.sentence = nil
	return false
}

// Sentence returns the tokens of the current sentence
func (s *SentenceScanner) Sentence() []string {
	return s.sentence
}

// Err returns the first non-EOF error
func (s *SentenceScanner) Err() error {
	return s.scanner.Err()
}

// Sentences yields the sentences of r; a read error is yielded once as the
// final element
func (c *CorpusReader) Sentences(r io.Reader) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		s, err := c.Scanner(r)
		if err != nil {
			yield(nil, err)
			return
		}
		for s.Scan() {
			if !yield(s.Sentence(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// File yields the sentences of a corpus file
func (c *CorpusReader) File(filename string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		f, err := os.Open(filename)
		if err != nil {
			yield(nil, err)
			return
		}
		defer f.Close()

		for s, err := range c.Sentences(f) {
			if err != nil {
				yield(nil, fmt.Errorf("%s: %w", filename, err))
				return
			}
			if !yield(s, nil) {
				return
			}
		}
	}
}

// SliceSource adapts in-memory sentences to the sequence type corpus readers produce
func SliceSource(sentences [][]string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		for _, s := range sentences {
			if !yield(s, nil) {
				return
			}
		}
	}
}

// WordFreq is a word with its corpus frequency
type WordFreq struct {
	Word string
	Freq int
}

// WordFrequencies counts tokens in r, keeping words seen at least minFreq
// times, sorted by descending frequency then alphabetically
func (c *CorpusReader) WordFrequencies(r io.Reader, minFreq int) ([]WordFreq, error) {
	if minFreq <= 0 {
		minFreq = 1
	}

	wordCount := make(map[string]int)
	for sentence, err := range c.Sentences(r) {
		if err != nil {
			return nil, err
		}
		for _, token := range sentence {
			wordCount[token]++
		}
	}

	// Filter by minimum frequency and create result
	var result []WordFreq
	for word, freq := range wordCount {
		if freq >= minFreq {
			result = append(result, WordFreq{Word: word, Freq: freq})
		}
	}

	// Sort by descending frequency, for equal frequency - alphabetically
	sort.Slice(result, func(i, j int) bool {
		if result[i].Freq != result[j].Freq {
			return result[i].Freq > result[j].Freq
		}
		return result[i].Word < result[j].Word
	})

	return result, nil
}
