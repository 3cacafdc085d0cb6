package synonyms

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectSentences(t *testing.T, c *CorpusReader, input string) [][]string {
	t.Helper()
	var sentences [][]string
	for s, err := range c.Sentences(strings.NewReader(input)) {
		require.NoError(t, err)
		sentences = append(sentences, s)
	}
	return sentences
}

func TestCorpusSentences(t *testing.T) {
	tests := []struct {
		name            string
		input           string
		sentencePerLine bool
		expected        [][]string
	}{
		{
			name:  "split on terminal punctuation",
			input: "The cat sat. The dog ran! Why? ",
			expected: [][]string{
				{"the", "cat", "sat"},
				{"the", "dog", "ran"},
				{"why"},
			},
		},
		{
			name:     "sentences span lines",
			input:    "The cat\nsat on\nthe mat.",
			expected: [][]string{{"the", "cat", "sat", "on", "the", "mat"}},
		},
		{
			name:     "empty sentences are skipped",
			input:    "... ?! Hello",
			expected: [][]string{{"hello"}},
		},
		{
			name:            "sentence per line",
			input:           "a b\n\nc d. e\n",
			sentencePerLine: true,
			expected:        [][]string{{"a", "b"}, {"c", "d", "e"}},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &CorpusReader{SentencePerLine: tt.sentencePerLine}
			assert.Equal(t, tt.expected, collectSentences(t, c, tt.input))
		})
	}
}

func TestCorpusEncoding(t *testing.T) {
	latin1 := []byte("Caf\xe9 ol\xe9. Na\xefve!")

	c := &CorpusReader{Encoding: "latin1"}
	var sentences [][]string
	for s, err := range c.Sentences(bytes.NewReader(latin1)) {
		require.NoError(t, err)
		sentences = append(sentences, s)
	}
	assert.Equal(t, [][]string{{"café", "olé"}, {"naïve"}}, sentences)

	c = &CorpusReader{Encoding: "windows-1252"}
	sentences = nil
	for s, err := range c.Sentences(bytes.NewReader([]byte("it\x92s fine"))) {
		require.NoError(t, err)
		sentences = append(sentences, s)
	}
	assert.Equal(t, [][]string{{"it's", "fine"}}, sentences)

	c = &CorpusReader{Encoding: "ebcdic"}
	var gotErr error
	for _, err := range c.Sentences(strings.NewReader("text")) {
		gotErr = err
	}
	assert.Error(t, gotErr)
}

func TestCorpusScanner(t *testing.T) {
	c := &CorpusReader{Tokenizer: TokenizerFunc(strings.Fields)}
	s, err := c.Scanner(strings.NewReader("Keep Case. As is"))
	require.NoError(t, err)

	var sentences [][]string
	for s.Scan() {
		sentences = append(sentences, s.Sentence())
	}
	require.NoError(t, s.Err())
	assert.Equal(t, [][]string{{"Keep", "Case"}, {"As", "is"}}, sentences)
	assert.Nil(t, s.Sentence())
}

func TestCorpusFile(t *testing.T) {
	path := writeTempFile(t, "corpus.txt", TestCorpus)
	c := &CorpusReader{}

	var sentences [][]string
	for s, err := range c.File(path) {
		require.NoError(t, err)
		sentences = append(sentences, s)
	}
	require.Len(t, sentences, 5)
	assert.Equal(t, []string{"the", "cat", "sat", "on", "the", "mat"}, sentences[0])

	var gotErr error
	for _, err := range c.File(path + ".missing") {
		gotErr = err
	}
	assert.Error(t, gotErr)

	// Stopping early is allowed
	n := 0
	for range c.File(path) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestSliceSource(t *testing.T) {
	src := SliceSource([][]string{{"a"}, {"b"}, {"c"}})

	var got []string
	for s, err := range src {
		require.NoError(t, err)
		got = append(got, s...)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestWordFrequencies(t *testing.T) {
	c := &CorpusReader{}
	input := "b a b. c b a"

	tests := []struct {
		name     string
		minFreq  int
		expected []WordFreq
	}{
		{"all words", 1, []WordFreq{{"b", 3}, {"a", 2}, {"c", 1}}},
		{"default min freq", 0, []WordFreq{{"b", 3}, {"a", 2}, {"c", 1}}},
		{"frequency filtering", 2, []WordFreq{{"b", 3}, {"a", 2}}},
		{"nothing frequent enough", 10, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.WordFrequencies(strings.NewReader(input), tt.minFreq)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("alphabetical on equal frequency", func(t *testing.T) {
		got, err := c.WordFrequencies(strings.NewReader("zebra apple mango"), 1)
		require.NoError(t, err)
		assert.Equal(t, []WordFreq{{"apple", 1}, {"mango", 1}, {"zebra", 1}}, got)
	})
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("disk on fire")
}

func TestCorpusReadError(t *testing.T) {
	c := &CorpusReader{}
	_, err := c.WordFrequencies(failingReader{}, 1)
	assert.ErrorContains(t, err, "disk on fire")
}

func TestCorpusBuildIntegration(t *testing.T) {
	path := writeTempFile(t, "corpus.txt", TestCorpus)
	c := &CorpusReader{}

	b, err := NewBuilder(Options{Window: 2, Stopwords: NewStopwordSet("the", "a")})
	require.NoError(t, err)
	for s, err := range c.File(path) {
		require.NoError(t, err)
		b.AddSentence(s)
	}
	table := b.Table()

	assert.False(t, table.Contains("the"))
	assert.Equal(t, int64(5), table.Info().Sentences)
	assert.Greater(t, CosineByWord(table, "cat", "dog"), 0.0)
	assert.Equal(t, int64(4), table.Frequency("cat"))
}
