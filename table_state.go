package synonyms

import (
	"bufio"
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

// stateVersion is bumped whenever TableState changes incompatibly
const stateVersion = 1

// TableState contains the complete state of a Table for gob serialization
type TableState struct {
	Version int
	Info    BuildInfo

	// Vocabulary data, sorted by word
	Words     []string
	Frequency []int64

	// Descriptor rows, parallel to Words
	Contexts [][]string
	Weights  [][]float64
}

// State exports the table into its serializable form.
// The returned rows are copies, so changing them leaves the table intact.
func (t *Table) State() TableState {
	words := t.Vocabulary()
	state := TableState{
		Version:   stateVersion,
		Info:      t.info,
		Words:     words,
		Frequency: make([]int64, len(words)),
		Contexts:  make([][]string, len(words)),
		Weights:   make([][]float64, len(words)),
	}
	for i, w := range words {
		d := t.descriptors[w]
		state.Frequency[i] = t.frequency[w]
		state.Contexts[i] = slices.Clone(d.keys)
		state.Weights[i] = slices.Clone(d.weights)
	}
	return state
}

// TableFromState rebuilds a table, validating the invariants of the state
func TableFromState(state TableState) (*Table, error) {
	if state.Version != stateVersion {
		return nil, fmt.Errorf("unsupported table state version %d", state.Version)
	}
	n := len(state.Words)
	if len(state.Frequency) != n || len(state.Contexts) != n || len(state.Weights) != n {
		return nil, fmt.Errorf("inconsistent table state: %d words, %d frequencies, %d rows, %d weight rows",
			n, len(state.Frequency), len(state.Contexts), len(state.Weights))
	}

	counts := make(cooccurrence, n)
	frequency := make(map[string]int64, n)
	for i, w := range state.Words {
		if _, dup := counts[w]; dup {
			return nil, fmt.Errorf("duplicate word %q in table state", w)
		}
		if len(state.Contexts[i]) != len(state.Weights[i]) {
			return nil, fmt.Errorf("word %q: %d contexts but %d weights", w, len(state.Contexts[i]), len(state.Weights[i]))
		}
		row := counts.row(w)
		for j, c := range state.Contexts[i] {
			if state.Weights[i][j] <= 0 {
				return nil, fmt.Errorf("word %q: non-positive weight %v for %q", w, state.Weights[i][j], c)
			}
			row[c] = state.Weights[i][j]
		}
		frequency[w] = state.Frequency[i]
	}

	return newTable(counts, frequency, state.Info), nil
}

// EncodeTable writes the table to w using gob encoding
func EncodeTable(w io.Writer, t *Table) error {
	return gob.NewEncoder(w).Encode(t.State())
}

// DecodeTable reads a gob-encoded table from r
func DecodeTable(r io.Reader) (*Table, error) {
	var state TableState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, err
	}
	return TableFromState(state)
}

// SaveTable saves the table to a file using gob encoding
func SaveTable(filename string, t *Table) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	writer := bufio.NewWriter(file)
	if err := EncodeTable(writer, t); err != nil {
		file.Close()
		return err
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// LoadTable loads a gob-encoded table from a file
func LoadTable(filename string) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return DecodeTable(bufio.NewReader(file))
}

// WriteText writes one line per word:
//
//	word frequency context:weight context:weight ...
//
// Words and contexts are in ascending order.
func WriteText(w io.Writer, t *Table) error {
	writer := bufio.NewWriter(w)
	for _, word := range t.Vocabulary() {
		fmt.Fprintf(writer, "%s %d", word, t.frequency[word])
		for c, v := range t.descriptors[word].All() {
			fmt.Fprintf(writer, " %s:%s", c, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if _, err := writer.WriteString("\n"); err != nil {
			return err
		}
	}
	return writer.Flush()
}

// ReadText reads a table written by WriteText.
// The build parameters are not part of the text format and come back empty.
func ReadText(r io.Reader) (*Table, error) {
	counts := make(cooccurrence)
	frequency := make(map[string]int64)

	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 1024*1024)
	scanner.Buffer(buf, maxSentenceBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("invalid format at line %d: expected word and frequency", lineNo)
		}

		word := fields[0]
		if _, dup := counts[word]; dup {
			return nil, fmt.Errorf("invalid format at line %d: duplicate word %q", lineNo, word)
		}
		freq, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing frequency at line %d: %v", lineNo, err)
		}
		frequency[word] = freq

		row := counts.row(word)
		for _, cell := range fields[2:] {
			// Context words never contain ':', but be lenient with the last one
			i := strings.LastIndexByte(cell, ':')
			if i <= 0 {
				return nil, fmt.Errorf("invalid cell %q at line %d: expected context:weight", cell, lineNo)
			}
			v, err := strconv.ParseFloat(cell[i+1:], 64)
			if err != nil {
				return nil, fmt.Errorf("error parsing weight for %q at line %d: %v", cell[:i], lineNo, err)
			}
			if v <= 0 {
				return nil, fmt.Errorf("non-positive weight for %q at line %d", cell[:i], lineNo)
			}
			row[cell[:i]] = v
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %v", err)
	}

	return newTable(counts, frequency, BuildInfo{}), nil
}

// Table file formats, chosen by file extension
const (
	FormatGob    = "gob"
	FormatText   = "text"
	FormatSQLite = "sqlite"
)

// TableFormat infers the storage format from a file name:
// .txt/.text is text, .db/.sqlite/.sqlite3 is SQLite, anything else is gob
func TableFormat(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text":
		return FormatText
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatGob
	}
}

// WriteTable saves a table in the format implied by the file name
func WriteTable(ctx context.Context, filename string, t *Table) error {
	switch TableFormat(filename) {
	case FormatText:
		f, err := os.Create(filename)
		if err != nil {
			return err
		}
		if err := WriteText(f, t); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case FormatSQLite:
		return SaveSQLite(ctx, filename, t)
	default:
		return SaveTable(filename, t)
	}
}

// OpenTable loads a table in the format implied by the file name
func OpenTable(ctx context.Context, filename string) (*Table, error) {
	switch TableFormat(filename) {
	case FormatText:
		f, err := os.Open(filename)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadText(f)
	case FormatSQLite:
		return LoadSQLite(ctx, filename)
	default:
		return LoadTable(filename)
	}
}
