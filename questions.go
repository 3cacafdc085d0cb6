package synonyms

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// TOEFLCandidates is the number of choices in a TOEFL synonym question
const TOEFLCandidates = 4

// Question is a multiple-choice synonym question
type Question struct {
	Word       string   `yaml:"word"`
	Answer     string   `yaml:"answer,omitempty"`
	Candidates []string `yaml:"candidates,flow"`
	Line       int      `yaml:"-"` // Source line, 0 when unknown
}

// QuestionError describes why a question was rejected
type QuestionError struct {
	Line   int
	Word   string
	Reason string
}

func (e *QuestionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed question at line %d (%q): %s", e.Line, e.Word, e.Reason)
	}
	return fmt.Sprintf("malformed question %q: %s", e.Word, e.Reason)
}

func (e *QuestionError) Unwrap() error {
	return ErrMalformedQuestion
}

// Validate checks that the question can be scored and graded.
// expected is the minimum number of candidates; values < 1 mean 1.
func (q Question) Validate(expected int) error {
	if expected < 1 {
		expected = 1
	}
	reject := func(format string, args ...any) error {
		return &QuestionError{Line: q.Line, Word: q.Word, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case q.Word == "":
		return reject("missing question word")
	case q.Answer == "":
		return reject("missing answer")
	case len(q.Candidates) < expected:
		return reject("expected at least %d candidates, got %d", expected, len(q.Candidates))
	case !slices.Contains(q.Candidates, q.Answer):
		return reject("answer %q is not among the candidates", q.Answer)
	}
	return nil
}

// ParseQuestions reads questions in the line format
//
//	word answer choice1 choice2 ...
//
// Fields are case-folded with NormalizeWord. Blank lines and lines starting with '#' are skipped.
// Short lines are returned as-is so the evaluator can reject them.
func ParseQuestions(r io.Reader) ([]Question, error) {
	var questions []Question

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		for i, f := range fields {
			fields[i] = NormalizeWord(f)
		}
		q := Question{Word: fields[0], Line: lineNo}
		if len(fields) > 1 {
			q.Answer = fields[1]
		}
		if len(fields) > 2 {
			q.Candidates = fields[2:]
		}
		questions = append(questions, q)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading questions: %w", err)
	}

	return questions, nil
}

// ParseQuestionsYAML reads a YAML list of questions
func ParseQuestionsYAML(r io.Reader) ([]Question, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("error decoding questions: %w", err)
	}

	for i := range doc.Questions {
		q := &doc.Questions[i]
		q.Line = i + 1
		q.Word = NormalizeWord(q.Word)
		q.Answer = NormalizeWord(q.Answer)
		for j, c := range q.Candidates {
			q.Candidates[j] = NormalizeWord(c)
		}
	}
	return doc.Questions, nil
}

// NormalizeQuestions rewrites every question field with the tokenizer the
// corpus was read with, so question words and table words agree.
func NormalizeQuestions(questions []Question, tok Tokenizer) {
	for i := range questions {
		q := &questions[i]
		q.Word = NormalizeWordWith(tok, q.Word)
		q.Answer = NormalizeWordWith(tok, q.Answer)
		for j, c := range q.Candidates {
			q.Candidates[j] = NormalizeWordWith(tok, c)
		}
	}
}

// WriteQuestionsYAML writes questions in the format ParseQuestionsYAML reads
func WriteQuestionsYAML(w io.Writer, questions []Question) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	doc := struct {
		Questions []Question `yaml:"questions"`
	}{questions}
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// LoadQuestions reads a question file, choosing YAML for .yaml/.yml files
// and the line format otherwise
func LoadQuestions(filename string) ([]Question, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseQuestionsYAML(f)
	default:
		return ParseQuestions(f)
	}
}
