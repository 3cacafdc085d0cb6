package synonyms

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedQuestion = errors.New("malformed question")
	ErrMissingWord       = fmt.Errorf("%w: missing question word", ErrMalformedQuestion)
	ErrNoCandidates      = fmt.Errorf("%w: no candidates", ErrMalformedQuestion)
)

// CandidateScore is the similarity of one candidate to the question word
type CandidateScore struct {
	Candidate string
	Score     float64
	OOV       bool // Candidate is not in the vocabulary
}

// Selection is the outcome of choosing among candidates
type Selection struct {
	Word        string
	Best        string
	BestIndex   int
	Scores      []CandidateScore // In candidate order
	QuestionOOV bool             // The question word is not in the vocabulary
	NoSignal    bool             // Every score is zero, so Best is a guess
}

// Select returns the candidate most similar to word.
// When several candidates share the highest score, including the case where
// all scores are zero, the earliest candidate wins.
func Select(s WordScorer, word string, candidates []string) (Selection, error) {
	if word == "" {
		return Selection{}, ErrMissingWord
	}
	if len(candidates) == 0 {
		return Selection{}, ErrNoCandidates
	}

	sel := Selection{
		Word:        word,
		Scores:      make([]CandidateScore, len(candidates)),
		QuestionOOV: !s.Contains(word),
		NoSignal:    true,
	}

	var best float64
	for i, c := range candidates {
		cs := CandidateScore{Candidate: c, OOV: !s.Contains(c)}
		if !sel.QuestionOOV && !cs.OOV {
			cs.Score = s.Similarity(word, c)
		}
		sel.Scores[i] = cs

		if cs.Score > 0 {
			sel.NoSignal = false
		}
		if i == 0 || cs.Score > best {
			best = cs.Score
			sel.Best = c
			sel.BestIndex = i
		}
	}

	return sel, nil
}
