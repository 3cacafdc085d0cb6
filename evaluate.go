package synonyms

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result is the graded outcome of one accepted question
type Result struct {
	Question  Question
	Selection Selection
	Correct   bool
}

// Report aggregates an evaluation run
type Report struct {
	Total    int              // Questions submitted
	Answered int              // Questions accepted and scored
	Correct  int              // Answered questions whose best candidate is the answer
	NoSignal int              // Answered questions where every score was zero
	Results  []Result         // One per answered question, in input order
	Rejected []*QuestionError // Malformed questions, excluded from accuracy
}

// Accuracy returns Correct/Answered, or 0 when nothing was answered
func (r *Report) Accuracy() float64 {
	if r.Answered == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Answered)
}

// Percent returns the accuracy as a percentage
func (r *Report) Percent() float64 {
	return r.Accuracy() * 100
}

// Evaluator grades synonym questions against a scorer
type Evaluator struct {
	Scorer             WordScorer
	ExpectedCandidates int                // Minimum candidates per question (0 uses TOEFLCandidates)
	Workers            int                // Concurrent questions (0 or 1 runs sequentially)
	Logger             logrus.FieldLogger // Optional
}

func (e *Evaluator) logger() logrus.FieldLogger {
	if e.Logger != nil {
		return e.Logger
	}
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// Evaluate answers every question and aggregates accuracy.
// A malformed question is recorded in Report.Rejected and never aborts the run;
// only context cancellation stops it early.
func (e *Evaluator) Evaluate(ctx context.Context, questions []Question) (*Report, error) {
	expected := e.ExpectedCandidates
	if expected <= 0 {
		expected = TOEFLCandidates
	}
	workers := e.Workers
	if workers < 1 {
		workers = 1
	}
	log := e.logger()

	type outcome struct {
		result *Result
		err    *QuestionError
	}
	outcomes := make([]outcome, len(questions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, q := range questions {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := q.Validate(expected); err != nil {
				var qe *QuestionError
				errors.As(err, &qe)
				outcomes[i].err = qe
				return nil
			}

			sel, err := Select(e.Scorer, q.Word, q.Candidates)
			if err != nil {
				outcomes[i].err = &QuestionError{Line: q.Line, Word: q.Word, Reason: err.Error()}
				return nil
			}
			outcomes[i].result = &Result{
				Question:  q,
				Selection: sel,
				Correct:   sel.Best == q.Answer,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Total: len(questions)}
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			log.WithFields(logrus.Fields{
				"line":   o.err.Line,
				"word":   o.err.Word,
				"reason": o.err.Reason,
			}).Warn("Rejected question")
			report.Rejected = append(report.Rejected, o.err)

		case o.result != nil:
			r := *o.result
			report.Answered++
			if r.Correct {
				report.Correct++
			}
			if r.Selection.NoSignal {
				report.NoSignal++
			}
			log.WithFields(logrus.Fields{
				"word":    r.Question.Word,
				"guess":   r.Selection.Best,
				"answer":  r.Question.Answer,
				"correct": r.Correct,
				"oov":     r.Selection.QuestionOOV,
			}).Debug("Answered question")
			report.Results = append(report.Results, r)
		}
	}

	return report, nil
}
