package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/n0madic/go-synonyms"
)

var cfgFile string

var flagBindings = map[string]string{
	"table.path":               "table",
	"corpus.tokenizer":         "tokenizer",
	"eval.questions":           "questions",
	"eval.expected_candidates": "expected-candidates",
	"eval.workers":             "workers",
	"eval.cache_size":          "cache-size",
	"log.level":                "log-level",
	"log.format":               "log-format",
}

func newRootCmd() *cobra.Command {
	var showResults bool

	cmd := &cobra.Command{
		Use:   "evaluate [questions file]",
		Short: "Answer synonym questions with a descriptor table",
		Long: `Evaluate loads a descriptor table built by the build tool and answers
multiple-choice synonym questions by picking the candidate whose descriptor
is most similar to the question word.

Question files use one question per line:

  word answer choice1 choice2 choice3 choice4

or YAML (.yaml/.yml) with a top-level "questions" list.`,
		Example: `  evaluate -t descriptors.gob toefl.txt
  evaluate -t table.db --questions toefl.yaml --results
  evaluate similarity -t descriptors.gob vexed annoyed
  evaluate nearest -t descriptors.gob --top-n 5 question`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEvaluate(cmd, args, showResults)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./synonyms.yaml)")
	flags.StringP("table", "t", "descriptors.gob", "Descriptor table (.gob, .txt or .db)")
	flags.String("tokenizer", synonyms.TokenizerSimple, "Tokenizer the table was built with: simple or unicode")
	flags.Int("cache-size", 4096, "Pair scores kept in the LRU cache (0 disables)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")

	cmd.Flags().StringP("questions", "q", "", "Questions file (alternative to the positional argument)")
	cmd.Flags().Int("expected-candidates", synonyms.TOEFLCandidates, "Minimum candidates per question")
	cmd.Flags().Int("workers", 1, "Questions answered concurrently")
	cmd.Flags().BoolVar(&showResults, "results", false, "Print every question with its scores")

	cmd.AddCommand(newSimilarityCmd(), newNearestCmd())
	return cmd
}

// setup loads configuration, the logger and the table shared by all subcommands
func setup(cmd *cobra.Command) (*synonyms.Config, *logrus.Logger, *synonyms.Scorer, error) {
	v, err := synonyms.NewViper(cfgFile)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := bindFlags(v, cmd); err != nil {
		return nil, nil, nil, err
	}
	cfg, err := synonyms.LoadConfig(v)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := synonyms.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return nil, nil, nil, err
	}

	if _, err := os.Stat(cfg.Table.Path); os.IsNotExist(err) {
		return nil, nil, nil, fmt.Errorf("table file does not exist: %s", cfg.Table.Path)
	}
	logger.WithField("path", cfg.Table.Path).Info("Loading descriptor table")

	table, err := synonyms.OpenTable(cmd.Context(), cfg.Table.Path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load table: %w", err)
	}
	info := table.Info()
	logger.WithFields(logrus.Fields{
		"vocabulary": table.Len(),
		"entries":    table.Entries(),
		"window":     info.Window,
		"weighting":  info.Weighting,
		"context":    info.Context,
	}).Info("Table loaded")

	scorer, err := synonyms.NewScorer(table, synonyms.WithCache(cfg.Eval.CacheSize))
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, scorer, nil
}

// wordTokenizer returns the tokenizer the corpus was read with
func wordTokenizer(cfg *synonyms.Config) (synonyms.Tokenizer, error) {
	reader, err := cfg.Corpus.Reader()
	if err != nil {
		return nil, err
	}
	return reader.Tokenizer, nil
}

// bindFlags binds only the flags the running command defines
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := make(map[string]string)
	for key, name := range flagBindings {
		if cmd.Flags().Lookup(name) != nil {
			bindings[key] = name
		}
	}
	return synonyms.BindFlags(v, cmd.Flags(), bindings)
}

func runEvaluate(cmd *cobra.Command, args []string, showResults bool) error {
	cfg, logger, scorer, err := setup(cmd)
	if err != nil {
		return err
	}

	path := cfg.Eval.Questions
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return fmt.Errorf("no questions file given")
	}
	questions, err := synonyms.LoadQuestions(path)
	if err != nil {
		return fmt.Errorf("failed to load questions: %w", err)
	}
	tok, err := wordTokenizer(cfg)
	if err != nil {
		return err
	}
	synonyms.NormalizeQuestions(questions, tok)

	evaluator := &synonyms.Evaluator{
		Scorer:             scorer,
		ExpectedCandidates: cfg.Eval.ExpectedCandidates,
		Workers:            cfg.Eval.Workers,
		Logger:             logger,
	}
	report, err := evaluator.Evaluate(cmd.Context(), questions)
	if err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), path, report, showResults)
	return nil
}

func printReport(w io.Writer, path string, report *synonyms.Report, showResults bool) {
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "SYNONYM QUESTION EVALUATION")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "Questions file: %s\n", path)

	if showResults {
		fmt.Fprintln(w)
		for _, r := range report.Results {
			mark := "✅"
			if !r.Correct {
				mark = "❌"
			}
			fmt.Fprintf(w, "%s %-15s guess: %-15s answer: %s\n",
				mark, r.Question.Word, r.Selection.Best, r.Question.Answer)
			for _, cs := range r.Selection.Scores {
				note := ""
				if cs.OOV {
					note = " (not in vocabulary)"
				}
				fmt.Fprintf(w, "     %-15s %.4f%s\n", cs.Candidate, cs.Score, note)
			}
		}
	}

	if len(report.Rejected) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Rejected %d malformed questions:\n", len(report.Rejected))
		for _, qe := range report.Rejected {
			fmt.Fprintf(w, "  ⚠️  %v\n", qe)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 30))
	fmt.Fprintf(w, "Answered:  %d of %d\n", report.Answered, report.Total)
	fmt.Fprintf(w, "Correct:   %d\n", report.Correct)
	fmt.Fprintf(w, "No signal: %d\n", report.NoSignal)
	fmt.Fprintf(w, "Accuracy:  %.1f%%\n", report.Percent())
}

func newSimilarityCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "similarity <word> <word>",
		Short:        "Print the similarity of two words",
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, scorer, err := setup(cmd)
			if err != nil {
				return err
			}
			tok, err := wordTokenizer(cfg)
			if err != nil {
				return err
			}
			a, b := synonyms.NormalizeWordWith(tok, args[0]), synonyms.NormalizeWordWith(tok, args[1])
			for _, word := range []string{a, b} {
				if !scorer.Contains(word) {
					fmt.Fprintf(cmd.OutOrStdout(), "❌ Word '%s' not found in vocabulary\n", word)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "similarity(%s, %s) = %.4f\n", a, b, scorer.Similarity(a, b))
			return nil
		},
	}
}

func newNearestCmd() *cobra.Command {
	var topN int

	cmd := &cobra.Command{
		Use:          "nearest <word>",
		Short:        "List the vocabulary words most similar to a word",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, scorer, err := setup(cmd)
			if err != nil {
				return err
			}
			tok, err := wordTokenizer(cfg)
			if err != nil {
				return err
			}
			word := synonyms.NormalizeWordWith(tok, args[0])
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "🔍 SIMILARITY TESTING\n")
			fmt.Fprintln(out, strings.Repeat("-", 30))
			if !scorer.Contains(word) {
				fmt.Fprintf(out, "❌ Word '%s' not found in vocabulary\n", word)
				return nil
			}

			nearest := scorer.Nearest(word, topN)
			fmt.Fprintf(out, "Most similar words to '%s':\n", word)
			if len(nearest) == 0 {
				fmt.Fprintf(out, "  ❌ No similar words found\n")
				return nil
			}
			for i, ws := range nearest {
				fmt.Fprintf(out, "  %d. %-15s (similarity: %.4f)\n", i+1, ws.Word, ws.Score)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topN, "top-n", "n", 10, "Number of similar words to show")
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
