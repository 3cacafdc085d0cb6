package main

import (
	"fmt"
	"iter"
	"os"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/n0madic/go-synonyms"
)

var cfgFile string

// flagBindings maps configuration keys to the flags overriding them
var flagBindings = map[string]string{
	"table.path":               "output",
	"corpus.encoding":          "encoding",
	"corpus.tokenizer":         "tokenizer",
	"corpus.sentence_per_line": "sentence-per-line",
	"corpus.keep_hyphens":      "keep-hyphens",
	"corpus.digits_to_zero":    "digits-to-zero",
	"build.window":             "window",
	"build.weighting":          "weighting",
	"build.context":            "context",
	"build.min_length":         "min-length",
	"build.stopwords":          "stopwords",
	"build.workers":            "workers",
	"log.level":                "log-level",
	"log.format":               "log-format",
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build [corpus files...]",
		Short: "Build a semantic descriptor table from text corpora",
		Long: `Build scans corpus files with a sliding context window, accumulates
co-occurrence counts into one sparse descriptor per word, and saves the
resulting table for the evaluate tool.

The output format follows the file extension: .gob (default), .txt for the
text format, .db/.sqlite for SQLite.`,
		Example: `  build -o descriptors.gob war_and_peace.txt swanns_way.txt
  build --window 2 --weighting inverse-distance --stopwords english corpus.txt
  build --context sentence --encoding latin1 -o table.db wp.txt sw.txt`,
		SilenceUsage: true,
		RunE:         runBuild,
	}

	flags := cmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./synonyms.yaml)")
	flags.StringP("output", "o", "descriptors.gob", "Output file for the descriptor table")
	flags.String("encoding", "utf-8", "Corpus encoding: utf-8, latin1, windows-1252")
	flags.String("tokenizer", synonyms.TokenizerSimple, "Tokenizer: simple or unicode")
	flags.Bool("sentence-per-line", false, "Treat each line as a sentence instead of splitting on . ! ?")
	flags.Bool("keep-hyphens", false, "Keep hyphenated words intact (simple tokenizer)")
	flags.Bool("digits-to-zero", false, "Normalize all digits to 0 (simple tokenizer)")
	flags.IntP("window", "w", synonyms.DefaultWindow, "Context window radius")
	flags.String("weighting", "uniform", "Co-occurrence weighting: uniform or inverse-distance")
	flags.String("context", "window", "Context mode: window or sentence")
	flags.Int("min-length", 0, "Exclude tokens shorter than this many characters")
	flags.String("stopwords", "none", "Stopwords to exclude: none, english or a file path")
	flags.Int("workers", runtime.NumCPU(), "Files built concurrently (>1 builds each file separately and merges)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")

	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	v, err := synonyms.NewViper(cfgFile)
	if err != nil {
		return err
	}
	if err := synonyms.BindFlags(v, cmd.Flags(), flagBindings); err != nil {
		return err
	}
	cfg, err := synonyms.LoadConfig(v)
	if err != nil {
		return err
	}

	logger, err := synonyms.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	files := args
	if len(files) == 0 {
		files = cfg.Corpus.Files
	}
	if len(files) == 0 {
		return fmt.Errorf("no corpus files given")
	}
	for _, f := range files {
		if _, err := os.Stat(f); os.IsNotExist(err) {
			return fmt.Errorf("corpus file does not exist: %s", f)
		}
	}

	reader, err := cfg.Corpus.Reader()
	if err != nil {
		return err
	}
	opts, err := cfg.Build.Options()
	if err != nil {
		return err
	}
	opts.Progress = func(p synonyms.BuildProgress) {
		logger.WithFields(logrus.Fields{
			"sentences":  p.Sentences,
			"tokens":     p.Tokens,
			"vocabulary": p.Vocabulary,
			"elapsed":    p.Elapsed.Truncate(time.Second),
		}).Info("Building descriptors")
	}

	logger.WithFields(logrus.Fields{
		"files":     len(files),
		"window":    opts.Window,
		"weighting": opts.Weighting,
		"context":   opts.Context,
		"stopwords": opts.Stopwords.Len(),
		"output":    cfg.Table.Path,
	}).Info("Starting build")

	start := time.Now()
	var table *synonyms.Table
	if cfg.Build.Workers > 1 && len(files) > 1 {
		partitions := make([]iter.Seq2[[]string, error], len(files))
		for i, f := range files {
			partitions[i] = reader.File(f)
		}
		table, err = synonyms.BuildParallel(cmd.Context(), partitions, opts, cfg.Build.Workers)
		if err != nil {
			return err
		}
	} else {
		builder, err := synonyms.NewBuilder(opts)
		if err != nil {
			return err
		}
		for _, f := range files {
			logger.WithField("file", f).Debug("Reading corpus")
			for sentence, err := range reader.File(f) {
				if err != nil {
					return err
				}
				builder.AddSentence(sentence)
			}
		}
		table = builder.Table()
	}

	info := table.Info()
	logger.WithFields(logrus.Fields{
		"vocabulary": table.Len(),
		"entries":    table.Entries(),
		"tokens":     info.Tokens,
		"sentences":  info.Sentences,
		"elapsed":    time.Since(start).Truncate(time.Millisecond),
	}).Info("Descriptor table built")

	if err := synonyms.WriteTable(cmd.Context(), cfg.Table.Path, table); err != nil {
		return fmt.Errorf("failed to save table: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"path":   cfg.Table.Path,
		"format": synonyms.TableFormat(cfg.Table.Path),
	}).Info("Table saved")

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
