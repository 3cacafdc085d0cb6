package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n0madic/go-synonyms"
)

type tokenizeFlags struct {
	input           string
	output          string
	encoding        string
	tokenizer       string
	sentencePerLine bool
	keepHyphens     bool
	digitsToZero    bool
	removeStopwords bool
	showFreqs       bool
	minFreq         int
}

func newRootCmd() *cobra.Command {
	var f tokenizeFlags

	cmd := &cobra.Command{
		Use:   "tokenize",
		Short: "Tokenize a corpus the way the build tool reads it",
		Long: `Tokenize splits text into sentences and lowercased tokens using the same
reader as the build tool, printing one sentence per line. With --show-freqs
it prints a word frequency list instead.`,
		Example: `  # Tokenize a file
  tokenize -i corpus.txt -o tokenized.txt

  # Tokenize stdin and output to stdout
  cat text.txt | tokenize -i -

  # Generate word frequency list
  tokenize -i corpus.txt --show-freqs --min-freq 5 > vocab.txt

  # Latin-1 corpus with the unicode tokenizer and English stop words removed
  tokenize -i wp.txt --encoding latin1 --tokenizer unicode --remove-stopwords`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenize(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "Input text file to tokenize (use - for stdin)")
	flags.StringVarP(&f.output, "output", "o", "", "Output file (default stdout)")
	flags.StringVar(&f.encoding, "encoding", "utf-8", "Input encoding: utf-8, latin1, windows-1252")
	flags.StringVar(&f.tokenizer, "tokenizer", synonyms.TokenizerSimple, "Tokenizer: simple or unicode")
	flags.BoolVar(&f.sentencePerLine, "sentence-per-line", false, "Treat each line as a sentence")
	flags.BoolVar(&f.keepHyphens, "keep-hyphens", false, "Keep hyphenated words intact (simple tokenizer)")
	flags.BoolVar(&f.digitsToZero, "digits-to-zero", false, "Normalize all digits to 0 (simple tokenizer)")
	flags.BoolVar(&f.removeStopwords, "remove-stopwords", false, "Drop English stop words (unicode tokenizer)")
	flags.BoolVar(&f.showFreqs, "show-freqs", false, "Output word frequencies instead of sentences")
	flags.IntVar(&f.minFreq, "min-freq", 1, "Minimum word frequency to include with --show-freqs")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runTokenize(cmd *cobra.Command, f tokenizeFlags) error {
	var input io.Reader
	if f.input == "-" {
		input = cmd.InOrStdin()
	} else {
		file, err := os.Open(f.input)
		if err != nil {
			return fmt.Errorf("failed to open input file: %w", err)
		}
		defer file.Close()
		input = file
	}

	tok, err := synonyms.NewTokenizer(f.tokenizer, synonyms.TokenizerOptions{
		Lowercase:    true,
		KeepHyphens:  f.keepHyphens,
		DigitsToZero: f.digitsToZero,
	}, f.removeStopwords)
	if err != nil {
		return err
	}
	reader := &synonyms.CorpusReader{
		Tokenizer:       tok,
		Encoding:        f.encoding,
		SentencePerLine: f.sentencePerLine,
	}

	output := cmd.OutOrStdout()
	if f.output != "" && f.output != "-" {
		file, err := os.Create(f.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		output = file
	}
	w := bufio.NewWriter(output)

	if f.showFreqs {
		freqs, err := reader.WordFrequencies(input, f.minFreq)
		if err != nil {
			return err
		}
		for _, wf := range freqs {
			fmt.Fprintf(w, "%s %d\n", wf.Word, wf.Freq)
		}
		return w.Flush()
	}

	for sentence, err := range reader.Sentences(input) {
		if err != nil {
			return err
		}
		fmt.Fprintln(w, strings.Join(sentence, " "))
	}
	return w.Flush()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
