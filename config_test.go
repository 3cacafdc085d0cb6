package synonyms

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, DefaultWindow, cfg.Build.Window)
	assert.Equal(t, "uniform", cfg.Build.Weighting)
	assert.Equal(t, "window", cfg.Build.Context)
	assert.Equal(t, "none", cfg.Build.Stopwords)
	assert.Equal(t, "descriptors.gob", cfg.Table.Path)
	assert.Equal(t, TOEFLCandidates, cfg.Eval.ExpectedCandidates)
	assert.Equal(t, "utf-8", cfg.Corpus.Encoding)
	assert.Equal(t, "info", cfg.Log.Level)

	opts, err := cfg.Build.Options()
	require.NoError(t, err)
	assert.Equal(t, DefaultOptions().Window, opts.Window)
	assert.Equal(t, WeightUniform, opts.Weighting)
	assert.Nil(t, opts.Stopwords)
}

func TestConfigFile(t *testing.T) {
	path := writeTempFile(t, "synonyms.yaml", `
corpus:
  files: [wp.txt, sw.txt]
  encoding: latin1
build:
  window: 2
  weighting: inverse-distance
  context: sentence
  stopwords: english
table:
  path: out/table.db
eval:
  workers: 4
log:
  level: debug
  format: json
`)

	v, err := NewViper(path)
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, []string{"wp.txt", "sw.txt"}, cfg.Corpus.Files)
	assert.Equal(t, "latin1", cfg.Corpus.Encoding)
	assert.Equal(t, "out/table.db", cfg.Table.Path)
	assert.Equal(t, 4, cfg.Eval.Workers)
	assert.Equal(t, 4096, cfg.Eval.CacheSize, "unset keys keep their defaults")
	assert.Equal(t, "json", cfg.Log.Format)

	opts, err := cfg.Build.Options()
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Window)
	assert.Equal(t, WeightInverseDistance, opts.Weighting)
	assert.Equal(t, ContextSentence, opts.Context)
	assert.True(t, opts.Stopwords.Contains("the"))

	reader, err := cfg.Corpus.Reader()
	require.NoError(t, err)
	assert.Equal(t, "latin1", reader.Encoding)

	_, err = NewViper(path + ".missing")
	assert.Error(t, err)
}

func TestConfigEnvironment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SYNONYMS_BUILD_WINDOW", "6")
	t.Setenv("SYNONYMS_TABLE_PATH", "env.gob")

	v, err := NewViper("")
	require.NoError(t, err)
	cfg, err := LoadConfig(v)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Build.Window)
	assert.Equal(t, "env.gob", cfg.Table.Path)
}

func TestBindFlags(t *testing.T) {
	t.Chdir(t.TempDir())

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("window", DefaultWindow, "")
	flags.String("output", "descriptors.gob", "")
	require.NoError(t, flags.Parse([]string{"--window=2"}))

	v, err := NewViper("")
	require.NoError(t, err)
	require.NoError(t, BindFlags(v, flags, map[string]string{
		"build.window": "window",
		"table.path":   "output",
	}))
	cfg, err := LoadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Build.Window)
	assert.Equal(t, "descriptors.gob", cfg.Table.Path)

	err = BindFlags(v, flags, map[string]string{"build.context": "context"})
	assert.Error(t, err)
}

func TestConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		build   BuildConfig
		wantErr error
	}{
		{"bad weighting", BuildConfig{Window: 2, Weighting: "gaussian"}, ErrUnknownWeighting},
		{"bad context", BuildConfig{Window: 2, Context: "paragraph"}, ErrUnknownContext},
		{"bad window", BuildConfig{Window: 0}, ErrInvalidWindow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build.Options()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := BuildConfig{Window: 2, Stopwords: "/nonexistent/stopwords.txt"}.Options()
	assert.Error(t, err)

	_, err = CorpusConfig{Encoding: "ebcdic"}.Reader()
	assert.Error(t, err)
	_, err = CorpusConfig{Tokenizer: "whitespace"}.Reader()
	assert.Error(t, err)
}
