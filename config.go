package synonyms

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variables overriding configuration,
// e.g. SYNONYMS_BUILD_WINDOW=6
const EnvPrefix = "SYNONYMS"

// Config is the configuration shared by the command line tools
type Config struct {
	Corpus CorpusConfig `mapstructure:"corpus"`
	Build  BuildConfig  `mapstructure:"build"`
	Table  TableConfig  `mapstructure:"table"`
	Eval   EvalConfig   `mapstructure:"eval"`
	Log    LogConfig    `mapstructure:"log"`
}

// CorpusConfig describes how corpus files are read
type CorpusConfig struct {
	Files           []string `mapstructure:"files"`
	Encoding        string   `mapstructure:"encoding"`
	Tokenizer       string   `mapstructure:"tokenizer"`
	SentencePerLine bool     `mapstructure:"sentence_per_line"`
	KeepHyphens     bool     `mapstructure:"keep_hyphens"`
	DigitsToZero    bool     `mapstructure:"digits_to_zero"`
}

// BuildConfig mirrors Options in configuration form
type BuildConfig struct {
	Window    int    `mapstructure:"window"`
	Weighting string `mapstructure:"weighting"`
	Context   string `mapstructure:"context"`
	MinLength int    `mapstructure:"min_length"`
	Stopwords string `mapstructure:"stopwords"` // "none", "english" or a file path
	Workers   int    `mapstructure:"workers"`
}

// TableConfig locates the built table
type TableConfig struct {
	Path string `mapstructure:"path"`
}

// EvalConfig controls the evaluation harness
type EvalConfig struct {
	Questions          string `mapstructure:"questions"`
	ExpectedCandidates int    `mapstructure:"expected_candidates"`
	Workers            int    `mapstructure:"workers"`
	CacheSize          int    `mapstructure:"cache_size"`
}

// LogConfig controls logging
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers the default configuration on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("corpus.encoding", "utf-8")
	v.SetDefault("corpus.tokenizer", TokenizerSimple)
	v.SetDefault("corpus.sentence_per_line", false)
	v.SetDefault("build.window", DefaultWindow)
	v.SetDefault("build.weighting", WeightUniform.String())
	v.SetDefault("build.context", ContextWindow.String())
	v.SetDefault("build.min_length", 0)
	v.SetDefault("build.stopwords", "none")
	v.SetDefault("build.workers", runtime.NumCPU())
	v.SetDefault("table.path", "descriptors.gob")
	v.SetDefault("eval.expected_candidates", TOEFLCandidates)
	v.SetDefault("eval.workers", 1)
	v.SetDefault("eval.cache_size", 4096)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// NewViper returns a viper instance with defaults and environment binding.
// If configFile is non-empty it is read; a missing file is an error.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigName("synonyms")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return v, nil
}

// BindFlags binds command line flags to configuration keys (key -> flag name).
// A flag set on the command line overrides environment and config file values.
func BindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings map[string]string) error {
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil {
			return fmt.Errorf("unknown flag %q for config key %q", name, key)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %q: %w", name, err)
		}
	}
	return nil
}

// LoadConfig decodes the configuration held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Options converts the build configuration into builder options
func (c BuildConfig) Options() (Options, error) {
	weighting, err := ParseWeighting(c.Weighting)
	if err != nil {
		return Options{}, err
	}
	ctxMode, err := ParseContext(c.Context)
	if err != nil {
		return Options{}, err
	}
	stopwords, err := LoadStopwords(c.Stopwords)
	if err != nil {
		return Options{}, fmt.Errorf("failed to load stopwords: %w", err)
	}

	opts := Options{
		Window:    c.Window,
		Weighting: weighting,
		Context:   ctxMode,
		MinLength: c.MinLength,
		Stopwords: stopwords,
	}
	return opts, opts.validate()
}

// Reader converts the corpus configuration into a CorpusReader
func (c CorpusConfig) Reader() (*CorpusReader, error) {
	if _, err := lookupEncoding(c.Encoding); err != nil {
		return nil, err
	}
	tok, err := NewTokenizer(c.Tokenizer, TokenizerOptions{
		Lowercase:    true,
		KeepHyphens:  c.KeepHyphens,
		DigitsToZero: c.DigitsToZero,
	}, false)
	if err != nil {
		return nil, err
	}
	return &CorpusReader{
		Tokenizer:       tok,
		Encoding:        c.Encoding,
		SentencePerLine: c.SentencePerLine,
	}, nil
}
