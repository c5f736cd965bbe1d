package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Empty array policies
const (
	EmptyArraysEmpty = "empty"
	EmptyArraysError = "error"
)

// Output formats
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatYAML = "yaml"
)

// Commit operations
const (
	OperationUpsert = "upsert"
	OperationInsert = "insert"
	OperationUpdate = "update"
)

// DefaultKind is used when neither the config nor the input file name gives one.
const DefaultKind = "Entity"

// Config represents the complete configuration for jentity
type Config struct {
	Key      KeyConfig      `yaml:"key"`
	Types    TypesConfig    `yaml:"types"`
	Arrays   ArraysConfig   `yaml:"arrays"`
	Indexing IndexingConfig `yaml:"indexing"`
	Output   OutputConfig   `yaml:"output"`
	Dev      DevConfig      `yaml:"dev"`
}

// KeyConfig controls how entity keys are built
type KeyConfig struct {
	Project     string `yaml:"project"`
	Database    string `yaml:"database"`
	Namespace   string `yaml:"namespace"`
	Kind        string `yaml:"kind"`
	KeyProperty string `yaml:"key_property"`
}

// TypesConfig controls scalar type detection while parsing
type TypesConfig struct {
	DetectTimestamps bool `yaml:"detect_timestamps"`
	// LooseTimestamps also treats "2006-01-02" and "2006-01-02 15:04:05" as timestamps
	LooseTimestamps bool `yaml:"loose_timestamps"`
}

// ArraysConfig controls array conversion
type ArraysConfig struct {
	Empty              string `yaml:"empty"`
	StrictElementTypes bool   `yaml:"strict_element_types"`
}

// IndexingConfig controls exclude_from_indexes on converted values
type IndexingConfig struct {
	Exclude            []string `yaml:"exclude"`
	ExcludeLongStrings bool     `yaml:"exclude_long_strings"`

	// compiled regexes (not serialized)
	patterns     []*regexp.Regexp
	compiledFrom []string
}

// OutputConfig controls rendering of the result
type OutputConfig struct {
	Format    string `yaml:"format"`
	Commit    bool   `yaml:"commit"`
	Operation string `yaml:"operation"`
}

// DevConfig contains development/debug options.
// An empty LogLevel keeps the level taken from LOG_LEVEL.
type DevConfig struct {
	Debug    bool   `yaml:"debug"`
	LogLevel string `yaml:"log_level"`
}

// NewConfig creates a new Config with default values
func NewConfig() *Config {
	return &Config{
		Types: TypesConfig{
			DetectTimestamps: true,
		},
		Arrays: ArraysConfig{
			Empty:              EmptyArraysEmpty,
			StrictElementTypes: false,
		},
		Indexing: IndexingConfig{
			Exclude:            []string{},
			ExcludeLongStrings: false,
		},
		Output: OutputConfig{
			Format:    FormatJSON,
			Commit:    false,
			Operation: OperationUpsert,
		},
		Dev: DevConfig{
			Debug: false,
		},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults
	cfg := NewConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// FindConfigFile searches for a config file in current directory and parents
func FindConfigFile() string {
	configNames := []string{".jentity.yml", ".jentity.yaml", "jentity.yml", "jentity.yaml"}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configNames {
			configPath := filepath.Join(currentDir, name)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root directory
			break
		}
		currentDir = parentDir
	}

	return ""
}

// Validate checks enumerated settings and compiles the index exclusion patterns
func (c *Config) Validate() error {
	c.Arrays.Empty = strings.ToLower(c.Arrays.Empty)
	switch c.Arrays.Empty {
	case EmptyArraysEmpty, EmptyArraysError:
	default:
		return fmt.Errorf("invalid arrays.empty '%s': must be '%s' or '%s'", c.Arrays.Empty, EmptyArraysEmpty, EmptyArraysError)
	}

	c.Output.Format = strings.ToLower(c.Output.Format)
	switch c.Output.Format {
	case FormatJSON, FormatText, FormatYAML:
	default:
		return fmt.Errorf("invalid output.format '%s': must be one of json, text, yaml", c.Output.Format)
	}

	c.Output.Operation = strings.ToLower(c.Output.Operation)
	switch c.Output.Operation {
	case OperationUpsert, OperationInsert, OperationUpdate:
	default:
		return fmt.Errorf("invalid output.operation '%s': must be one of upsert, insert, update", c.Output.Operation)
	}

	return c.compilePatterns()
}

// compilePatterns compiles all regex patterns in the config
func (c *Config) compilePatterns() error {
	patterns, err := compileExclusions(c.Indexing.Exclude)
	if err != nil {
		return err
	}
	c.Indexing.patterns = patterns
	c.Indexing.compiledFrom = slices.Clone(c.Indexing.Exclude)
	return nil
}

// IndexExclusions returns the compiled index exclusion patterns. Patterns
// changed since the last Validate are compiled again, so an invalid one is
// reported here too.
func (c *Config) IndexExclusions() ([]*regexp.Regexp, error) {
	if c.Indexing.patterns != nil && slices.Equal(c.Indexing.compiledFrom, c.Indexing.Exclude) {
		return c.Indexing.patterns, nil
	}
	return compileExclusions(c.Indexing.Exclude)
}

func compileExclusions(exclude []string) ([]*regexp.Regexp, error) {
	patterns := make([]*regexp.Regexp, 0, len(exclude))
	for _, pattern := range exclude {
		regex, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid index exclusion pattern '%s': %w", pattern, err)
		}
		patterns = append(patterns, regex)
	}
	return patterns, nil
}

// Overrides carries CLI values. Zero values leave the config untouched.
type Overrides struct {
	Project            string
	Database           string
	Namespace          string
	Kind               string
	KeyProperty        string
	Format             string
	Operation          string
	EmptyArrays        string
	Exclude            []string
	Commit             bool
	StrictArrays       bool
	NoDetectTimestamps bool
	LooseTimestamps    bool
	Debug              bool
	LogLevel           string
}

// Apply merges CLI overrides into the config.
// Boolean flags can only switch a behaviour on relative to the file.
func (o Overrides) Apply(cfg *Config) {
	setString(&cfg.Key.Project, o.Project)
	setString(&cfg.Key.Database, o.Database)
	setString(&cfg.Key.Namespace, o.Namespace)
	setString(&cfg.Key.Kind, o.Kind)
	setString(&cfg.Key.KeyProperty, o.KeyProperty)
	setString(&cfg.Output.Format, o.Format)
	setString(&cfg.Output.Operation, o.Operation)
	setString(&cfg.Arrays.Empty, o.EmptyArrays)
	setString(&cfg.Dev.LogLevel, o.LogLevel)

	cfg.Indexing.Exclude = append(cfg.Indexing.Exclude, o.Exclude...)

	if o.Commit {
		cfg.Output.Commit = true
	}
	if o.StrictArrays {
		cfg.Arrays.StrictElementTypes = true
	}
	if o.NoDetectTimestamps {
		cfg.Types.DetectTimestamps = false
	}
	if o.LooseTimestamps {
		cfg.Types.LooseTimestamps = true
	}
	if o.Debug {
		cfg.Dev.Debug = true
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// LoadConfigWithCLI loads config with CLI argument precedence
func LoadConfigWithCLI(configPath string, overrides Overrides) (*Config, error) {
	cfg := NewConfig()

	if configPath != "" {
		fileConfig, err := LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = fileConfig
	}

	overrides.Apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
