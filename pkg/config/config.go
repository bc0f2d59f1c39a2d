/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration for ontoforge. Settings come from built-in defaults, an optional
config file (YAML, TOML or JSON), a .env file and ONTOFORGE_* environment variables, in
increasing order of precedence. Command line flags are bound on top by the CLI.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kleascm/ontoforge/pkg/inference"
	"github.com/kleascm/ontoforge/pkg/logging"
	"github.com/kleascm/ontoforge/pkg/ontology"
	"github.com/kleascm/ontoforge/pkg/sources"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment override
const EnvPrefix = "ONTOFORGE"

// DefaultEnvFile is loaded when env_file is not set
const DefaultEnvFile = ".env"

// InferenceConfig holds the candidate priority order by name
type InferenceConfig struct {
	Candidates []string `mapstructure:"candidates" yaml:"candidates" json:"candidates"`
}

// Config is the complete ontoforge configuration
type Config struct {
	Log        logging.LoggerConfig   `mapstructure:"log" yaml:"log" json:"log"`
	Inference  InferenceConfig        `mapstructure:"inference" yaml:"inference" json:"inference"`
	Ontology   ontology.Options       `mapstructure:"ontology" yaml:"ontology" json:"ontology"`
	Sources    []sources.SourceConfig `mapstructure:"sources" yaml:"sources" json:"sources"`
	Output     string                 `mapstructure:"output" yaml:"output" json:"output"` // "-" for stdout
	Report     string                 `mapstructure:"report" yaml:"report" json:"report"`
	MetricsDir string                 `mapstructure:"metrics_dir" yaml:"metrics_dir" json:"metrics_dir"`
	EnvFile    string                 `mapstructure:"env_file" yaml:"env_file" json:"env_file"`
}

// SetDefaults registers every default on v. Keys need a default for
// AutomaticEnv to reach them during Unmarshal.
func SetDefaults(v *viper.Viper) {
	logDefaults := logging.DefaultLoggerConfig()
	v.SetDefault("log.level", string(logDefaults.Level))
	v.SetDefault("log.format", string(logDefaults.Format))
	v.SetDefault("log.output_dir", logDefaults.OutputDir)
	v.SetDefault("log.max_files", logDefaults.MaxFiles)
	v.SetDefault("log.timestamp", logDefaults.Timestamp)
	v.SetDefault("log.caller", logDefaults.Caller)
	v.SetDefault("log.colors", logDefaults.Colors)
	v.SetDefault("log.syslog_enabled", false)
	v.SetDefault("log.syslog_network", "")
	v.SetDefault("log.syslog_address", "")

	names := make([]string, 0, 4)
	for _, d := range inference.DefaultCandidates().Order() {
		names = append(names, d.String())
	}
	v.SetDefault("inference.candidates", names)

	o := ontology.DefaultOptions()
	v.SetDefault("ontology.prefix", o.Prefix)
	v.SetDefault("ontology.namespace", o.Namespace)
	v.SetDefault("ontology.ontology_iri", o.OntologyIRI)
	v.SetDefault("ontology.ontology_label", o.OntologyLabel)
	v.SetDefault("ontology.ontology_comment", o.OntologyComment)
	v.SetDefault("ontology.entity_label", o.EntityLabel)
	v.SetDefault("ontology.identifier_field", o.IdentifierField)
	v.SetDefault("ontology.label_field", o.LabelField)
	v.SetDefault("ontology.individual_prefix", o.IndividualPrefix)
	v.SetDefault("ontology.strict", o.Strict)

	v.SetDefault("output", ontology.DefaultOutputFile)
	v.SetDefault("report", "")
	v.SetDefault("metrics_dir", "")
	v.SetDefault("env_file", DefaultEnvFile)
}

// Load reads the configuration. The "config" key, when set on v, names the config file.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	SetDefaults(v)

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// variables already in the environment win over the .env file
	if err := godotenv.Load(v.GetString("env_file")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = []sources.SourceConfig{sources.MindatSourceConfig()}
	}
	return &cfg, nil
}

// Candidates returns the configured priority order
func (c *Config) Candidates() (inference.Candidates, error) {
	if len(c.Inference.Candidates) == 0 {
		return inference.DefaultCandidates(), nil
	}
	return inference.ParseCandidates(c.Inference.Candidates)
}

// Validate checks every section
func (c *Config) Validate() error {
	if err := c.Log.Validate(); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if _, err := c.Candidates(); err != nil {
		return fmt.Errorf("inference: %w", err)
	}
	if err := c.Ontology.Validate(); err != nil {
		return fmt.Errorf("ontology: %w", err)
	}
	if len(c.Sources) == 0 {
		return fmt.Errorf("no sources configured")
	}
	for i := range c.Sources {
		if err := c.Sources[i].Validate(); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
	}
	return nil
}
