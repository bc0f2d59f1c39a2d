/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: config.go
Description: Configuration structures for record sources and the builder that turns them
into Source values. Each entry names its type (file, api, html, sql) and the settings that
type needs; API keys can be read from the environment through token_env.
*/

package sources

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// SourceConfig describes one record source
type SourceConfig struct {
	Type    string `mapstructure:"type" yaml:"type" json:"type"` // file, api, html, sql
	Name    string `mapstructure:"name" yaml:"name" json:"name"`
	Timeout string `mapstructure:"timeout" yaml:"timeout" json:"timeout"` // e.g. "30s"

	// file
	Path   string `mapstructure:"path" yaml:"path,omitempty" json:"path,omitempty"`
	Format string `mapstructure:"format" yaml:"format,omitempty" json:"format,omitempty"`
	Sheet  string `mapstructure:"sheet" yaml:"sheet,omitempty" json:"sheet,omitempty"`

	// api and html
	URL      string            `mapstructure:"url" yaml:"url,omitempty" json:"url,omitempty"`
	Params   map[string]string `mapstructure:"params" yaml:"params,omitempty" json:"params,omitempty"`
	Headers  map[string]string `mapstructure:"headers" yaml:"headers,omitempty" json:"headers,omitempty"`
	Token    string            `mapstructure:"token" yaml:"-" json:"-"`
	TokenEnv string            `mapstructure:"token_env" yaml:"token_env,omitempty" json:"token_env,omitempty"`
	Cache    string            `mapstructure:"cache" yaml:"cache,omitempty" json:"cache,omitempty"`
	MaxPages int               `mapstructure:"max_pages" yaml:"max_pages,omitempty" json:"max_pages,omitempty"`

	// html
	Selector string `mapstructure:"selector" yaml:"selector,omitempty" json:"selector,omitempty"`
	Index    int    `mapstructure:"index" yaml:"index,omitempty" json:"index,omitempty"`
	Browser  bool   `mapstructure:"browser" yaml:"browser,omitempty" json:"browser,omitempty"`
	WaitFor  string `mapstructure:"wait_for" yaml:"wait_for,omitempty" json:"wait_for,omitempty"`

	// sql
	Driver string `mapstructure:"driver" yaml:"driver,omitempty" json:"driver,omitempty"`
	DSN    string `mapstructure:"dsn" yaml:"dsn,omitempty" json:"dsn,omitempty"`
	Query  string `mapstructure:"query" yaml:"query,omitempty" json:"query,omitempty"`
}

// MindatSourceConfig returns the IMA approved mineral listing of api.mindat.org
func MindatSourceConfig() SourceConfig {
	return SourceConfig{
		Type:     "api",
		Name:     "mindat",
		URL:      "https://api.mindat.org/geomaterials/",
		Params:   map[string]string{"ima_status": "APPROVED", "format": "json"},
		TokenEnv: "MINDAT_API_KEY",
		Cache:    "ima_minerals.json",
		Timeout:  "30s",
	}
}

// ParseTimeout parses the timeout string into a time.Duration
func (c *SourceConfig) ParseTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ResolveToken returns the literal token or, failing that, the token_env variable
func (c *SourceConfig) ResolveToken() string {
	if c.Token != "" {
		return c.Token
	}
	if c.TokenEnv != "" {
		return os.Getenv(c.TokenEnv)
	}
	return ""
}

// Validate checks the entry has the settings its type needs
func (c *SourceConfig) Validate() error {
	switch strings.ToLower(c.Type) {
	case "file":
		if c.Path == "" {
			return fmt.Errorf("file source %q needs a path", c.Name)
		}
	case "api", "html":
		if c.URL == "" {
			return fmt.Errorf("%s source %q needs a url", c.Type, c.Name)
		}
	case "sql":
		if c.Driver == "" || c.DSN == "" || c.Query == "" {
			return fmt.Errorf("sql source %q needs driver, dsn and query", c.Name)
		}
	default:
		return fmt.Errorf("%w: source type %q", ErrUnsupportedFormat, c.Type)
	}
	return nil
}

// Build creates the Source described by the entry
func (c *SourceConfig) Build(index int, logger logrus.FieldLogger) (Source, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	name := c.Name
	if name == "" {
		name = fmt.Sprintf("%s-%d", strings.ToLower(c.Type), index+1)
	}

	switch strings.ToLower(c.Type) {
	case "file":
		src := NewFileSource(name, c.Path, c.Format)
		src.Sheet = c.Sheet
		return src, nil
	case "api":
		src := NewAPISource(name, c.URL, c.Params, c.ParseTimeout())
		for k, v := range c.Headers {
			src.Headers[k] = v
		}
		src.Token = c.ResolveToken()
		src.CachePath = c.Cache
		src.MaxPages = c.MaxPages
		src.Logger = logger
		return src, nil
	case "html":
		var fetcher Fetcher
		if c.Browser {
			fetcher = &BrowserFetcher{Headers: c.Headers, WaitSelector: c.WaitFor, Timeout: c.ParseTimeout()}
		} else {
			fetcher = &HTTPFetcher{Client: &http.Client{Timeout: c.ParseTimeout()}, Headers: c.Headers}
		}
		src := NewHTMLTableSource(name, c.URL, c.Selector, fetcher)
		src.Index = c.Index
		return src, nil
	default:
		return NewSQLSource(name, c.Driver, c.DSN, c.Query), nil
	}
}

// BuildSources creates every configured source in order
func BuildSources(cfgs []SourceConfig, logger logrus.FieldLogger) ([]Source, error) {
	if len(cfgs) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}
	out := make([]Source, 0, len(cfgs))
	for i := range cfgs {
		src, err := cfgs[i].Build(i, logger)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i+1, err)
		}
		out = append(out, src)
	}
	return out, nil
}
