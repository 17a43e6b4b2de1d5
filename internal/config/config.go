// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"gopkg.microglot.org/fnc.go/internal/exc"
)

// EnvConfig names the environment variable holding the default config path.
const EnvConfig = "FNC_CONFIG"

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the settings shared by the command line and the config file.
type Config struct {
	Roots          []string `yaml:"roots"`
	Output         string   `yaml:"output"`
	Format         string   `yaml:"format"`
	LogLevel       string   `yaml:"log_level"`
	MaxConcurrency int      `yaml:"max_concurrency"`
}

func Default() *Config {
	return &Config{
		Roots:    []string{"."},
		Output:   "-",
		Format:   FormatText,
		LogLevel: logrus.InfoLevel.String(),
	}
}

// Path returns the config file named by the environment, if any.
func Path(lookupEnv func(string) (string, bool)) string {
	v, _ := lookupEnv(EnvConfig)
	return v
}

// Load reads a YAML config file. Values that are absent from the file keep
// their defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, exc.Wrap(exc.Location{URI: path}, exc.CodeInvalidConfig, err)
	}
	return Parse(path, b)
}

// Parse decodes YAML config content. Unknown keys are rejected.
func Parse(uri string, content []byte) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, exc.Wrap(exc.Location{URI: uri}, exc.CodeInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return nil, exc.Wrap(exc.Location{URI: uri}, exc.CodeInvalidConfig, err)
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.Format {
	case FormatText, FormatJSON:
	default:
		return exc.Newf(exc.Location{}, exc.CodeInvalidConfig, "unknown format %q", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxConcurrency < 0 {
		return exc.Newf(exc.Location{}, exc.CodeInvalidConfig, "max_concurrency must not be negative, got %d", c.MaxConcurrency)
	}
	if len(c.Roots) < 1 {
		return exc.New(exc.Location{}, exc.CodeInvalidConfig, "at least one root is required")
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (logrus.Level, error) {
	ll, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, exc.Wrap(exc.Location{}, exc.CodeInvalidConfig, err)
	}
	return ll, nil
}
