// SPDX-License-Identifier: EPL-2.0

// Package config reads the host configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pion/logging"
	"gopkg.in/yaml.v3"

	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/dsp"
)

// ErrInvalid indicates a configuration that parsed but cannot be used.
var ErrInvalid = errors.New("invalid config")

const maxBlockFrames = audio.MaxDecodeFrames

// Config is the host configuration as read from YAML.
type Config struct {
	// BlockFrames is the number of frames requested per decode call.
	BlockFrames int    `yaml:"block_frames"`
	LogLevel    string `yaml:"log_level"`
	// Decoders enables decoders by name, in resolution order. Empty means
	// every registered decoder in registration order.
	Decoders []string     `yaml:"decoders"`
	Chain    []dsp.Preset `yaml:"chain"`
	Output   OutputConfig `yaml:"output"`
}

// OutputConfig selects where and how rendered audio is written.
type OutputConfig struct {
	// Path of the rendered WAV file; empty renders to a level meter only.
	Path string `yaml:"path"`
	// SampleRate converts the output when non-zero.
	SampleRate int `yaml:"sample_rate"`
	BitDepth   int `yaml:"bit_depth"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		BlockFrames: 1024,
		LogLevel:    "info",
		Output: OutputConfig{
			BitDepth: 16,
		},
	}
}

// Load reads and validates the file at path. Keys absent from the file keep
// their Default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML data. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and names.
func (c *Config) Validate() error {
	var errs []error

	if c.BlockFrames <= 0 || c.BlockFrames > maxBlockFrames {
		errs = append(errs, fmt.Errorf("block_frames %d not in [1, %d]", c.BlockFrames, maxBlockFrames))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Output.SampleRate < 0 || c.Output.SampleRate > 768000 {
		errs = append(errs, fmt.Errorf("output.sample_rate %d not in [0, 768000]", c.Output.SampleRate))
	}
	if !slices.Contains([]int{16, 24, 32}, c.Output.BitDepth) {
		errs = append(errs, fmt.Errorf("output.bit_depth %d is not 16, 24 or 32", c.Output.BitDepth))
	}
	for i, p := range c.Chain {
		if strings.TrimSpace(p.Effect) == "" {
			errs = append(errs, fmt.Errorf("chain[%d] has no effect name", i))
		}
	}
	for i, name := range c.Decoders {
		if strings.TrimSpace(name) == "" {
			errs = append(errs, fmt.Errorf("decoders[%d] is empty", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

var levels = map[string]logging.LogLevel{
	"disabled": logging.LogLevelDisabled,
	"error":    logging.LogLevelError,
	"warn":     logging.LogLevelWarn,
	"info":     logging.LogLevelInfo,
	"debug":    logging.LogLevelDebug,
	"trace":    logging.LogLevelTrace,
}

// ParseLevel maps a level name to a logging level. The empty name is info.
func ParseLevel(name string) (logging.LogLevel, error) {
	if name == "" {
		return logging.LogLevelInfo, nil
	}
	l, ok := levels[strings.ToLower(name)]
	if !ok {
		return logging.LogLevelDisabled, fmt.Errorf("unknown log_level %q", name)
	}
	return l, nil
}

// LoggerFactory returns a factory logging at the configured level to w.
func (c *Config) LoggerFactory(w io.Writer) *logging.DefaultLoggerFactory {
	f := logging.NewDefaultLoggerFactory()
	if l, err := ParseLevel(c.LogLevel); err == nil {
		f.DefaultLogLevel = l
	}
	if w != nil {
		f.Writer = w
	}
	return f
}
