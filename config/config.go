// Package config loads golox session settings from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"golox/interpreter"
)

const DefaultFileName = ".golox.yaml"

type Config struct {
	Prompt             string   `yaml:"prompt"`
	ContinuationPrompt string   `yaml:"continuation_prompt"`
	HistoryFile        string   `yaml:"history_file"`
	Natives            []string `yaml:"natives"`
	DumpTokens         bool     `yaml:"dump_tokens"`
	DumpAST            bool     `yaml:"dump_ast"`

	// Path is where the config was read from; empty for defaults.
	Path string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Prompt:             "lox> ",
		ContinuationPrompt: "...> ",
		HistoryFile:        "~/.golox_history",
		Natives:            []string{"clock"},
	}
}

// Load reads path on top of the defaults. Unknown keys are an error.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: resolve %s: %w", path, err)
	}
	file, err := os.Open(abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	defer file.Close()

	cfg, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", abs, err)
	}
	cfg.Path = abs
	return cfg, nil
}

// Decode parses YAML from r on top of the defaults and validates it.
func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Encode writes c as YAML. Path is not written.
func (c *Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	return enc.Close()
}

// LoadDefault reads ~/.golox.yaml when it exists and falls back to the
// defaults otherwise.
func LoadDefault() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return Default(), nil
	}
	path := filepath.Join(home, DefaultFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	return Load(path)
}

func (c *Config) Validate() error {
	known := map[string]bool{}
	for _, n := range interpreter.NativeNames() {
		known[n] = true
	}
	for _, n := range c.Natives {
		if !known[n] {
			return fmt.Errorf("unknown native %q (available: %s)", n, strings.Join(interpreter.NativeNames(), ", "))
		}
	}
	if c.Prompt == "" {
		c.Prompt = Default().Prompt
	}
	if c.ContinuationPrompt == "" {
		c.ContinuationPrompt = Default().ContinuationPrompt
	}
	return nil
}

// HistoryPath is HistoryFile with a leading ~/ expanded. Empty disables history.
func (c *Config) HistoryPath() string {
	return expandHome(c.HistoryFile)
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	if p == "~" {
		return home
	}
	return filepath.Join(home, p[2:])
}
