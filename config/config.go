// Package config loads the engine's typed options from YAML, mirroring
// the teacher pack's convention of a plain struct populated either by
// flags or by a config file, with the zero value meaning "disabled".
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Option is the engine's tunable behaviour.
type Option struct {
	// Autosplit starts a new span when a <char>'s pre-transform y offset
	// changes within one <span> tag.
	Autosplit bool `yaml:"autosplit"`

	// Spacing inserts an empty paragraph before each output paragraph.
	Spacing bool `yaml:"spacing"`

	// Rotation groups paragraphs sharing a rotated CTM into rotated text
	// boxes instead of emitting them as plain paragraphs.
	Rotation bool `yaml:"rotation"`

	// TraceLevel names a schuko/tracing verbosity: Debug, Info or Error.
	// Default sets it to Error. Nothing in this module reads it: cmd/extract
	// takes its trace level from the -trace flag instead.
	TraceLevel string `yaml:"trace_level"`

	// ScratchCapacityHint seeds the initial capacity of each docx.Buffer.
	// Purely a performance hint; it never changes output.
	ScratchCapacityHint int `yaml:"scratch_capacity_hint"`
}

// Default returns the zero-value Option with TraceLevel defaulted to
// "Error", matching the convention that an empty config means "quiet".
func Default() Option {
	return Option{TraceLevel: "Error"}
}

// Load reads an Option from a YAML file at path. Fields the file omits
// keep Default()'s value, since Unmarshal only overwrites fields it finds.
func Load(path string) (Option, error) {
	opt := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Option{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &opt); err != nil {
		return Option{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return opt, nil
}
