// Package config loads the declarative users/formats file that drives game
// creation.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"raic-cli/internal/model"
)

// File is the parsed declarative config: the ordered user specs and the
// ordered format encodings.
type File struct {
	Users   []model.UserSpec `yaml:"users"`
	Formats []string         `yaml:"formats"`
}

// Load reads and validates the YAML config at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.NewConfigError(path, err)
	}
	return Parse(data)
}

// Parse validates raw YAML config bytes.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, model.NewConfigError("config", fmt.Errorf("malformed YAML: %w", err))
	}

	if len(f.Users) == 0 {
		return nil, model.NewConfigError("users", fmt.Errorf("at least one user spec is required"))
	}
	for i, spec := range f.Users {
		if err := spec.Validate(); err != nil {
			return nil, model.NewConfigError(fmt.Sprintf("users[%d]", i), err)
		}
	}

	if len(f.EnabledFormats()) == 0 {
		return nil, model.NewConfigError("formats", fmt.Errorf("at least one enabled format is required"))
	}
	return &f, nil
}

// EnabledFormats returns the format encodings that are not commented out,
// in declared order. A leading "#" marks an entry as disabled.
func (f *File) EnabledFormats() []string {
	var enabled []string
	for _, entry := range f.Formats {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.HasPrefix(entry, "#") {
			continue
		}
		enabled = append(enabled, entry)
	}
	return enabled
}
