package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration
type Config struct {
	Path       string
	Logger     *logging.Logger
	Definition *Definition
}

// Definition represents the ssmconfig.yaml structure
type Definition struct {
	Version int                    `yaml:"version"`
	Stores  map[string]StoreConfig `yaml:"stores"`
}

// StoreConfig names a store type and carries its raw options
type StoreConfig struct {
	Type   string                 `yaml:"type"`
	Config map[string]interface{} `yaml:",inline"`
}

// Load reads, parses and validates the configuration file
func (c *Config) Load() error {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return dserrors.ConfigError{
				Field:      "path",
				Value:      c.Path,
				Message:    "configuration file not found",
				Suggestion: "Create ssmconfig.yaml or pass --config <file>",
			}
		}
		return dserrors.UserError{
			Message:    "Failed to read configuration file",
			Details:    err.Error(),
			Suggestion: "Check file permissions and path",
			Err:        err,
		}
	}

	def, err := Parse(data)
	if err != nil {
		return err
	}

	c.Definition = def
	return nil
}

// Parse decodes and validates a configuration document
func Parse(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, dserrors.ConfigError{
			Message:    "invalid YAML syntax in configuration file",
			Suggestion: "Check for indentation errors, missing quotes, or invalid characters. Use a YAML validator",
		}
	}

	if def.Version != 0 {
		return nil, dserrors.ConfigError{
			Field:      "version",
			Value:      def.Version,
			Message:    "unsupported configuration version",
			Suggestion: "Set 'version: 0' at the top of your ssmconfig.yaml file",
		}
	}

	for _, name := range def.StoreNames() {
		store := def.Stores[name]
		if store.Type == "" {
			return nil, dserrors.ConfigError{
				Store:      name,
				Field:      "type",
				Message:    "store type is required",
				Suggestion: "Set 'type: aws-ssm'",
			}
		}
		if err := ValidateStoreOptions(name, store.Type, store.Config); err != nil {
			return nil, err
		}
	}

	return &def, nil
}

// StoreNames returns the configured store names, sorted
func (d *Definition) StoreNames() []string {
	names := make([]string, 0, len(d.Stores))
	for name := range d.Stores {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetStore returns the configuration for a named store
func (c *Config) GetStore(name string) (StoreConfig, error) {
	if c.Definition == nil {
		return StoreConfig{}, dserrors.UserError{
			Message:    "Configuration not loaded",
			Suggestion: "This is an internal error. Please report it",
		}
	}

	store, ok := c.Definition.Stores[name]
	if !ok {
		suggestion := "Add the store to the 'stores:' section of your ssmconfig.yaml"
		if available := c.Definition.StoreNames(); len(available) > 0 {
			suggestion = fmt.Sprintf("Available stores: %s", strings.Join(available, ", "))
		}
		return StoreConfig{}, dserrors.ConfigError{
			Field:      "store",
			Value:      name,
			Message:    "store not found in configuration",
			Suggestion: suggestion,
		}
	}

	if store.Config == nil {
		store.Config = map[string]interface{}{}
	}
	return store, nil
}
