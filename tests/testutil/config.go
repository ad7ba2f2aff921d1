// Package testutil provides shared helpers for ssmconfig tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/systmms/ssmconfig/internal/config"
	"gopkg.in/yaml.v3"
)

// TestConfigBuilder builds ssmconfig.yaml files for tests.
//
//	path := testutil.NewTestConfig(t).
//	    WithSSMStore("app", "/app", map[string]interface{}{"parsePath": true}).
//	    Write()
type TestConfigBuilder struct {
	definition *config.Definition
	tempDir    string
	t          *testing.T
}

// NewTestConfig starts from an empty version 0 definition.
func NewTestConfig(t *testing.T) *TestConfigBuilder {
	t.Helper()

	return &TestConfigBuilder{
		definition: &config.Definition{
			Version: 0,
			Stores:  make(map[string]config.StoreConfig),
		},
		tempDir: t.TempDir(),
		t:       t,
	}
}

// WithStore adds a store of any type.
func (b *TestConfigBuilder) WithStore(name, storeType string, options map[string]interface{}) *TestConfigBuilder {
	if options == nil {
		options = make(map[string]interface{})
	}
	b.definition.Stores[name] = config.StoreConfig{Type: storeType, Config: options}
	return b
}

// WithSSMStore adds an aws-ssm store rooted at path.
func (b *TestConfigBuilder) WithSSMStore(name, path string, options map[string]interface{}) *TestConfigBuilder {
	merged := map[string]interface{}{"path": path}
	for k, v := range options {
		merged[k] = v
	}
	return b.WithStore(name, "aws-ssm", merged)
}

// Definition returns the definition built so far.
func (b *TestConfigBuilder) Definition() *config.Definition {
	return b.definition
}

// Write marshals the definition to ssmconfig.yaml in a temp dir and returns its path.
func (b *TestConfigBuilder) Write() string {
	b.t.Helper()

	data, err := yaml.Marshal(b.definition)
	if err != nil {
		b.t.Fatalf("failed to marshal test config: %v", err)
	}
	return WriteConfigFile(b.t, b.tempDir, string(data))
}

// WriteConfigFile writes raw YAML to dir/ssmconfig.yaml.
func WriteConfigFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "ssmconfig.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}
