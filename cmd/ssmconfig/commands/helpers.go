package commands

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/systmms/ssmconfig/internal/config"
	"github.com/systmms/ssmconfig/internal/logging"
	"github.com/systmms/ssmconfig/pkg/configstore"
)

// RegistryFactory builds the store registry once the logger is known
type RegistryFactory func(logger *logging.Logger) *configstore.Registry

// openStores creates the named stores. The returned close function closes
// every store that was opened, even when err is non-nil.
func openStores(cfg *config.Config, registry *configstore.Registry, names []string) ([]configstore.Store, func(), error) {
	var stores []configstore.Store
	closeAll := func() {
		for _, s := range stores {
			_ = s.Close(context.Background())
		}
	}

	for _, name := range names {
		storeCfg, err := cfg.GetStore(name)
		if err != nil {
			return nil, closeAll, err
		}
		store, err := registry.Create(storeCfg.Type, name, storeCfg.Config)
		if err != nil {
			return nil, closeAll, fmt.Errorf("failed to create store '%s': %w", name, err)
		}
		stores = append(stores, store)
	}

	return stores, closeAll, nil
}

var envUnsafe = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// envName turns a parameter key into an environment variable name,
// e.g. "db/password" -> "DB_PASSWORD"
func envName(key string) string {
	name := envUnsafe.ReplaceAllString(key, "_")
	name = strings.Trim(name, "_")
	return strings.ToUpper(name)
}
