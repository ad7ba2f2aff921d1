package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmconfig/internal/config"
	"github.com/systmms/ssmconfig/internal/fetch"
)

func NewValidateCommand(cfg *config.Config, newRegistry RegistryFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the configuration file without contacting AWS",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			registry := newRegistry(cfg.Logger)

			for _, name := range cfg.Definition.StoreNames() {
				store := cfg.Definition.Stores[name]
				if !registry.IsSupported(store.Type) {
					return fmt.Errorf("store '%s' has unsupported type '%s' (supported: %v)", name, store.Type, registry.Types())
				}
				options, err := fetch.ParseOptions(name, store.Config)
				if err != nil {
					return err
				}
				cfg.Logger.Debug("Store %s: %s", name, options)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Configuration valid: %d stores\n", len(cfg.Definition.Stores))
			return nil
		},
	}
}
