package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmconfig/internal/config"
)

func NewStoresCommand(cfg *config.Config, newRegistry RegistryFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "stores",
		Short: "List configured stores",
		Long: `Display the stores defined in the configuration file with their type,
path and whether the type is supported by this build.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}
			registry := newRegistry(cfg.Logger)

			out := cmd.OutOrStdout()
			names := cfg.Definition.StoreNames()
			if len(names) == 0 {
				_, _ = fmt.Fprintln(out, "No stores configured")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(w, "NAME\tTYPE\tPATH\tSTATUS\n")
			for _, name := range names {
				store := cfg.Definition.Stores[name]
				status := "configured"
				if !registry.IsSupported(store.Type) {
					status = "unsupported"
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", name, store.Type, store.Config["path"], status)
			}
			return w.Flush()
		},
	}
}
