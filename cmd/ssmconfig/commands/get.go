package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/systmms/ssmconfig/internal/config"
	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/pkg/configstore"
	"gopkg.in/yaml.v3"
)

func NewGetCommand(cfg *config.Config, newRegistry RegistryFactory) *cobra.Command {
	var (
		storeNames []string
		all        bool
		format     string
		timeout    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch one or more stores and print the flattened parameters",
		Long: `Fetch every parameter under the configured path of each store and print
them as a single flat document. When several stores are given, later stores
override keys from earlier ones.

Examples:
  # Print one store as JSON
  ssmconfig get --store app

  # Merge two stores and print YAML
  ssmconfig get --store defaults --store app --format yaml

  # Export as environment variables
  eval "$(ssmconfig get --store app --format env)"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Load(); err != nil {
				return err
			}

			names := storeNames
			if all {
				names = cfg.Definition.StoreNames()
			}
			if len(names) == 0 {
				return dserrors.UserError{
					Message:    "No store selected",
					Suggestion: "Use --store <name> or --all",
				}
			}

			registry := newRegistry(cfg.Logger)
			stores, closeAll, err := openStores(cfg, registry, names)
			defer closeAll()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			merged, err := configstore.GetAll(ctx, stores)
			if err != nil {
				return err
			}
			cfg.Logger.Debug("Resolved %d parameters from %d stores", len(merged), len(stores))

			return writeDocument(cmd.OutOrStdout(), merged, format)
		},
	}

	cmd.Flags().StringArrayVar(&storeNames, "store", nil, "Store name from the config file (repeatable)")
	cmd.Flags().BoolVar(&all, "all", false, "Fetch every configured store")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, yaml, or env")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the fetch after this duration (0 disables)")

	return cmd
}

func writeDocument(w io.Writer, doc map[string]interface{}, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	case "env":
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(w, "%s=%q\n", envName(k), fmt.Sprint(doc[k])); err != nil {
				return err
			}
		}
	default:
		return dserrors.UserError{
			Message:    fmt.Sprintf("Unknown format '%s'", format),
			Suggestion: "Use --format json, yaml, or env",
		}
	}
	return nil
}
