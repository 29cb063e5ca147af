package cmd

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sieve/internal/config"
	"github.com/zjrosen/sieve/internal/query"
)

var (
	filterNotify   bool
	filterNoConfig bool
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Manage saved filters",
	Long: `Saved filters are named queries stored in canonical form. Filters with
notify enabled are matched against newly saved records by 'sieve watch'.

Filters saved here are also written to the saved_filters section of the
config file, so they survive a fresh database.`,
}

var filtersSaveCmd = &cobra.Command{
	Use:   "save <entity> <name> <query>",
	Short: "Compile and save a filter",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		f, err := s.eng.SaveFilter(cmd.Context(), args[0], args[1], args[2], filterNotify)
		if err != nil {
			return err
		}
		if !filterNoConfig {
			filters := upsertFilterConfig(cfg.SavedFilters, config.SavedFilterConfig{
				Name: f.Name, Entity: f.Entity, Query: f.Query, Notify: f.Notify,
			})
			if err := config.SaveSavedFilters(configPath(), filters); err != nil {
				return err
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s/%s: %s\n", f.Entity, f.Name, query.Highlight(f.Query))
		return nil
	},
}

var filtersListCmd = &cobra.Command{
	Use:   "list [entity]",
	Short: "List saved filters",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entityName := ""
		if len(args) == 1 {
			entityName = args[0]
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		filters, err := s.db.SavedFilters().List(cmd.Context(), entityName)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ENTITY\tNAME\tNOTIFY\tQUERY")
		for _, f := range filters {
			fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", f.Entity, f.Name, f.Notify, f.Query)
		}
		return tw.Flush()
	},
}

var filtersDeleteCmd = &cobra.Command{
	Use:   "delete <entity> <name>",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		f, err := s.db.SavedFilters().Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if err := s.db.SavedFilters().Delete(cmd.Context(), f.GUID); err != nil {
			return err
		}
		if !filterNoConfig {
			filters := removeFilterConfig(cfg.SavedFilters, f.Entity, f.Name)
			if len(filters) != len(cfg.SavedFilters) {
				if err := config.SaveSavedFilters(configPath(), filters); err != nil {
					return err
				}
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s/%s\n", f.Entity, f.Name)
		return nil
	},
}

func init() {
	filtersSaveCmd.Flags().BoolVar(&filterNotify, "notify", false, "notify when new records match")
	filtersCmd.PersistentFlags().BoolVar(&filterNoConfig, "no-config", false, "do not update the config file")
	filtersCmd.AddCommand(filtersSaveCmd, filtersListCmd, filtersDeleteCmd)
	rootCmd.AddCommand(filtersCmd)
}

// upsertFilterConfig replaces the filter with the same entity and name, or
// appends f.
func upsertFilterConfig(filters []config.SavedFilterConfig, f config.SavedFilterConfig) []config.SavedFilterConfig {
	out := slices.Clone(filters)
	for i := range out {
		if out[i].Entity == f.Entity && out[i].Name == f.Name {
			out[i] = f
			return out
		}
	}
	return append(out, f)
}

func removeFilterConfig(filters []config.SavedFilterConfig, entityName, name string) []config.SavedFilterConfig {
	return slices.DeleteFunc(slices.Clone(filters), func(f config.SavedFilterConfig) bool {
		return f.Entity == entityName && f.Name == name
	})
}
