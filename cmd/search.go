package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zjrosen/sieve/internal/engine"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search <entity> [query]",
	Short: "Search stored records",
	Long: `Run a query against the stored records of an entity type.
An empty query lists every record.

Examples:
  sieve search issue '"Status" is "Open" order by "Priority" desc'
  sieve search codecomment 'mentioned me and unresolved' --user bob
  sieve search pack '"Type" is "npm"' --format json | jq '.[].version'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := ""
		if len(args) == 2 {
			input = args[1]
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		res, err := s.eng.Search(cmd.Context(), args[0], input, searchLimit)
		if err != nil {
			return err
		}
		return writeResult(cmd.OutOrStdout(), res, searchFormat)
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 50, "maximum number of records, 0 for all")
	searchCmd.Flags().StringVarP(&searchFormat, "format", "f", "text", "output format: text, json or yaml")
	rootCmd.AddCommand(searchCmd)
}

func writeResult(w io.Writer, res *engine.Result, format string) error {
	switch format {
	case "text":
		for _, r := range res.Records {
			if _, err := fmt.Fprintln(w, r); err != nil {
				return err
			}
		}
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res.Records)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res.Records); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (expected text, json or yaml)", format)
}
