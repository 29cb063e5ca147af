package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var matchRecord string

var errNoMatch = errors.New("record does not match")

var matchCmd = &cobra.Command{
	Use:   "match <entity> <query>",
	Short: "Evaluate a query against a record file",
	Long: `Evaluate a query in memory against one record given as YAML or JSON.

Exits with status 1 when the record does not match.

Examples:
  sieve match issue '"Label" is "bug"' --record issue.yaml
  cat build.json | sieve match build 'failed' --record -`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readRecord(cmd.InOrStdin(), matchRecord)
		if err != nil {
			return err
		}

		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		ok, q, err := s.eng.Match(cmd.Context(), args[0], args[1], data)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintf(cmd.OutOrStdout(), "no match: %s\n", q.String())
			return errNoMatch
		}
		fmt.Fprintf(cmd.OutOrStdout(), "match: %s\n", q.String())
		return nil
	},
}

func init() {
	matchCmd.Flags().StringVarP(&matchRecord, "record", "r", "-", "record file, - for stdin")
	rootCmd.AddCommand(matchCmd)
}

func readRecord(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading record from stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: user supplied record file
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	return data, nil
}
