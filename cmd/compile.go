package cmd

import (
	"fmt"
	"io"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/zjrosen/sieve/internal/engine"
	"github.com/zjrosen/sieve/internal/query"
)

var (
	compileSQL  bool
	compileDiff bool
)

var compileCmd = &cobra.Command{
	Use:   "compile <entity> <query>",
	Short: "Compile a query and print its canonical form",
	Long: `Compile a query for an entity type and print its canonical text.

Examples:
  sieve compile issue '"status" is "open"'
  sieve compile issue '"Spent Time" is greater than "90m"' --diff
  sieve compile build 'failed and on commit "main"' --sql`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		q, err := s.eng.Compile(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return printCompiled(cmd.OutOrStdout(), args[1], q, compileSQL, compileDiff)
	},
}

func init() {
	compileCmd.Flags().BoolVar(&compileSQL, "sql", false, "print the SQL predicate, arguments and ordering")
	compileCmd.Flags().BoolVar(&compileDiff, "diff", false, "show how the input differs from the canonical form")
	rootCmd.AddCommand(compileCmd)
}

func printCompiled(w io.Writer, input string, q engine.Compiled, withSQL, withDiff bool) error {
	if _, err := fmt.Fprintln(w, query.Highlight(q.String())); err != nil {
		return err
	}
	if withDiff {
		fmt.Fprintln(w, normalizationDiff(input, q.String()))
	}
	if withSQL {
		p := q.Predicate()
		if p.SQL != "" {
			fmt.Fprintf(w, "WHERE %s\n", p.SQL)
			fmt.Fprintf(w, "ARGS %v\n", p.Args)
		}
		fmt.Fprintf(w, "ORDER BY %s\n", q.OrderBy())
	}
	return nil
}

// normalizationDiff renders the edits turning input into its canonical
// form, or a note when there are none.
func normalizationDiff(input, canonical string) string {
	if input == canonical {
		return "(already canonical)"
	}
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(input, canonical, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	return dmp.DiffPrettyText(diffs)
}
