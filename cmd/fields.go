package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/zjrosen/sieve/internal/engine"
	"github.com/zjrosen/sieve/internal/query"
)

var (
	fieldsPlain bool
	fieldsWidth int
)

var fieldsCmd = &cobra.Command{
	Use:   "fields [entity]",
	Short: "Describe the fields and operators of entity types",
	Long: `Describe the queryable fields of an entity type, the operators each
field accepts, and the fields results can be ordered by.

Examples:
  sieve fields
  sieve fields build
  sieve fields issue --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		types := engine.Entities()
		if len(args) == 1 {
			t, err := engine.Entity(args[0])
			if err != nil {
				return err
			}
			types = []engine.EntityType{t}
		}

		md := fieldsMarkdown(types)
		if fieldsPlain {
			_, err := fmt.Fprint(cmd.OutOrStdout(), md)
			return err
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithStylePath("dark"),
			glamour.WithWordWrap(fieldsWidth),
		)
		if err != nil {
			return err
		}
		out, err := r.Render(md)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	fieldsCmd.Flags().BoolVar(&fieldsPlain, "plain", false, "print markdown without rendering")
	fieldsCmd.Flags().IntVar(&fieldsWidth, "width", 100, "word wrap width")
	rootCmd.AddCommand(fieldsCmd)
}

// fieldsMarkdown documents types as one markdown section each.
func fieldsMarkdown(types []engine.EntityType) string {
	var sb strings.Builder
	for i, t := range types {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "# %s\n\n", t.Name())
		sb.WriteString("| Field | Type | Operators |\n|---|---|---|\n")
		for _, f := range t.Fields() {
			ops := make([]string, len(f.Operators))
			for j, op := range f.Operators {
				ops[j] = op.String()
			}
			kind := f.Kind.String()
			if len(f.Enum) > 0 {
				kind += ": " + strings.Join(f.Enum, ", ")
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", f.Name, kind, strings.Join(ops, ", "))
		}

		var unary, valued []string
		for _, op := range t.Operators() {
			switch op.Shape() {
			case query.ShapeValue:
				valued = append(valued, "`"+op.String()+` "..."`+"`")
			case query.ShapeUnary:
				unary = append(unary, "`"+op.String()+"`")
			}
		}
		if len(unary)+len(valued) > 0 {
			fmt.Fprintf(&sb, "\nCriteria: %s\n", strings.Join(append(unary, valued...), ", "))
		}
		fmt.Fprintf(&sb, "\nOrder by: %s\n", strings.Join(t.OrderFields(), ", "))
	}
	return sb.String()
}
