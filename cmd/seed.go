package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zjrosen/sieve/internal/seed"
)

var seedOpts = seed.DefaultOptions(time.Time{})

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo records",
	Long: `Fill the database with a deterministic demo dataset: five users
(alice, bob, carol, dave, erin), commits with the refs main, develop,
feature/x, v1.0 and v1.1, and issues, code comments, packages and builds
dated over the last four weeks.

Records with the same ids are replaced, so seeding is repeatable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(cmd.Context()) }()

		opts := seedOpts
		opts.Now = time.Now()
		summary, err := seed.Populate(cmd.Context(), s.db, opts)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %s: %s\n", s.db.Path(), summary)
		return nil
	},
}

func init() {
	seedCmd.Flags().Uint64Var(&seedOpts.Seed, "seed", seedOpts.Seed, "random seed")
	seedCmd.Flags().IntVar(&seedOpts.Issues, "issues", seedOpts.Issues, "number of issues")
	seedCmd.Flags().IntVar(&seedOpts.CodeComments, "comments", seedOpts.CodeComments, "number of code comments")
	seedCmd.Flags().IntVar(&seedOpts.Packs, "packs", seedOpts.Packs, "number of packages")
	seedCmd.Flags().IntVar(&seedOpts.Builds, "builds", seedOpts.Builds, "number of builds")
	rootCmd.AddCommand(seedCmd)
}
