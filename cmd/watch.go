package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/metrics"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/pubsub"
)

var watchMetricsAddr string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print notifications as new records match saved filters",
	Long: `Watch the database for writes and match newly saved records against
every saved filter with notify enabled. Each match is printed as one line.

Examples:
  sieve filters save build failures 'failed' --notify
  sieve watch
  sieve watch --metrics-addr localhost:9090`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close(context.Background()) }()

		addr := watchMetricsAddr
		if addr == "" {
			addr = cfg.Metrics.Addr
		}

		out := cmd.OutOrStdout()
		printer := pubsub.PublisherFunc[notify.Notification](func(_ pubsub.EventType, n notify.Notification) {
			fmt.Fprintln(out, n)
		})

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return s.eng.Watch(ctx, printer, cfg.Watch.Debounce)
		})
		if addr != "" {
			g.Go(func() error {
				log.Info(log.CatMatch, "Serving metrics", "addr", addr)
				return metrics.Serve(ctx, addr)
			})
		}

		fmt.Fprintln(cmd.ErrOrStderr(), "Watching for matches, press Ctrl+C to stop")
		return g.Wait()
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (overrides config)")
	rootCmd.AddCommand(watchCmd)
}
