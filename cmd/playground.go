package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/spf13/cobra"

	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/notify"
	"github.com/zjrosen/sieve/internal/playground"
	"github.com/zjrosen/sieve/internal/pubsub"
)

var playgroundEntity string

var playgroundCmd = &cobra.Command{
	Use:   "playground [query]",
	Short: "Interactive query editor",
	Long: `Launch an interactive editor that compiles the query as you type and
lists matching records. Notifications for saved filters are shown as
records are written by other processes.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlayground,
}

func init() {
	playgroundCmd.Flags().StringVarP(&playgroundEntity, "entity", "e", "issue", "entity type selected at start")
	rootCmd.AddCommand(playgroundCmd)
}

func runPlayground(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer func() {
		cancel()
		_ = s.Close(context.WithoutCancel(ctx))
	}()

	initial := ""
	if len(args) == 1 {
		initial = args[0]
	}

	// The footer only shows the latest match, so a full buffer may drop.
	notifications := pubsub.NewBroker[notify.Notification]()
	defer notifications.Close()
	go func() {
		if err := s.eng.Watch(ctx, notifications, cfg.Watch.Debounce); err != nil {
			log.ErrorErr(log.CatWatcher, "Watching for matches failed", err)
		}
	}()

	model := playground.New(ctx, playground.Config{
		Engine:        s.eng,
		Entity:        playgroundEntity,
		Query:         initial,
		Notifications: notifications,
	})
	zone.NewGlobal()
	defer zone.Close()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running playground: %w", err)
	}
	return nil
}
