package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/zjrosen/sieve/internal/config"
	"github.com/zjrosen/sieve/internal/engine"
	"github.com/zjrosen/sieve/internal/log"
	"github.com/zjrosen/sieve/internal/store"
	"github.com/zjrosen/sieve/internal/tracing"
)

func init() {
	// Force lipgloss/termenv to query terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text in the query input.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version   = "dev"
	cfgFile   string
	debugFlag bool
	cfg       config.Config
	cfgErr    error

	logCleanup func()
)

var rootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "Query issues, code comments, packages and builds",
	Long: `sieve compiles a small query language into predicates that run both
against stored records in SQLite and against single records in memory.

Examples:
  sieve seed
  sieve search issue '"Status" is "Open" and "Priority" is greater than "2"'
  sieve compile codecomment 'mentioned me and unresolved' --sql
  sieve playground`,
	Version:            version,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: .sieve/config.yaml, then ~/.config/sieve/config.yaml)")
	rootCmd.PersistentFlags().String("db", "",
		"path to the sieve database")
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false,
		"write debug logs (also SIEVE_DEBUG=1)")
	rootCmd.PersistentFlags().String("user", "",
		`login that "me" refers to`)

	// Bind flags to viper
	_ = viper.BindPFlag("database", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("query.current_user", rootCmd.PersistentFlags().Lookup("user"))
}

func initConfig() {
	cfg, cfgErr = config.Load(viper.GetViper(), cfgFile)
}

func setup(_ *cobra.Command, _ []string) error {
	if cfgErr != nil {
		return cfgErr
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug || debugFlag {
		logPath := cfg.LogPath
		if logPath == "" {
			logPath = config.DefaultLogPath()
		}
		cleanup, err := log.Init(logPath)
		if err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		logCleanup = cleanup
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			log.SetMinLevel(level)
		}
		log.Info(log.CatConfig, "sieve starting", "version", version, "config", viper.ConfigFileUsed(), "database", cfg.Database)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if logCleanup != nil {
		logCleanup()
		logCleanup = nil
	}
	return nil
}

// session holds the resources a command runs against.
type session struct {
	db     *store.DB
	eng    *engine.Engine
	tracer *tracing.Provider
}

// openSession opens the database, builds the engine from the query
// configuration and syncs the saved filters declared in the config file.
func openSession(ctx context.Context) (*session, error) {
	tp, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("creating tracer: %w", err)
	}
	loc, err := cfg.Query.Location()
	if err != nil {
		return nil, err
	}

	db, err := store.NewDB(cfg.Database, store.WithTracer(tp.Tracer()))
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &session{
		db: db,
		eng: engine.New(db, engine.Options{
			Location:                loc,
			CacheTTL:                cfg.Query.CacheTTL,
			CurrentUser:             cfg.Query.CurrentUser,
			WithCurrentUserCriteria: cfg.Query.WithCurrentUserCriteria,
			Tracer:                  tp.Tracer(),
		}),
		tracer: tp,
	}
	if err := syncSavedFilters(ctx, s.eng, cfg.SavedFilters); err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close releases the database and flushes traces.
func (s *session) Close(ctx context.Context) error {
	return errors.Join(s.db.Close(), s.tracer.Shutdown(ctx))
}

// syncSavedFilters validates the declared filters and stores them.
func syncSavedFilters(ctx context.Context, eng *engine.Engine, filters []config.SavedFilterConfig) error {
	err := config.ValidateSavedFilters(filters, func(entityName, input string) error {
		return eng.Validate(ctx, entityName, input)
	})
	if err != nil {
		return fmt.Errorf("invalid saved filter configuration: %w", err)
	}
	for _, f := range filters {
		if _, err := eng.SaveFilter(ctx, f.Entity, f.Name, f.Query, f.Notify); err != nil {
			return err
		}
	}
	return nil
}

// configPath returns the config file in use, or the project default.
func configPath() string {
	if p := viper.ConfigFileUsed(); p != "" {
		return p
	}
	return config.ProjectConfigPath
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
