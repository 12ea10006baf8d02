package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/votehub/internal/ledger"
	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/output"
	"github.com/joescharf/votehub/internal/store"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

var rootCmd = &cobra.Command{
	Use:   "votehub",
	Short: "VoteHub - vote on feature requests",
	Long: `votehub is a feature request board for the terminal.
Browse, filter, and sort feature requests, vote them up or down, and
submit new ones. Everything lives in memory for one run or session.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return listRun(cmd.Context(), "", "")
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/votehub/config.yaml)")
}

// setDefaults registers every config key with its default value.
func setDefaults() {
	viper.SetDefault("user.id", "me")
	viper.SetDefault("user.name", "You")
	viper.SetDefault("feature.default_status", string(models.FeatureStatusUnderReview))
	viper.SetDefault("feature.default_category", "Features")
	viper.SetDefault("list.category", models.FilterAll)
	viper.SetDefault("list.sort", "votes")
	viper.SetDefault("store.driver", "memory")
	viper.SetDefault("seed.sample", true)
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		configDir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("VOTEHUB")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}

// newLogger returns the diagnostic logger: debug output on stderr with
// --verbose, discarded otherwise.
func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(ui.ErrOut, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// openStore creates the configured store. Both drivers keep data in memory only.
func openStore(ctx context.Context) (store.Store, error) {
	switch driver := viper.GetString("store.driver"); driver {
	case "memory", "":
		return store.NewMemoryStore(), nil
	case "sqlite":
		s, err := store.NewSQLiteStore()
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("migrate database: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q (want memory or sqlite)", driver)
	}
}

// newLedger opens a store, builds a ledger over it for the configured user,
// and seeds the sample data unless disabled. The returned func releases the store.
func newLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	s, err := openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() { _ = s.Close() }

	defaultStatus, err := models.ParseStatus(viper.GetString("feature.default_status"))
	if err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("feature.default_status: %w", err)
	}

	l := ledger.New(s,
		ledger.WithLogger(newLogger()),
		ledger.WithIdentity(ledger.Identity{
			ID:   viper.GetString("user.id"),
			Name: viper.GetString("user.name"),
		}),
		ledger.WithDefaultStatus(defaultStatus),
	)

	if viper.GetBool("seed.sample") {
		if err := l.Seed(ctx, models.SampleFeatures()); err != nil {
			closeFn()
			return nil, nil, err
		}
		ui.VerboseLog("Seeded %d sample feature requests", len(models.SampleFeatures()))
	}
	return l, closeFn, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
