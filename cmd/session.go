package cmd

import (
	"context"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/votehub/internal/session"
)

var (
	sessionCategory string
	sessionSort     string
)

// sessionInput is where interactive commands are read from, replaceable in tests.
var sessionInput io.Reader = os.Stdin

var sessionCmd = &cobra.Command{
	Use:   "session [script.yaml]",
	Short: "Start a voting session",
	Long: `Start a voting session over the sample feature requests.

With a script file, runs its actions in order and exits. A script looks like:

  actions:
    - vote: {id: "1", direction: up}
    - add: {title: Dark mode toggle, description: "...", category: Features}
    - list: {category: Integration, sort: votes}
    - show: "2"
    - categories: true

Without a script, reads commands from stdin. Type "help" for the list.
All votes and submissions are discarded when the session ends.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var script string
		if len(args) > 0 {
			script = args[0]
		}
		return sessionRun(cmd.Context(), script)
	},
}

func init() {
	sessionCmd.Flags().StringVarP(&sessionCategory, "category", "c", "", "Initial category filter")
	sessionCmd.Flags().StringVarP(&sessionSort, "sort", "s", "", "Initial sort order: votes, recent")
	rootCmd.AddCommand(sessionCmd)
}

func sessionRun(ctx context.Context, script string) error {
	ctx = ensureContext(ctx)

	var s *session.Script
	if script != "" {
		var err error
		if s, err = session.LoadScript(script); err != nil {
			return err
		}
	}

	r, closeFn, err := newRunner(ctx, sessionCategory, sessionSort)
	if err != nil {
		return err
	}
	defer closeFn()

	if s != nil {
		ui.VerboseLog("Running %d actions from %s", len(s.Actions), script)
		return r.RunScript(ctx, s)
	}

	interactive := false
	if f, ok := sessionInput.(*os.File); ok {
		interactive = isatty.IsTerminal(f.Fd())
	}
	if interactive {
		ui.Info("Session started as %s. Type \"help\" for commands.", viper.GetString("user.name"))
	}
	return r.Interactive(ctx, sessionInput, interactive)
}
