package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/projector"
	"github.com/joescharf/votehub/internal/session"
	"github.com/joescharf/votehub/internal/submit"
)

var (
	listCategory string
	listSort     string

	addTitle    string
	addDesc     string
	addCategory string
	addStatus   string
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List feature requests",
	Long: `List feature requests filtered by category and sorted by votes or date.

Defaults come from list.category and list.sort in the config.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun(cmd.Context(), listCategory, listSort)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <feature-id>",
	Short: "Show feature request details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionAction(cmd.Context(), session.Action{Show: args[0]})
	},
}

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"cats"},
	Short:   "Show feature request counts per category",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionAction(cmd.Context(), session.Action{Categories: true})
	},
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a new feature request",
	Long: `Submit a new feature request. It starts with your upvote and is
placed at the top of the list. Title and description must not be blank.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return addRun(cmd.Context())
	},
}

var voteCmd = &cobra.Command{
	Use:   "vote <feature-id> <up|down>",
	Short: "Vote on a feature request",
	Long: `Vote a feature request up or down.

Voting the same direction twice retracts the vote; voting the other
direction switches it.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sessionAction(cmd.Context(), session.Action{Vote: &session.VoteAction{ID: args[0], Direction: args[1]}})
	},
}

func init() {
	listCmd.Flags().StringVarP(&listCategory, "category", "c", "", "Category to show, or \"all\"")
	listCmd.Flags().StringVarP(&listSort, "sort", "s", "", "Sort order: votes, recent")

	addCmd.Flags().StringVar(&addTitle, "title", "", "Feature title (required)")
	addCmd.Flags().StringVar(&addDesc, "desc", "", "Feature description (required)")
	addCmd.Flags().StringVar(&addCategory, "category", "", "Category (default from feature.default_category)")
	addCmd.Flags().StringVar(&addStatus, "status", "", "Status: under-review, planned, in-progress, completed")
	_ = addCmd.MarkFlagRequired("title")
	_ = addCmd.MarkFlagRequired("desc")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(voteCmd)
}

// newRunner builds a session runner over a fresh ledger with the
// configured view controls, overridden by any non-empty arguments.
func newRunner(ctx context.Context, category, sort string) (*session.Runner, func(), error) {
	if category == "" {
		category = viper.GetString("list.category")
	}
	if sort == "" {
		sort = viper.GetString("list.sort")
	}
	key, err := projector.ParseSortKey(sort)
	if err != nil {
		return nil, nil, err
	}

	l, closeFn, err := newLedger(ctx)
	if err != nil {
		return nil, nil, err
	}
	return session.NewRunner(l, ui, category, key), closeFn, nil
}

// sessionAction runs one action in a throwaway session.
func sessionAction(ctx context.Context, a session.Action) error {
	ctx = ensureContext(ctx)
	r, closeFn, err := newRunner(ctx, "", "")
	if err != nil {
		return err
	}
	defer closeFn()

	return r.Run(ctx, a)
}

func listRun(ctx context.Context, category, sort string) error {
	ctx = ensureContext(ctx)
	r, closeFn, err := newRunner(ctx, category, sort)
	if err != nil {
		return err
	}
	defer closeFn()

	return r.Run(ctx, session.Action{List: &session.ListAction{}})
}

func addRun(ctx context.Context) error {
	ctx = ensureContext(ctx)

	category := addCategory
	if category == "" {
		category = viper.GetString("feature.default_category")
	}
	sub := submit.Submission{
		Title:       addTitle,
		Description: addDesc,
		Category:    category,
		Status:      addStatus,
	}
	if err := sub.Validate(); err != nil {
		return fmt.Errorf("invalid feature request: %w", err)
	}
	if !models.IsKnownCategory(sub.Normalize().Category) {
		ui.Warning("Category %q is not one of: %v", sub.Normalize().Category, models.Categories)
	}

	r, closeFn, err := newRunner(ctx, "", "")
	if err != nil {
		return err
	}
	defer closeFn()

	if err := r.Run(ctx, session.Action{Add: &sub}); err != nil {
		return err
	}
	if dryRun {
		return nil
	}

	fmt.Fprintln(ui.Out)
	return r.Run(ctx, session.Action{List: &session.ListAction{}})
}
