// Package session drives one interactive page view: the current user's
// votes, submissions, and view controls applied to a ledger. Nothing outlives
// the session.
package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/joescharf/votehub/internal/ledger"
	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/output"
	"github.com/joescharf/votehub/internal/projector"
	"github.com/joescharf/votehub/internal/store"
	"github.com/joescharf/votehub/internal/submit"
)

// Runner applies actions to a ledger and renders the resulting views.
// The category filter and sort order persist between actions.
type Runner struct {
	ledger *ledger.Ledger
	ui     *output.UI

	filter string
	sort   projector.SortKey
}

// NewRunner creates a Runner with the initial view controls.
func NewRunner(l *ledger.Ledger, ui *output.UI, filter string, sort projector.SortKey) *Runner {
	if filter == "" {
		filter = models.FilterAll
	}
	if sort == "" {
		sort = projector.SortByVotes
	}
	return &Runner{ledger: l, ui: ui, filter: filter, sort: sort}
}

// Filter returns the current category filter.
func (r *Runner) Filter() string { return r.filter }

// Sort returns the current sort order.
func (r *Runner) Sort() projector.SortKey { return r.sort }

// View returns the projected list for the current controls.
func (r *Runner) View(ctx context.Context) ([]*models.FeatureRequest, error) {
	features, err := r.ledger.Features(ctx)
	if err != nil {
		return nil, err
	}
	return projector.Project(features, r.filter, r.sort), nil
}

// Run executes a single action.
func (r *Runner) Run(ctx context.Context, a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}

	switch {
	case a.List != nil:
		return r.list(ctx, *a.List)
	case a.Vote != nil:
		return r.vote(ctx, *a.Vote)
	case a.Add != nil:
		return r.add(ctx, *a.Add)
	case a.Show != "":
		return r.show(ctx, a.Show)
	case a.Categories:
		return r.categories(ctx)
	case a.Help:
		fmt.Fprint(r.ui.Out, helpText)
	}
	return nil
}

func (r *Runner) list(ctx context.Context, a ListAction) error {
	if a.Sort != "" {
		key, err := projector.ParseSortKey(a.Sort)
		if err != nil {
			return err
		}
		r.sort = key
	}
	if a.Category != "" {
		r.filter = a.Category
	}

	features, err := r.ledger.Features(ctx)
	if err != nil {
		return err
	}
	view := projector.Project(features, r.filter, r.sort)
	r.ui.VerboseLog("filter=%s sort=%s (%d shown)", r.filter, r.sort, len(view))
	RenderList(r.ui, view, IDWidth(features))
	return nil
}

func (r *Runner) vote(ctx context.Context, a VoteAction) error {
	dir, err := models.ParseDirection(strings.ToLower(a.Direction))
	if err != nil {
		return err
	}

	target, err := r.ledger.Resolve(ctx, a.ID)
	if errors.Is(err, store.ErrNotFound) {
		r.ui.Warning("No feature %s; nothing changed", a.ID)
		return nil
	}
	if err != nil {
		return err
	}

	if r.ui.DryRun {
		r.ui.DryRunMsg("Would vote %s on %s", dir, target.ID)
		return nil
	}

	features, err := r.ledger.ApplyVote(ctx, target.ID, dir)
	if err != nil {
		return err
	}

	for _, f := range features {
		if f.ID == target.ID {
			r.ui.Success("%s %s  %s votes, your vote: %s", output.Cyan(shortenID(f.ID, IDWidth(features))), f.Title, output.VotesColor(f.Votes), f.UserVote)
			return nil
		}
	}
	r.ui.Warning("No feature %s; nothing changed", a.ID)
	return nil
}

func (r *Runner) add(ctx context.Context, s submit.Submission) error {
	nf, err := s.Feature()
	if err != nil {
		return err
	}
	if !models.IsKnownCategory(nf.Category) {
		r.ui.VerboseLog("category %q is not in the submission list", nf.Category)
	}

	if r.ui.DryRun {
		r.ui.DryRunMsg("Would add feature: %s [%s]", nf.Title, nf.Category)
		return nil
	}

	f, err := r.ledger.CreateFeature(ctx, nf)
	if err != nil {
		return err
	}
	features, err := r.ledger.Features(ctx)
	if err != nil {
		return err
	}
	r.ui.Success("Created feature %s: %s", output.Cyan(shortenID(f.ID, IDWidth(features))), f.Title)
	return nil
}

func (r *Runner) show(ctx context.Context, id string) error {
	f, err := r.ledger.Resolve(ctx, id)
	if err != nil {
		return err
	}
	RenderFeature(r.ui, f)
	return nil
}

func (r *Runner) categories(ctx context.Context) error {
	features, err := r.ledger.Features(ctx)
	if err != nil {
		return err
	}
	RenderCategories(r.ui, projector.CategoryCounts(features), r.filter)
	return nil
}

// RunScript executes every action of s in order, stopping at the first error.
func (r *Runner) RunScript(ctx context.Context, s *Script) error {
	for i, a := range s.Actions {
		if err := r.Run(ctx, a); err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
	}
	return nil
}

// Interactive reads commands from in until EOF or quit. Errors from
// individual commands are reported and the session continues.
func (r *Runner) Interactive(ctx context.Context, in io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(in)
	for {
		if prompt {
			fmt.Fprint(r.ui.Out, "votehub> ")
		}
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		a, err := ParseLine(line)
		if err != nil {
			r.ui.Error("%v", err)
			continue
		}
		if a.Quit {
			return nil
		}
		if err := r.Run(ctx, a); err != nil {
			if !isUserError(err) {
				return err
			}
			r.ui.Error("%v", err)
		}
	}
	return scanner.Err()
}

// isUserError reports whether err was caused by bad input rather than by the store.
func isUserError(err error) bool {
	for _, target := range []error{
		store.ErrNotFound,
		ledger.ErrAmbiguousID,
		models.ErrInvalidDirection,
		models.ErrInvalidStatus,
		projector.ErrInvalidSortKey,
		submit.ErrEmptyTitle,
		submit.ErrEmptyDescription,
		submit.ErrEmptyCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

const helpText = `Commands:
  list                                  show features with the current filter and sort
  filter <category|all>                 change the category filter
  sort <votes|recent>                   change the sort order
  vote <id> <up|down>                   vote on a feature (also: up <id>, down <id>)
  add <category> | <title> | <description>
                                        submit a new feature request
  show <id>                             show one feature
  categories                            show feature counts per category
  help                                  show this help
  quit                                  end the session
`
