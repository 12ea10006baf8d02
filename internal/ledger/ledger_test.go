package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/store"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name      string
		current   models.UserVote
		requested models.Direction
		delta     int
		next      models.UserVote
	}{
		{"new upvote", models.UserVoteNone, models.DirectionUp, 1, models.UserVoteUp},
		{"new downvote", models.UserVoteNone, models.DirectionDown, -1, models.UserVoteDown},
		{"retract upvote", models.UserVoteUp, models.DirectionUp, -1, models.UserVoteNone},
		{"retract downvote", models.UserVoteDown, models.DirectionDown, 1, models.UserVoteNone},
		{"switch up to down", models.UserVoteUp, models.DirectionDown, -2, models.UserVoteDown},
		{"switch down to up", models.UserVoteDown, models.DirectionUp, 2, models.UserVoteUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, next := Reconcile(tt.current, tt.requested)
			assert.Equal(t, tt.delta, delta)
			assert.Equal(t, tt.next, next)

			// the delta always moves the tally from the old contribution to the new one
			assert.Equal(t, Contribution(tt.next)-Contribution(tt.current), delta)
		})
	}
}

var testDate = time.Date(2026, time.October, 18, 15, 4, 5, 0, time.UTC)

func newTestLedger(t *testing.T, s store.Store, seed ...*models.FeatureRequest) *Ledger {
	t.Helper()
	n := 0
	l := New(s,
		WithClock(clockwork.NewFakeClockAt(testDate)),
		WithIdentity(Identity{ID: "u1", Name: "Test User"}),
		WithIDFunc(func() string {
			n++
			return "new-" + string(rune('0'+n))
		}),
	)
	if len(seed) == 0 {
		seed = models.SampleFeatures()
	}
	require.NoError(t, l.Seed(context.Background(), seed))
	return l
}

func newSQLiteLedger(t *testing.T, seed ...*models.FeatureRequest) *Ledger {
	t.Helper()
	s, err := store.NewSQLiteStore()
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return newTestLedger(t, s, seed...)
}

// ledgerFactories runs behaviour tests against each store implementation.
var ledgerFactories = map[string]func(t *testing.T, seed ...*models.FeatureRequest) *Ledger{
	"memory": func(t *testing.T, seed ...*models.FeatureRequest) *Ledger {
		return newTestLedger(t, store.NewMemoryStore(), seed...)
	},
	"sqlite": newSQLiteLedger,
}

func forEachLedger(t *testing.T, fn func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger)) {
	for name, factory := range ledgerFactories {
		t.Run(name, func(t *testing.T) {
			fn(t, factory)
		})
	}
}

func find(t *testing.T, features []*models.FeatureRequest, id string) *models.FeatureRequest {
	t.Helper()
	for _, f := range features {
		if f.ID == id {
			return f
		}
	}
	require.Failf(t, "feature not found", "id %s", id)
	return nil
}

func TestSeed_PreservesOrder(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		l := newLedger(t)
		features, err := l.Features(context.Background())
		require.NoError(t, err)
		require.Len(t, features, 8)
		for i, f := range features {
			assert.Equal(t, models.SampleFeatures()[i], f)
		}
	})
}

func TestApplyVote_Scenarios(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		// retracting an existing upvote
		features, err := l.ApplyVote(ctx, "1", models.DirectionUp)
		require.NoError(t, err)
		f := find(t, features, "1")
		assert.Equal(t, 123, f.Votes)
		assert.Equal(t, models.UserVoteNone, f.UserVote)

		// fresh downvote
		features, err = l.ApplyVote(ctx, "2", models.DirectionDown)
		require.NoError(t, err)
		f = find(t, features, "2")
		assert.Equal(t, 88, f.Votes)
		assert.Equal(t, models.UserVoteDown, f.UserVote)

		// switching from down to up
		features, err = l.ApplyVote(ctx, "2", models.DirectionUp)
		require.NoError(t, err)
		f = find(t, features, "2")
		assert.Equal(t, 90, f.Votes)
		assert.Equal(t, models.UserVoteUp, f.UserVote)
	})
}

func TestApplyVote_ToggleOff(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		for _, dir := range []models.Direction{models.DirectionUp, models.DirectionDown} {
			_, err := l.ApplyVote(ctx, "3", dir)
			require.NoError(t, err)
			features, err := l.ApplyVote(ctx, "3", dir)
			require.NoError(t, err)

			f := find(t, features, "3")
			assert.Equal(t, 156, f.Votes, dir)
			assert.Equal(t, models.UserVoteNone, f.UserVote, dir)
		}
	})
}

func TestApplyVote_Switch(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		features, err := l.ApplyVote(ctx, "1", models.DirectionDown)
		require.NoError(t, err)
		f := find(t, features, "1")
		assert.Equal(t, 122, f.Votes)
		assert.Equal(t, models.UserVoteDown, f.UserVote)
	})
}

func TestApplyVote_ReplayMatchesStoredTally(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		seq := []models.Direction{
			models.DirectionUp, models.DirectionDown, models.DirectionDown, models.DirectionUp,
			models.DirectionUp, models.DirectionDown, models.DirectionUp, models.DirectionUp,
			models.DirectionDown, models.DirectionDown, models.DirectionDown,
		}

		const baseline = 92 // feature 6 starts with no standing vote
		vote := models.UserVoteNone
		votes := baseline
		for i, dir := range seq {
			features, err := l.ApplyVote(ctx, "6", dir)
			require.NoError(t, err)

			delta, next := Reconcile(vote, dir)
			votes += delta
			vote = next

			f := find(t, features, "6")
			assert.Equal(t, votes, f.Votes, "step %d", i)
			assert.Equal(t, vote, f.UserVote, "step %d", i)
			assert.Equal(t, baseline+Contribution(f.UserVote), f.Votes, "step %d", i)
		}
	})
}

func TestApplyVote_UnknownIDIsNoop(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		before, err := l.Features(ctx)
		require.NoError(t, err)

		after, err := l.ApplyVote(ctx, "does-not-exist", models.DirectionUp)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})
}

func TestApplyVote_OnlyTargetChanges(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		before, err := l.Features(ctx)
		require.NoError(t, err)

		after, err := l.ApplyVote(ctx, "5", models.DirectionUp)
		require.NoError(t, err)
		require.Len(t, after, len(before))

		for i := range before {
			if before[i].ID == "5" {
				assert.Equal(t, before[i].Votes+1, after[i].Votes)
				continue
			}
			assert.Equal(t, before[i], after[i])
		}

		// values handed out earlier are untouched
		assert.Equal(t, 203, find(t, before, "5").Votes)
	})
}

func TestApplyVote_InvalidDirection(t *testing.T) {
	l := newTestLedger(t, store.NewMemoryStore())
	_, err := l.ApplyVote(context.Background(), "1", models.Direction("sideways"))
	assert.ErrorIs(t, err, models.ErrInvalidDirection)

	f, err := l.Feature(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, 124, f.Votes)
}

func TestCreateFeature(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		created, err := l.CreateFeature(ctx, NewFeature{
			Title:       "Dark mode toggle",
			Description: "desc",
			Category:    "Features",
		})
		require.NoError(t, err)

		assert.Equal(t, "new-1", created.ID)
		assert.Equal(t, 1, created.Votes)
		assert.Equal(t, 0, created.Comments)
		assert.Equal(t, models.UserVoteUp, created.UserVote)
		assert.Equal(t, "Test User", created.Author)
		assert.Equal(t, models.FeatureStatusUnderReview, created.Status)
		assert.Equal(t, time.Date(2026, time.October, 18, 0, 0, 0, 0, time.UTC), created.Date)

		features, err := l.Features(ctx)
		require.NoError(t, err)
		require.Len(t, features, 9)
		assert.Equal(t, created, features[0])
		assert.Equal(t, "1", features[1].ID)
	})
}

func TestCreateFeature_ThenRetractOwnUpvote(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t)

		created, err := l.CreateFeature(ctx, NewFeature{Title: "t", Description: "d", Category: "Security"})
		require.NoError(t, err)

		features, err := l.ApplyVote(ctx, created.ID, models.DirectionUp)
		require.NoError(t, err)
		f := find(t, features, created.ID)
		assert.Equal(t, 0, f.Votes)
		assert.Equal(t, models.UserVoteNone, f.UserVote)
	})
}

func TestCreateFeature_ExplicitStatusAndDefault(t *testing.T) {
	ctx := context.Background()
	l := New(store.NewMemoryStore(), WithDefaultStatus(models.FeatureStatusPlanned))

	f, err := l.CreateFeature(ctx, NewFeature{Title: "a", Description: "b", Category: "Platform"})
	require.NoError(t, err)
	assert.Equal(t, models.FeatureStatusPlanned, f.Status)
	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "You", f.Author)

	g, err := l.CreateFeature(ctx, NewFeature{Title: "a", Description: "b", Category: "Platform", Status: models.FeatureStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, models.FeatureStatusCompleted, g.Status)
	assert.NotEqual(t, f.ID, g.ID)

	features, err := l.Features(ctx)
	require.NoError(t, err)
	require.Len(t, features, 2)
	assert.Equal(t, g.ID, features[0].ID)
}

func TestVotesAreScopedToUser(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()

	alice := New(s, WithIdentity(Identity{ID: "alice", Name: "Alice"}))
	require.NoError(t, alice.Seed(ctx, []*models.FeatureRequest{{ID: "x", Title: "t", Description: "d", Category: "Features", Votes: 10}}))

	bob := New(s, WithIdentity(Identity{ID: "bob", Name: "Bob"}))

	_, err := alice.ApplyVote(ctx, "x", models.DirectionUp)
	require.NoError(t, err)
	features, err := bob.ApplyVote(ctx, "x", models.DirectionUp)
	require.NoError(t, err)

	f := find(t, features, "x")
	assert.Equal(t, 12, f.Votes)
	assert.Equal(t, models.UserVoteUp, f.UserVote)

	features, err = alice.ApplyVote(ctx, "x", models.DirectionUp)
	require.NoError(t, err)
	f = find(t, features, "x")
	assert.Equal(t, 11, f.Votes)
	assert.Equal(t, models.UserVoteNone, f.UserVote)
}

func TestResolve(t *testing.T) {
	forEachLedger(t, func(t *testing.T, newLedger func(t *testing.T, seed ...*models.FeatureRequest) *Ledger) {
		ctx := context.Background()
		l := newLedger(t,
			&models.FeatureRequest{ID: "01M58DYG8XTA51V4B10SBK9RJW", Title: "first", Category: "Features"},
			&models.FeatureRequest{ID: "01M58DYG8XTA51V4B10QZJ8PYF", Title: "second", Category: "Features"},
			&models.FeatureRequest{ID: "01M58", Title: "short", Category: "Features"},
		)

		f, err := l.Resolve(ctx, "01M58DYG8XTA51V4B10SBK9RJW")
		require.NoError(t, err)
		assert.Equal(t, "first", f.Title)

		f, err = l.Resolve(ctx, "01m58dyg8xta51v4b10q")
		require.NoError(t, err)
		assert.Equal(t, "second", f.Title)

		// a full id wins over longer ids sharing it as a prefix
		f, err = l.Resolve(ctx, "01M58")
		require.NoError(t, err)
		assert.Equal(t, "short", f.Title)

		_, err = l.Resolve(ctx, "01M58DYG8XTA")
		assert.ErrorIs(t, err, ErrAmbiguousID)
		assert.Contains(t, err.Error(), "matches 2 features")

		_, err = l.Resolve(ctx, "ZZZ")
		assert.ErrorIs(t, err, store.ErrNotFound)

		_, err = l.Resolve(ctx, "")
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}
