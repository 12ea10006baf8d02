// Package ledger owns the feature request collection and applies the current
// user's votes and submissions to it.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/joescharf/votehub/internal/models"
	"github.com/joescharf/votehub/internal/store"
)

// ErrAmbiguousID is returned when an id prefix matches more than one feature.
var ErrAmbiguousID = errors.New("ambiguous feature id")

// Identity is the current user as supplied by the surrounding application.
type Identity struct {
	ID   string
	Name string
}

// NewFeature carries the caller-validated fields of a submission.
// An empty Status means the ledger's default status.
type NewFeature struct {
	Title       string
	Description string
	Category    string
	Status      models.FeatureStatus
}

// Ledger applies votes and submissions for a single current user.
// Mutations are serialized; every change is visible to the next read.
type Ledger struct {
	mu sync.Mutex

	store         store.Store
	clock         clockwork.Clock
	logger        *slog.Logger
	user          Identity
	newID         func() string
	defaultStatus models.FeatureStatus
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock sets the clock used to date new features.
func WithClock(c clockwork.Clock) Option {
	return func(l *Ledger) { l.clock = c }
}

// WithLogger sets the logger for ledger events.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) { l.logger = logger }
}

// WithIdentity sets the current user.
func WithIdentity(id Identity) Option {
	return func(l *Ledger) { l.user = id }
}

// WithIDFunc replaces the id generator for new features.
func WithIDFunc(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

// WithDefaultStatus sets the status given to features created without one.
func WithDefaultStatus(s models.FeatureStatus) Option {
	return func(l *Ledger) { l.defaultStatus = s }
}

// New creates a Ledger backed by s.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:         s,
		clock:         clockwork.NewRealClock(),
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		user:          Identity{ID: "me", Name: "You"},
		newID:         store.NewID,
		defaultStatus: models.FeatureStatusUnderReview,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// User returns the identity votes and submissions are attributed to.
func (l *Ledger) User() Identity {
	return l.user
}

// Features returns the current collection, newest submission first.
func (l *Ledger) Features(ctx context.Context) ([]*models.FeatureRequest, error) {
	features, err := l.store.ListFeatures(ctx, l.user.ID)
	if err != nil {
		return nil, fmt.Errorf("list features: %w", err)
	}
	return features, nil
}

// Feature returns a single feature by id.
func (l *Ledger) Feature(ctx context.Context, id string) (*models.FeatureRequest, error) {
	return l.store.GetFeature(ctx, id, l.user.ID)
}

// Resolve finds a feature by full id, or by an id prefix (case-insensitive)
// that matches exactly one feature.
func (l *Ledger) Resolve(ctx context.Context, ref string) (*models.FeatureRequest, error) {
	// Try exact match first
	f, err := l.store.GetFeature(ctx, ref, l.user.ID)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if ref == "" {
		return nil, err
	}

	features, err := l.Features(ctx)
	if err != nil {
		return nil, err
	}

	upper := strings.ToUpper(ref)
	var matches []*models.FeatureRequest
	for _, f := range features {
		if strings.HasPrefix(strings.ToUpper(f.ID), upper) {
			matches = append(matches, f)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return nil, fmt.Errorf("%w %s: matches %d features", ErrAmbiguousID, ref, len(matches))
	}
}

// Seed loads records into the collection keeping their order. A record's
// UserVote becomes the current user's standing vote on it.
func (l *Ledger) Seed(ctx context.Context, records []*models.FeatureRequest) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(records) - 1; i >= 0; i-- {
		if err := l.store.InsertFeature(ctx, records[i].Clone(), l.user.ID); err != nil {
			return fmt.Errorf("seed feature %s: %w", records[i].ID, err)
		}
	}
	l.logger.Debug("seeded features", "count", len(records))
	return nil
}

// ApplyVote records a vote by the current user on the feature with the given
// id and returns the updated collection. An unknown id leaves the collection
// unchanged and is not an error.
func (l *Ledger) ApplyVote(ctx context.Context, id string, dir models.Direction) ([]*models.FeatureRequest, error) {
	if _, err := models.ParseDirection(string(dir)); err != nil {
		return nil, err
	}

	l.mu.Lock()
	err := l.applyVote(ctx, id, dir)
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return l.Features(ctx)
}

func (l *Ledger) applyVote(ctx context.Context, id string, dir models.Direction) error {
	f, err := l.store.GetFeature(ctx, id, l.user.ID)
	if errors.Is(err, store.ErrNotFound) {
		l.logger.Debug("vote on unknown feature ignored", "feature_id", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get feature: %w", err)
	}

	delta, next := Reconcile(f.UserVote, dir)
	if err := l.store.RecordVote(ctx, id, l.user.ID, next, delta); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("record vote: %w", err)
	}

	l.logger.Debug("vote applied",
		"feature_id", id,
		"direction", string(dir),
		"previous", f.UserVote.String(),
		"current", next.String(),
		"delta", delta,
		"votes", f.Votes+delta,
	)
	return nil
}

// CreateFeature adds a submission to the head of the collection. The
// submission starts with the current user's upvote and is dated today.
// Callers are responsible for validating nf.
func (l *Ledger) CreateFeature(ctx context.Context, nf NewFeature) (*models.FeatureRequest, error) {
	status := nf.Status
	if status == "" {
		status = l.defaultStatus
	}

	f := &models.FeatureRequest{
		ID:          l.newID(),
		Title:       nf.Title,
		Description: nf.Description,
		Status:      status,
		Category:    nf.Category,
		Votes:       Contribution(models.UserVoteUp),
		Comments:    0,
		Author:      l.user.Name,
		Date:        models.DateOnly(l.clock.Now().UTC()),
		UserVote:    models.UserVoteUp,
	}

	l.mu.Lock()
	err := l.store.InsertFeature(ctx, f, l.user.ID)
	l.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create feature: %w", err)
	}

	l.logger.Debug("feature created", "feature_id", f.ID, "category", f.Category, "status", string(f.Status))
	return f.Clone(), nil
}
