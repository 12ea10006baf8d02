package store

import (
	"context"
	"errors"

	"github.com/joescharf/votehub/internal/models"
)

// ErrNotFound is returned when a feature id does not exist.
var ErrNotFound = errors.New("feature not found")

// Store defines the persistence interface for votehub.
//
// Standing votes are keyed by (user id, feature id). The FeatureRequest
// values a Store returns carry the UserVote of the user they were read for.
// Returned values are copies; mutating them never changes the store.
type Store interface {
	// ListFeatures returns every feature, most recently inserted first.
	ListFeatures(ctx context.Context, userID string) ([]*models.FeatureRequest, error)
	GetFeature(ctx context.Context, id, userID string) (*models.FeatureRequest, error)
	// InsertFeature places f at the head of the collection and records
	// f.UserVote as userID's standing vote. An empty f.ID is filled in with
	// a new ULID, so the caller can read the assigned id from f.
	InsertFeature(ctx context.Context, f *models.FeatureRequest, userID string) error
	// RecordVote adds delta to the feature's tally and sets userID's standing
	// vote to next in one atomic step.
	RecordVote(ctx context.Context, featureID, userID string, next models.UserVote, delta int) error

	Close() error
}
