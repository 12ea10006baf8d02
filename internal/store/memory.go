package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/joescharf/votehub/internal/models"
)

type voteKey struct {
	userID    string
	featureID string
}

// MemoryStore implements Store with a copy-on-write slice.
type MemoryStore struct {
	mu       sync.RWMutex
	features []*models.FeatureRequest
	votes    map[voteKey]models.UserVote
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{votes: make(map[voteKey]models.UserVote)}
}

func (s *MemoryStore) view(f *models.FeatureRequest, userID string) *models.FeatureRequest {
	c := f.Clone()
	c.UserVote = s.votes[voteKey{userID: userID, featureID: f.ID}]
	return c
}

func (s *MemoryStore) indexOf(id string) int {
	for i, f := range s.features {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) ListFeatures(_ context.Context, userID string) ([]*models.FeatureRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.FeatureRequest, len(s.features))
	for i, f := range s.features {
		out[i] = s.view(f, userID)
	}
	return out, nil
}

func (s *MemoryStore) GetFeature(_ context.Context, id, userID string) (*models.FeatureRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.view(s.features[i], userID), nil
}

// InsertFeature assigns f.ID when it is empty; the stored row is a copy of f.
func (s *MemoryStore) InsertFeature(_ context.Context, f *models.FeatureRequest, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = newULID()
	}
	if s.indexOf(f.ID) >= 0 {
		return fmt.Errorf("insert feature: duplicate id %s", f.ID)
	}

	row := f.Clone()
	row.UserVote = models.UserVoteNone

	next := make([]*models.FeatureRequest, 0, len(s.features)+1)
	next = append(next, row)
	s.features = append(next, s.features...)

	if f.UserVote != models.UserVoteNone {
		s.votes[voteKey{userID: userID, featureID: f.ID}] = f.UserVote
	}
	return nil
}

func (s *MemoryStore) RecordVote(_ context.Context, featureID, userID string, next models.UserVote, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(featureID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, featureID)
	}

	row := s.features[i].Clone()
	row.Votes += delta

	features := make([]*models.FeatureRequest, len(s.features))
	copy(features, s.features)
	features[i] = row
	s.features = features

	key := voteKey{userID: userID, featureID: featureID}
	if next == models.UserVoteNone {
		delete(s.votes, key)
	} else {
		s.votes[key] = next
	}
	return nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}
