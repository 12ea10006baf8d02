package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrInvalidDirection = errors.New("invalid vote direction")
)

// FeatureStatus represents where a feature request stands on the roadmap.
type FeatureStatus string

const (
	FeatureStatusPlanned     FeatureStatus = "planned"
	FeatureStatusInProgress  FeatureStatus = "in-progress"
	FeatureStatusCompleted   FeatureStatus = "completed"
	FeatureStatusUnderReview FeatureStatus = "under-review"
)

// FeatureStatuses lists every valid status in roadmap order.
var FeatureStatuses = []FeatureStatus{
	FeatureStatusUnderReview,
	FeatureStatusPlanned,
	FeatureStatusInProgress,
	FeatureStatusCompleted,
}

// ParseStatus converts s into a FeatureStatus.
func ParseStatus(s string) (FeatureStatus, error) {
	for _, st := range FeatureStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Direction is the direction of a single vote action.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection converts s into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// UserVote is the current user's standing vote on a feature.
// The zero value means no vote is in effect.
type UserVote string

const (
	UserVoteNone UserVote = ""
	UserVoteUp   UserVote = "up"
	UserVoteDown UserVote = "down"
)

// VoteFor returns the standing vote that a vote in direction d leaves behind.
func VoteFor(d Direction) UserVote {
	return UserVote(d)
}

func (v UserVote) String() string {
	if v == UserVoteNone {
		return "none"
	}
	return string(v)
}

// FeatureRequest is a user-submitted proposal with a running vote tally.
type FeatureRequest struct {
	ID          string
	Title       string
	Description string
	Status      FeatureStatus
	Category    string
	Votes       int
	Comments    int
	Author      string
	Date        time.Time // calendar date, midnight UTC
	UserVote    UserVote
}

// Clone returns an independent copy of f.
func (f *FeatureRequest) Clone() *FeatureRequest {
	c := *f
	return &c
}

// DateOnly truncates t to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
