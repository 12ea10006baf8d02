package ledger

import "github.com/joescharf/votehub/internal/models"

// Reconcile maps the user's standing vote and a newly requested direction to
// the change in tally and the standing vote that results.
//
// Repeating the standing direction retracts it. Switching direction removes
// the old vote and applies the new one in a single step of magnitude 2.
func Reconcile(current models.UserVote, requested models.Direction) (delta int, next models.UserVote) {
	sign := 1
	if requested == models.DirectionDown {
		sign = -1
	}

	switch current {
	case models.VoteFor(requested):
		return -sign, models.UserVoteNone
	case models.UserVoteNone:
		return sign, models.VoteFor(requested)
	default:
		return 2 * sign, models.VoteFor(requested)
	}
}

// Contribution is the amount a standing vote adds to a tally.
func Contribution(v models.UserVote) int {
	switch v {
	case models.UserVoteUp:
		return 1
	case models.UserVoteDown:
		return -1
	}
	return 0
}
