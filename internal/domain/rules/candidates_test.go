package rules

import (
	"testing"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

func TestNextCandidateSkipsSelfAndSwiped(t *testing.T) {
	profiles := directory(1, 2, 3)
	swipes := []model.Swipe{
		{ActorUserID: 1, TargetUserID: 2, Action: enums.SwipeActionDislike},
	}

	candidate, ok := NextCandidate(1, profiles, swipes)
	if !ok {
		t.Fatalf("expected a candidate")
	}
	if candidate.UserID != 3 {
		t.Fatalf("unexpected candidate: got %d want 3", candidate.UserID)
	}
}

func TestNextCandidateExhaustedDeck(t *testing.T) {
	profiles := directory(1, 2, 3)
	swipes := []model.Swipe{
		{ActorUserID: 1, TargetUserID: 2, Action: enums.SwipeActionLike},
		{ActorUserID: 1, TargetUserID: 3, Action: enums.SwipeActionDislike},
	}

	if _, ok := NextCandidate(1, profiles, swipes); ok {
		t.Fatalf("deck must be empty when every non-self profile is swiped")
	}
}

func TestNextCandidateIgnoresOtherViewersSwipes(t *testing.T) {
	profiles := directory(1, 2)
	swipes := []model.Swipe{
		{ActorUserID: 3, TargetUserID: 2, Action: enums.SwipeActionDislike},
	}

	candidate, ok := NextCandidate(1, profiles, swipes)
	if !ok || candidate.UserID != 2 {
		t.Fatalf("foreign swipes must not shrink the deck: got ok=%v id=%d", ok, candidate.UserID)
	}
}

func TestNextCandidateNeverReoffersOverwrittenPair(t *testing.T) {
	profiles := directory(1, 2)

	// Dislike then Like on the same pair collapses to one record.
	swipes := []model.Swipe{
		{ActorUserID: 1, TargetUserID: 2, Action: enums.SwipeActionLike},
	}

	if _, ok := NextCandidate(1, profiles, swipes); ok {
		t.Fatalf("swiped target must never be re-offered")
	}
}
