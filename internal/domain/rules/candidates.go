package rules

import "github.com/skipdm/edworking/internal/domain/model"

// Candidates returns every profile in directory order the viewer has not
// swiped yet, skipping the viewer's own profile.
func Candidates(viewerID int64, profiles []model.Profile, swipes []model.Swipe) []model.Profile {
	swiped := make(map[int64]struct{}, len(swipes))
	for _, swipe := range swipes {
		if swipe.ActorUserID == viewerID {
			swiped[swipe.TargetUserID] = struct{}{}
		}
	}

	var out []model.Profile
	for _, profile := range profiles {
		if profile.UserID == viewerID {
			continue
		}
		if _, ok := swiped[profile.UserID]; ok {
			continue
		}
		out = append(out, profile)
	}

	return out
}

// NextCandidate returns the first unswiped profile in directory order. The
// second return is false when the deck is exhausted; an empty deck is a
// terminal state the caller must render, not an error.
func NextCandidate(viewerID int64, profiles []model.Profile, swipes []model.Swipe) (model.Profile, bool) {
	candidates := Candidates(viewerID, profiles, swipes)
	if len(candidates) == 0 {
		return model.Profile{}, false
	}
	return candidates[0], true
}
