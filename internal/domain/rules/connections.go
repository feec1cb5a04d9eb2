package rules

import (
	"strings"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

// ChatEligible resolves which profiles should surface in the viewer's chat
// list. The result is the union of two independent relationships:
//
//  1. Outbound job interest: every other user with at least one job-offer
//     post. Any job poster is reachable, whether or not the viewer actually
//     responded to the offer.
//  2. Inbound mention: when the viewer has a job offer of their own, every
//     other user who authored a post whose body mentions the viewer's
//     display name (case-insensitive substring).
//
// Ids without a directory entry are dropped silently. The result follows
// directory order and never contains the viewer.
func ChatEligible(viewer model.Profile, profiles []model.Profile, posts []model.Post) []model.Profile {
	eligible := make(map[int64]struct{})

	for _, post := range posts {
		if post.Kind == enums.PostKindJobOffer && post.AuthorUserID != viewer.UserID {
			eligible[post.AuthorUserID] = struct{}{}
		}
	}

	if viewerHasJobOffer(viewer.UserID, posts) {
		name := strings.ToLower(strings.TrimSpace(viewer.DisplayName))
		if name != "" {
			for _, post := range posts {
				if post.AuthorUserID == viewer.UserID {
					continue
				}
				if strings.Contains(strings.ToLower(post.Body), name) {
					eligible[post.AuthorUserID] = struct{}{}
				}
			}
		}
	}

	return filterDirectory(viewer.UserID, profiles, eligible)
}

// Admirers resolves who liked the viewer. Last-write-wins on the swipe log
// means an actor whose latest action is DISLIKE does not appear.
func Admirers(viewerID int64, profiles []model.Profile, swipes []model.Swipe) []model.Profile {
	admirers := make(map[int64]struct{})
	for _, swipe := range swipes {
		if swipe.TargetUserID == viewerID && swipe.Action == enums.SwipeActionLike {
			admirers[swipe.ActorUserID] = struct{}{}
		}
	}

	return filterDirectory(viewerID, profiles, admirers)
}

func viewerHasJobOffer(viewerID int64, posts []model.Post) bool {
	for _, post := range posts {
		if post.AuthorUserID == viewerID && post.Kind == enums.PostKindJobOffer {
			return true
		}
	}
	return false
}

func filterDirectory(viewerID int64, profiles []model.Profile, ids map[int64]struct{}) []model.Profile {
	out := make([]model.Profile, 0, len(ids))
	for _, profile := range profiles {
		if profile.UserID == viewerID {
			continue
		}
		if _, ok := ids[profile.UserID]; ok {
			out = append(out, profile)
		}
	}
	return out
}
