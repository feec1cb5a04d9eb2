package model

import (
	"time"

	"github.com/skipdm/edworking/internal/domain/enums"
)

// Swipe is one user's decision about another. At most one record exists
// per (actor, target) pair; a later swipe overwrites the action.
type Swipe struct {
	ActorUserID  int64             `json:"actor_user_id"`
	TargetUserID int64             `json:"target_user_id"`
	Action       enums.SwipeAction `json:"action"`
	CreatedAt    time.Time         `json:"created_at"`
}
