package model

import (
	"time"

	"github.com/skipdm/edworking/internal/domain/enums"
)

// Post is immutable once created. Feed ordering is (created_at, id),
// so same-timestamp posts keep their insertion order.
type Post struct {
	ID           int64          `json:"id"`
	AuthorUserID int64          `json:"author_user_id"`
	Kind         enums.PostKind `json:"kind"`
	Body         string         `json:"body"`
	CreatedAt    time.Time      `json:"created_at"`
}
