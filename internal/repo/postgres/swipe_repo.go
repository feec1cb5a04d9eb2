package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

type SwipeRepo struct {
	pool *pgxpool.Pool
}

func NewSwipeRepo(pool *pgxpool.Pool) *SwipeRepo {
	return &SwipeRepo{pool: pool}
}

// Upsert records a swipe with last-write-wins semantics: a repeated swipe
// on the same (actor, target) pair overwrites the action in place. The
// bool reports whether a row changed (a repeat of the identical action
// leaves the log as-is).
func (r *SwipeRepo) Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action enums.SwipeAction, now time.Time) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 || !action.Valid() {
		return false, fmt.Errorf("invalid swipe payload")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	result, err := tx.Exec(ctx, `
INSERT INTO swipes (
	actor_user_id,
	target_user_id,
	action,
	created_at
) VALUES ($1, $2, $3, $4)
ON CONFLICT (actor_user_id, target_user_id) DO UPDATE SET
	action     = EXCLUDED.action,
	created_at = EXCLUDED.created_at
WHERE swipes.action IS DISTINCT FROM EXCLUDED.action
`, actorUserID, targetUserID, string(action), now.UTC())
	if err != nil {
		return false, fmt.Errorf("upsert swipe: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// HasLike reports whether actor's current decision about target is LIKE.
// Used inside the record transaction to detect a mutual like.
func (r *SwipeRepo) HasLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error) {
	if actorUserID <= 0 || targetUserID <= 0 {
		return false, fmt.Errorf("invalid swipe pair")
	}
	if tx == nil {
		return false, fmt.Errorf("transaction is required")
	}

	var exists bool
	err := tx.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1 FROM swipes
	WHERE actor_user_id = $1 AND target_user_id = $2 AND action = 'LIKE'
)
`, actorUserID, targetUserID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check mutual like: %w", err)
	}

	return exists, nil
}

func (r *SwipeRepo) ListByActor(ctx context.Context, actorUserID int64) ([]model.Swipe, error) {
	return r.list(ctx, `WHERE actor_user_id = $1`, actorUserID)
}

func (r *SwipeRepo) ListTargeting(ctx context.Context, targetUserID int64) ([]model.Swipe, error) {
	return r.list(ctx, `WHERE target_user_id = $1`, targetUserID)
}

func (r *SwipeRepo) list(ctx context.Context, where string, arg int64) ([]model.Swipe, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if arg <= 0 {
		return nil, fmt.Errorf("invalid user id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT actor_user_id, target_user_id, action, created_at
FROM swipes
`+where+`
ORDER BY created_at, actor_user_id, target_user_id
`, arg)
	if err != nil {
		return nil, fmt.Errorf("list swipes: %w", err)
	}
	defer rows.Close()

	var swipes []model.Swipe
	for rows.Next() {
		var s model.Swipe
		var action string
		if err := rows.Scan(&s.ActorUserID, &s.TargetUserID, &action, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan swipe row: %w", err)
		}
		s.Action = enums.SwipeAction(action)
		swipes = append(swipes, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swipe rows: %w", err)
	}

	return swipes, nil
}
