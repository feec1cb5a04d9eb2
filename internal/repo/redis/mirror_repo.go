package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/skipdm/edworking/internal/domain/model"
)

// ErrMirrorMiss signals an absent or expired mirror entry; callers fall
// back to the authoritative store and refresh the entry.
var ErrMirrorMiss = errors.New("mirror miss")

const (
	mirrorProfilesKey  = "mirror:profiles"
	mirrorPostsKey     = "mirror:posts"
	mirrorSwipesOutKey = "mirror:swipes:out:"
	mirrorSwipesInKey  = "mirror:swipes:in:"
)

// MirrorRepo is the local read replica of the authoritative store. It is
// read-through only: entries are written exclusively from fresh postgres
// snapshots and dropped whenever the underlying collection mutates. It is
// never pushed back to the backend.
type MirrorRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewMirrorRepo(client *goredis.Client, ttl time.Duration) *MirrorRepo {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &MirrorRepo{client: client, ttl: ttl}
}

func (r *MirrorRepo) GetProfiles(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	if err := r.get(ctx, mirrorProfilesKey, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *MirrorRepo) SetProfiles(ctx context.Context, profiles []model.Profile) error {
	return r.set(ctx, mirrorProfilesKey, profiles)
}

func (r *MirrorRepo) InvalidateProfiles(ctx context.Context) error {
	return r.invalidate(ctx, mirrorProfilesKey)
}

func (r *MirrorRepo) GetPosts(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if err := r.get(ctx, mirrorPostsKey, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *MirrorRepo) SetPosts(ctx context.Context, posts []model.Post) error {
	return r.set(ctx, mirrorPostsKey, posts)
}

func (r *MirrorRepo) InvalidatePosts(ctx context.Context) error {
	return r.invalidate(ctx, mirrorPostsKey)
}

func (r *MirrorRepo) GetSwipesByActor(ctx context.Context, actorUserID int64) ([]model.Swipe, error) {
	var swipes []model.Swipe
	if err := r.get(ctx, swipesOutKey(actorUserID), &swipes); err != nil {
		return nil, err
	}
	return swipes, nil
}

func (r *MirrorRepo) SetSwipesByActor(ctx context.Context, actorUserID int64, swipes []model.Swipe) error {
	return r.set(ctx, swipesOutKey(actorUserID), swipes)
}

func (r *MirrorRepo) GetSwipesTargeting(ctx context.Context, targetUserID int64) ([]model.Swipe, error) {
	var swipes []model.Swipe
	if err := r.get(ctx, swipesInKey(targetUserID), &swipes); err != nil {
		return nil, err
	}
	return swipes, nil
}

func (r *MirrorRepo) SetSwipesTargeting(ctx context.Context, targetUserID int64, swipes []model.Swipe) error {
	return r.set(ctx, swipesInKey(targetUserID), swipes)
}

// InvalidateSwipes drops both slices a recorded swipe can affect: the
// actor's outbound log and the target's inbound log.
func (r *MirrorRepo) InvalidateSwipes(ctx context.Context, actorUserID, targetUserID int64) error {
	return r.invalidate(ctx, swipesOutKey(actorUserID), swipesInKey(targetUserID))
}

func (r *MirrorRepo) get(ctx context.Context, key string, target any) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return ErrMirrorMiss
		}
		return fmt.Errorf("get mirror entry %s: %w", key, err)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		// A corrupt entry behaves like a miss; it gets rewritten from
		// the authoritative snapshot.
		return ErrMirrorMiss
	}

	return nil
}

func (r *MirrorRepo) set(ctx context.Context, key string, value any) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode mirror entry %s: %w", key, err)
	}

	if err := r.client.Set(ctx, key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("set mirror entry %s: %w", key, err)
	}

	return nil
}

func (r *MirrorRepo) invalidate(ctx context.Context, keys ...string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate mirror entries: %w", err)
	}
	return nil
}

func swipesOutKey(actorUserID int64) string {
	return mirrorSwipesOutKey + strconv.FormatInt(actorUserID, 10)
}

func swipesInKey(targetUserID int64) string {
	return mirrorSwipesInKey + strconv.FormatInt(targetUserID, 10)
}
