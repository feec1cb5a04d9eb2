package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

func newTestMirror(t *testing.T) (*MirrorRepo, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := NewClient(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = client.Close() })

	return NewMirrorRepo(client, time.Minute), mr
}

func TestMirrorRepoMissThenHit(t *testing.T) {
	repo, _ := newTestMirror(t)
	ctx := context.Background()

	if _, err := repo.GetProfiles(ctx); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected mirror miss, got %v", err)
	}

	profiles := []model.Profile{
		{UserID: 1, DisplayName: "Alice"},
		{UserID: 2, DisplayName: "Boris"},
	}
	if err := repo.SetProfiles(ctx, profiles); err != nil {
		t.Fatalf("set profiles: %v", err)
	}

	got, err := repo.GetProfiles(ctx)
	if err != nil {
		t.Fatalf("get profiles: %v", err)
	}
	if len(got) != 2 || got[0].UserID != 1 || got[1].DisplayName != "Boris" {
		t.Fatalf("unexpected profiles snapshot: %+v", got)
	}
}

func TestMirrorRepoInvalidateDropsEntry(t *testing.T) {
	repo, _ := newTestMirror(t)
	ctx := context.Background()

	posts := []model.Post{{ID: 7, AuthorUserID: 1, Kind: enums.PostKindJobOffer, Body: "hiring"}}
	if err := repo.SetPosts(ctx, posts); err != nil {
		t.Fatalf("set posts: %v", err)
	}
	if err := repo.InvalidatePosts(ctx); err != nil {
		t.Fatalf("invalidate posts: %v", err)
	}

	if _, err := repo.GetPosts(ctx); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected mirror miss after invalidation, got %v", err)
	}
}

func TestMirrorRepoInvalidateSwipesDropsBothSides(t *testing.T) {
	repo, _ := newTestMirror(t)
	ctx := context.Background()

	out := []model.Swipe{{ActorUserID: 1, TargetUserID: 2, Action: enums.SwipeActionLike}}
	in := []model.Swipe{{ActorUserID: 1, TargetUserID: 2, Action: enums.SwipeActionLike}}
	if err := repo.SetSwipesByActor(ctx, 1, out); err != nil {
		t.Fatalf("set outbound swipes: %v", err)
	}
	if err := repo.SetSwipesTargeting(ctx, 2, in); err != nil {
		t.Fatalf("set inbound swipes: %v", err)
	}

	if err := repo.InvalidateSwipes(ctx, 1, 2); err != nil {
		t.Fatalf("invalidate swipes: %v", err)
	}

	if _, err := repo.GetSwipesByActor(ctx, 1); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected outbound miss, got %v", err)
	}
	if _, err := repo.GetSwipesTargeting(ctx, 2); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected inbound miss, got %v", err)
	}
}

func TestMirrorRepoExpiredEntryIsMiss(t *testing.T) {
	repo, mr := newTestMirror(t)
	ctx := context.Background()

	if err := repo.SetProfiles(ctx, []model.Profile{{UserID: 1}}); err != nil {
		t.Fatalf("set profiles: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := repo.GetProfiles(ctx); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected mirror miss after ttl, got %v", err)
	}
}

func TestMirrorRepoCorruptEntryIsMiss(t *testing.T) {
	repo, mr := newTestMirror(t)
	ctx := context.Background()

	if err := mr.Set("mirror:profiles", "not json"); err != nil {
		t.Fatalf("seed corrupt entry: %v", err)
	}

	if _, err := repo.GetProfiles(ctx); !errors.Is(err, ErrMirrorMiss) {
		t.Fatalf("expected mirror miss for corrupt entry, got %v", err)
	}
}
