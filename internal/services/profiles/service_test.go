package profiles_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/skipdm/edworking/internal/domain/model"
	pgrepo "github.com/skipdm/edworking/internal/repo/postgres"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
	"github.com/skipdm/edworking/internal/services/media"
	"github.com/skipdm/edworking/internal/services/profiles"
)

type stubUserStore struct {
	users     map[int64]model.User
	listCalls int
}

func newStubUserStore(users ...model.User) *stubUserStore {
	s := &stubUserStore{users: map[int64]model.User{}}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *stubUserStore) GetByID(_ context.Context, id int64) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	return u, nil
}

func (s *stubUserStore) Update(_ context.Context, id int64, upd pgrepo.UserUpdate) (model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return model.User{}, pgrepo.ErrUserNotFound
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.City != nil {
		u.City = *upd.City
	}
	if upd.About != nil {
		u.About = *upd.About
	}
	if upd.Profession != nil {
		u.Profession = *upd.Profession
	}
	if upd.AvatarKey != nil {
		u.AvatarKey = *upd.AvatarKey
	}
	s.users[id] = u
	return u, nil
}

func (s *stubUserStore) ListProfiles(_ context.Context) ([]model.Profile, error) {
	s.listCalls++
	profiles := make([]model.Profile, 0, len(s.users))
	for id := int64(1); id <= int64(len(s.users)); id++ {
		if u, ok := s.users[id]; ok {
			profiles = append(profiles, u.Profile())
		}
	}
	return profiles, nil
}

type stubAvatars struct{}

func (stubAvatars) UploadAvatar(_ context.Context, userID int64, _, _ string, _ io.Reader, _ int64, _ string) (media.Avatar, error) {
	return media.Avatar{ObjectKey: "users/avatar/new", URL: "https://s3.test/users/avatar/new"}, nil
}

func (stubAvatars) AvatarURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://s3.test/" + key, nil
}

func newProfilesServiceForTest(t *testing.T, users *stubUserStore) (*profiles.Service, *redrepo.MirrorRepo, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	mirror := redrepo.NewMirrorRepo(client, time.Minute)

	svc := profiles.NewService(profiles.Dependencies{
		Users:   users,
		Mirror:  mirror,
		Avatars: stubAvatars{},
	})

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}
	return svc, mirror, cleanup
}

func testUser(id int64, name string) model.User {
	return model.User{ID: id, TgID: name, DisplayName: name, Email: name + "@example.com"}
}

func TestDirectoryExcludesViewerAndUsesMirror(t *testing.T) {
	users := newStubUserStore(testUser(1, "Alice"), testUser(2, "Boris"), testUser(3, "Clara"))
	svc, _, cleanup := newProfilesServiceForTest(t, users)
	defer cleanup()

	ctx := context.Background()
	views, err := svc.Directory(ctx, 2)
	if err != nil {
		t.Fatalf("directory: %v", err)
	}
	if len(views) != 2 || views[0].UserID != 1 || views[1].UserID != 3 {
		t.Fatalf("unexpected directory: %+v", views)
	}

	// Second read must be served by the mirror.
	if _, err := svc.Directory(ctx, 2); err != nil {
		t.Fatalf("directory from mirror: %v", err)
	}
	if users.listCalls != 1 {
		t.Fatalf("expected a single authoritative read, got %d", users.listCalls)
	}
}

func TestUpdateInvalidatesDirectoryMirror(t *testing.T) {
	users := newStubUserStore(testUser(1, "Alice"), testUser(2, "Boris"))
	svc, _, cleanup := newProfilesServiceForTest(t, users)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.Directory(ctx, 2); err != nil {
		t.Fatalf("warm mirror: %v", err)
	}

	name := "Alice Anderson"
	account, err := svc.Update(ctx, 1, profiles.UpdateInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if account.DisplayName != name {
		t.Fatalf("update echoed %q, want %q", account.DisplayName, name)
	}

	views, err := svc.Directory(ctx, 2)
	if err != nil {
		t.Fatalf("directory after update: %v", err)
	}
	if views[0].DisplayName != name {
		t.Fatalf("directory still serves stale name %q", views[0].DisplayName)
	}
	if users.listCalls != 2 {
		t.Fatalf("expected mirror rebuild after update, listCalls=%d", users.listCalls)
	}
}

func TestUpdateRejectsBlankDisplayName(t *testing.T) {
	users := newStubUserStore(testUser(1, "Alice"))
	svc, _, cleanup := newProfilesServiceForTest(t, users)
	defer cleanup()

	blank := "   "
	if _, err := svc.Update(context.Background(), 1, profiles.UpdateInput{DisplayName: &blank}); !errors.Is(err, profiles.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUploadAvatarSavesKey(t *testing.T) {
	users := newStubUserStore(testUser(1, "Alice"))
	svc, _, cleanup := newProfilesServiceForTest(t, users)
	defer cleanup()

	account, err := svc.UploadAvatar(context.Background(), 1, "a.png", "image/png", nil, 4)
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}
	if account.AvatarKey != "users/avatar/new" {
		t.Fatalf("avatar key not persisted, got %q", account.AvatarKey)
	}
	if account.AvatarURL == "" {
		t.Fatalf("expected presigned avatar url")
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc, _, cleanup := newProfilesServiceForTest(t, newStubUserStore())
	defer cleanup()

	if _, err := svc.Get(context.Background(), 99); !errors.Is(err, profiles.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
