package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
	authsvc "github.com/skipdm/edworking/internal/services/auth"
	connsvc "github.com/skipdm/edworking/internal/services/connections"
	"github.com/skipdm/edworking/internal/transport/http/dto"
)

type connDirectoryStub struct {
	profiles []model.Profile
}

func (s connDirectoryStub) DirectorySnapshot(context.Context) ([]model.Profile, error) {
	return s.profiles, nil
}

type connPostsStub struct {
	posts []model.Post
}

func (s connPostsStub) Snapshot(context.Context) ([]model.Post, error) {
	return s.posts, nil
}

type connSwipesStub struct {
	swipes []model.Swipe
}

func (s connSwipesStub) ListTargeting(_ context.Context, targetUserID int64) ([]model.Swipe, error) {
	var out []model.Swipe
	for _, sw := range s.swipes {
		if sw.TargetUserID == targetUserID {
			out = append(out, sw)
		}
	}
	return out, nil
}

type connMirrorStub struct{}

func (connMirrorStub) GetSwipesTargeting(context.Context, int64) ([]model.Swipe, error) {
	return nil, redrepo.ErrMirrorMiss
}

func (connMirrorStub) SetSwipesTargeting(context.Context, int64, []model.Swipe) error {
	return nil
}

type connSignerStub struct{}

func (connSignerStub) AvatarURL(_ context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}
	return "https://signed.local/" + key, nil
}

func newConnectionsHandlerForTest(dir connDirectoryStub, posts connPostsStub, swipes connSwipesStub) *ConnectionsHandler {
	svc := connsvc.NewService(connsvc.Dependencies{
		Directory: dir,
		Posts:     posts,
		Swipes:    swipes,
		Mirror:    connMirrorStub{},
		Avatars:   connSignerStub{},
	})
	return NewConnectionsHandler(svc)
}

func doConnections(handler http.HandlerFunc, viewerID int64, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if viewerID > 0 {
		ctx := authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: viewerID, SID: "sid"})
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestConnectionsHandlerChats(t *testing.T) {
	dir := connDirectoryStub{profiles: []model.Profile{
		{UserID: 1, DisplayName: "Alice"},
		{UserID: 2, DisplayName: "Boris"},
		{UserID: 3, DisplayName: "Clara"},
	}}
	posts := connPostsStub{posts: []model.Post{
		{ID: 1, AuthorUserID: 2, Kind: enums.PostKindJobOffer, Body: "hiring"},
		{ID: 2, AuthorUserID: 3, Kind: enums.PostKindUpdate, Body: "just an update"},
	}}
	handler := newConnectionsHandlerForTest(dir, posts, connSwipesStub{})

	rec := doConnections(handler.Chats, 1, "/api/connections/chats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var res dto.ChatListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Chats) != 1 || res.Chats[0].UserID != 2 {
		t.Fatalf("unexpected chats: %+v", res.Chats)
	}
}

func TestConnectionsHandlerAdmirers(t *testing.T) {
	dir := connDirectoryStub{profiles: []model.Profile{
		{UserID: 1, DisplayName: "Alice"},
		{UserID: 2, DisplayName: "Boris", AvatarKey: "users/2/avatar/a.png"},
	}}
	swipes := connSwipesStub{swipes: []model.Swipe{
		{ActorUserID: 2, TargetUserID: 1, Action: enums.SwipeActionLike},
	}}
	handler := newConnectionsHandlerForTest(dir, connPostsStub{}, swipes)

	rec := doConnections(handler.Admirers, 1, "/api/connections/admirers")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var res dto.AdmirersResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(res.Admirers) != 1 || res.Admirers[0].UserID != 2 {
		t.Fatalf("unexpected admirers: %+v", res.Admirers)
	}
	if res.Admirers[0].AvatarURL != "https://signed.local/users/2/avatar/a.png" {
		t.Fatalf("unexpected avatar url %q", res.Admirers[0].AvatarURL)
	}
}

func TestConnectionsHandlerUnauthorized(t *testing.T) {
	handler := newConnectionsHandlerForTest(connDirectoryStub{}, connPostsStub{}, connSwipesStub{})

	rec := doConnections(handler.Chats, 0, "/api/connections/chats")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401", rec.Code)
	}
}
