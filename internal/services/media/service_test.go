package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"
)

type stubStorage struct {
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: map[string][]byte{}}
}

func (s *stubStorage) EnsureBucket(context.Context) error { return nil }

func (s *stubStorage) PutObject(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	if s.putErr != nil {
		return s.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *stubStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://s3.test/" + key, nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func TestUploadAvatarStoresObjectAndDropsPrevious(t *testing.T) {
	storage := newStubStorage()
	svc := NewService(storage)
	storage.objects["users/7/avatar/old.png"] = []byte("old")

	body := bytes.NewReader([]byte("png-bytes"))
	avatar, err := svc.UploadAvatar(context.Background(), 7, "me.png", "image/png", body, int64(body.Len()), "users/7/avatar/old.png")
	if err != nil {
		t.Fatalf("upload avatar: %v", err)
	}

	if !strings.HasPrefix(avatar.ObjectKey, "users/7/avatar/") {
		t.Fatalf("unexpected object key %q", avatar.ObjectKey)
	}
	if !strings.HasSuffix(avatar.ObjectKey, ".png") {
		t.Fatalf("object key should keep extension, got %q", avatar.ObjectKey)
	}
	if avatar.URL != "https://s3.test/"+avatar.ObjectKey {
		t.Fatalf("unexpected presigned url %q", avatar.URL)
	}
	if _, ok := storage.objects[avatar.ObjectKey]; !ok {
		t.Fatalf("object was not stored")
	}
	if len(storage.deleted) != 1 || storage.deleted[0] != "users/7/avatar/old.png" {
		t.Fatalf("previous avatar was not removed: %v", storage.deleted)
	}
}

func TestUploadAvatarRejectsBadInput(t *testing.T) {
	svc := NewService(newStubStorage())
	ctx := context.Background()
	body := []byte("data")

	cases := []struct {
		name     string
		userID   int64
		fileName string
		size     int64
	}{
		{"zero user", 0, "a.png", 4},
		{"bad extension", 1, "a.exe", 4},
		{"no extension", 1, "avatar", 4},
		{"zero size", 1, "a.png", 0},
		{"oversized", 1, "a.png", maxAvatarSize + 1},
	}

	for _, tc := range cases {
		_, err := svc.UploadAvatar(ctx, tc.userID, tc.fileName, "image/png", bytes.NewReader(body), tc.size, "")
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestUploadAvatarPropagatesPutFailure(t *testing.T) {
	storage := newStubStorage()
	storage.putErr = fmt.Errorf("s3 down")
	svc := NewService(storage)

	body := bytes.NewReader([]byte("png"))
	_, err := svc.UploadAvatar(context.Background(), 3, "a.png", "image/png", body, int64(body.Len()), "prev-key")
	if err == nil {
		t.Fatalf("expected put failure to propagate")
	}
	if len(storage.deleted) != 0 {
		t.Fatalf("previous avatar must survive a failed upload, deleted=%v", storage.deleted)
	}
}

func TestAvatarURLEmptyKey(t *testing.T) {
	svc := NewService(newStubStorage())

	url, err := svc.AvatarURL(context.Background(), "")
	if err != nil {
		t.Fatalf("avatar url: %v", err)
	}
	if url != "" {
		t.Fatalf("empty key should map to empty url, got %q", url)
	}
}
