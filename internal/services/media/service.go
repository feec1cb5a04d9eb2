package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

var ErrValidation = errors.New("validation error")

const (
	signedURLTTL  = 5 * time.Minute
	maxAvatarSize = 5 << 20
)

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutObject(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Service struct {
	storage ObjectStorage
	now     func() time.Time
}

type Avatar struct {
	ObjectKey string
	URL       string
}

func NewService(storage ObjectStorage) *Service {
	return &Service{
		storage: storage,
		now:     time.Now,
	}
}

// UploadAvatar stores a new avatar object and returns its key with a
// presigned URL. The previous key, if any, is removed best-effort after
// the new object is in place.
func (s *Service) UploadAvatar(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64, previousKey string) (Avatar, error) {
	if userID <= 0 || body == nil || size <= 0 {
		return Avatar{}, ErrValidation
	}
	if size > maxAvatarSize {
		return Avatar{}, ErrValidation
	}
	if s.storage == nil {
		return Avatar{}, fmt.Errorf("media storage is not configured")
	}

	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if !allowedAvatarExts[ext] {
		return Avatar{}, ErrValidation
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return Avatar{}, fmt.Errorf("ensure bucket: %w", err)
	}

	objectKey, err := buildAvatarObjectKey(userID, ext, s.now())
	if err != nil {
		return Avatar{}, fmt.Errorf("build object key: %w", err)
	}

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutObject(ctx, objectKey, body, size, contentType); err != nil {
		return Avatar{}, fmt.Errorf("put object: %w", err)
	}

	if previousKey != "" && previousKey != objectKey {
		_ = s.storage.Delete(ctx, previousKey)
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return Avatar{}, fmt.Errorf("presign avatar url: %w", err)
	}

	return Avatar{ObjectKey: objectKey, URL: url}, nil
}

// AvatarURL presigns a GET for an existing avatar key. An empty key maps
// to an empty URL, not an error.
func (s *Service) AvatarURL(ctx context.Context, objectKey string) (string, error) {
	if strings.TrimSpace(objectKey) == "" {
		return "", nil
	}
	if s.storage == nil {
		return "", fmt.Errorf("media storage is not configured")
	}

	url, err := s.storage.PresignGet(ctx, objectKey, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("presign avatar url: %w", err)
	}
	return url, nil
}

func buildAvatarObjectKey(userID int64, ext string, now time.Time) (string, error) {
	rnd := make([]byte, 8)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}

	stamp := now.UTC().Format("20060102T150405")
	return fmt.Sprintf("users/%d/avatar/%s_%s%s", userID, stamp, hex.EncodeToString(rnd), ext), nil
}
