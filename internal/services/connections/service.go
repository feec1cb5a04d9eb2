package connections

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/model"
	"github.com/skipdm/edworking/internal/domain/rules"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("viewer not found")
)

type DirectorySource interface {
	DirectorySnapshot(ctx context.Context) ([]model.Profile, error)
}

type PostSource interface {
	Snapshot(ctx context.Context) ([]model.Post, error)
}

type SwipeStore interface {
	ListTargeting(ctx context.Context, targetUserID int64) ([]model.Swipe, error)
}

type SwipeMirror interface {
	GetSwipesTargeting(ctx context.Context, targetUserID int64) ([]model.Swipe, error)
	SetSwipesTargeting(ctx context.Context, targetUserID int64, swipes []model.Swipe) error
}

type AvatarSigner interface {
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type Entry struct {
	model.Profile
	AvatarURL string
}

type Dependencies struct {
	Directory DirectorySource
	Posts     PostSource
	Swipes    SwipeStore
	Mirror    SwipeMirror
	Avatars   AvatarSigner
	Logger    *zap.Logger
}

// Service derives who a viewer can chat with and who admires them. Both
// sets are recomputed from current state on every call; nothing here is
// stored, so the results follow edits to posts and swipes immediately.
type Service struct {
	directory DirectorySource
	posts     PostSource
	swipes    SwipeStore
	mirror    SwipeMirror
	avatars   AvatarSigner
	logger    *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		directory: deps.Directory,
		posts:     deps.Posts,
		swipes:    deps.Swipes,
		mirror:    deps.Mirror,
		avatars:   deps.Avatars,
		logger:    logger,
	}
}

// ChatList returns the viewer's chat-eligible profiles in directory order:
// authors of job offers the viewer can reach out to, plus, when the viewer
// has a job offer of their own, authors whose posts mention the viewer by
// name.
func (s *Service) ChatList(ctx context.Context, viewerID int64) ([]Entry, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}

	profiles, err := s.directory.DirectorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	viewer, ok := findProfile(profiles, viewerID)
	if !ok {
		return nil, ErrNotFound
	}

	posts, err := s.posts.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	return s.sign(ctx, rules.ChatEligible(viewer, profiles, posts))
}

// Admirers returns the profiles whose latest swipe on the viewer is a LIKE,
// in directory order.
func (s *Service) Admirers(ctx context.Context, viewerID int64) ([]Entry, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}

	profiles, err := s.directory.DirectorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := findProfile(profiles, viewerID); !ok {
		return nil, ErrNotFound
	}

	swipes, err := s.swipesTargeting(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	return s.sign(ctx, rules.Admirers(viewerID, profiles, swipes))
}

func (s *Service) swipesTargeting(ctx context.Context, targetUserID int64) ([]model.Swipe, error) {
	swipes, err := s.mirror.GetSwipesTargeting(ctx, targetUserID)
	if err == nil {
		return swipes, nil
	}
	if !errors.Is(err, redrepo.ErrMirrorMiss) {
		s.logger.Warn("swipes mirror read failed", zap.Error(err))
	}

	swipes, err = s.swipes.ListTargeting(ctx, targetUserID)
	if err != nil {
		return nil, fmt.Errorf("list inbound swipes: %w", err)
	}

	if err := s.mirror.SetSwipesTargeting(ctx, targetUserID, swipes); err != nil {
		s.logger.Warn("swipes mirror refresh failed", zap.Error(err))
	}

	return swipes, nil
}

func (s *Service) sign(ctx context.Context, profiles []model.Profile) ([]Entry, error) {
	entries := make([]Entry, 0, len(profiles))
	for _, p := range profiles {
		url, err := s.avatars.AvatarURL(ctx, p.AvatarKey)
		if err != nil {
			return nil, fmt.Errorf("sign avatar url: %w", err)
		}
		entries = append(entries, Entry{Profile: p, AvatarURL: url})
	}
	return entries, nil
}

func findProfile(profiles []model.Profile, userID int64) (model.Profile, bool) {
	for _, p := range profiles {
		if p.UserID == userID {
			return p, true
		}
	}
	return model.Profile{}, false
}
