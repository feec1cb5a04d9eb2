package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
	"github.com/skipdm/edworking/internal/domain/rules"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
)

var ErrValidation = errors.New("validation error")

const maxBodyLen = 4000

type PostStore interface {
	Create(ctx context.Context, authorUserID int64, kind enums.PostKind, body string, now time.Time) (model.Post, error)
	ListAll(ctx context.Context) ([]model.Post, error)
	ListByAuthor(ctx context.Context, authorUserID int64) ([]model.Post, error)
}

type PostMirror interface {
	GetPosts(ctx context.Context) ([]model.Post, error)
	SetPosts(ctx context.Context, posts []model.Post) error
	InvalidatePosts(ctx context.Context) error
}

type DirectorySource interface {
	DirectorySnapshot(ctx context.Context) ([]model.Profile, error)
}

// PostView is a post joined with its author's directory entry. Posts whose
// author is missing from the directory are dropped before they reach here.
type PostView struct {
	model.Post
	AuthorName string `json:"author_name"`
}

type Feed struct {
	JobPosts     []PostView
	RegularPosts []PostView
}

type Dependencies struct {
	Store     PostStore
	Mirror    PostMirror
	Directory DirectorySource
	Logger    *zap.Logger
}

type Service struct {
	store     PostStore
	mirror    PostMirror
	directory DirectorySource
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:     deps.Store,
		mirror:    deps.Mirror,
		directory: deps.Directory,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, authorUserID int64, kind enums.PostKind, body string) (model.Post, error) {
	body = strings.TrimSpace(body)
	if authorUserID <= 0 || body == "" || len(body) > maxBodyLen {
		return model.Post{}, ErrValidation
	}
	if !kind.Valid() {
		return model.Post{}, ErrValidation
	}

	post, err := s.store.Create(ctx, authorUserID, kind, body, s.now())
	if err != nil {
		return model.Post{}, fmt.Errorf("create post: %w", err)
	}

	if err := s.mirror.InvalidatePosts(ctx); err != nil {
		s.logger.Warn("posts mirror invalidation failed", zap.Error(err))
	}

	return post, nil
}

// ListAll returns every post split by kind, newest ordering preserved from
// the store. Posts by authors no longer in the directory are excluded.
func (s *Service) ListAll(ctx context.Context) (Feed, error) {
	posts, err := s.snapshot(ctx)
	if err != nil {
		return Feed{}, err
	}

	profiles, err := s.directory.DirectorySnapshot(ctx)
	if err != nil {
		return Feed{}, err
	}
	names := make(map[int64]string, len(profiles))
	for _, p := range profiles {
		names[p.UserID] = p.DisplayName
	}

	job, regular := rules.SplitByKind(posts)
	return Feed{
		JobPosts:     joinAuthors(job, names),
		RegularPosts: joinAuthors(regular, names),
	}, nil
}

func (s *Service) ListByAuthor(ctx context.Context, authorUserID int64) ([]model.Post, error) {
	if authorUserID <= 0 {
		return nil, ErrValidation
	}

	posts, err := s.store.ListByAuthor(ctx, authorUserID)
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return posts, nil
}

// Snapshot exposes the mirror-backed post log for the connections service.
func (s *Service) Snapshot(ctx context.Context) ([]model.Post, error) {
	return s.snapshot(ctx)
}

func (s *Service) snapshot(ctx context.Context) ([]model.Post, error) {
	posts, err := s.mirror.GetPosts(ctx)
	if err == nil {
		return posts, nil
	}
	if !errors.Is(err, redrepo.ErrMirrorMiss) {
		s.logger.Warn("posts mirror read failed", zap.Error(err))
	}

	posts, err = s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	if err := s.mirror.SetPosts(ctx, posts); err != nil {
		s.logger.Warn("posts mirror refresh failed", zap.Error(err))
	}

	return posts, nil
}

func joinAuthors(posts []model.Post, names map[int64]string) []PostView {
	views := make([]PostView, 0, len(posts))
	for _, post := range posts {
		name, ok := names[post.AuthorUserID]
		if !ok {
			continue
		}
		views = append(views, PostView{Post: post, AuthorName: name})
	}
	return views
}
