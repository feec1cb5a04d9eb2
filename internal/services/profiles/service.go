package profiles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/model"
	pgrepo "github.com/skipdm/edworking/internal/repo/postgres"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
	"github.com/skipdm/edworking/internal/services/media"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("profile not found")
)

const maxAboutLen = 2000

type UserStore interface {
	GetByID(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, id int64, upd pgrepo.UserUpdate) (model.User, error)
	ListProfiles(ctx context.Context) ([]model.Profile, error)
}

type DirectoryMirror interface {
	GetProfiles(ctx context.Context) ([]model.Profile, error)
	SetProfiles(ctx context.Context, profiles []model.Profile) error
	InvalidateProfiles(ctx context.Context) error
}

type AvatarStorage interface {
	UploadAvatar(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64, previousKey string) (media.Avatar, error)
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type Account struct {
	model.User
	AvatarURL string
}

type ProfileView struct {
	model.Profile
	AvatarURL string
}

type UpdateInput struct {
	DisplayName *string
	City        *string
	About       *string
	Profession  *string
}

type Dependencies struct {
	Users   UserStore
	Mirror  DirectoryMirror
	Avatars AvatarStorage
	Logger  *zap.Logger
}

type Service struct {
	users   UserStore
	mirror  DirectoryMirror
	avatars AvatarStorage
	logger  *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		users:   deps.Users,
		mirror:  deps.Mirror,
		avatars: deps.Avatars,
		logger:  logger,
	}
}

func (s *Service) Get(ctx context.Context, userID int64) (Account, error) {
	if userID <= 0 {
		return Account{}, ErrValidation
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("get user: %w", err)
	}

	return s.accountView(ctx, user)
}

func (s *Service) Update(ctx context.Context, userID int64, in UpdateInput) (Account, error) {
	if userID <= 0 {
		return Account{}, ErrValidation
	}
	if in.DisplayName != nil {
		trimmed := strings.TrimSpace(*in.DisplayName)
		if trimmed == "" {
			return Account{}, ErrValidation
		}
		in.DisplayName = &trimmed
	}
	if in.About != nil && len(*in.About) > maxAboutLen {
		return Account{}, ErrValidation
	}

	user, err := s.users.Update(ctx, userID, pgrepo.UserUpdate{
		DisplayName: in.DisplayName,
		City:        in.City,
		About:       in.About,
		Profession:  in.Profession,
	})
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("update user: %w", err)
	}

	s.invalidateDirectory(ctx)

	return s.accountView(ctx, user)
}

func (s *Service) UploadAvatar(ctx context.Context, userID int64, fileName, contentType string, body io.Reader, size int64) (Account, error) {
	if userID <= 0 {
		return Account{}, ErrValidation
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrUserNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, fmt.Errorf("get user: %w", err)
	}

	avatar, err := s.avatars.UploadAvatar(ctx, userID, fileName, contentType, body, size, user.AvatarKey)
	if err != nil {
		if errors.Is(err, media.ErrValidation) {
			return Account{}, ErrValidation
		}
		return Account{}, fmt.Errorf("upload avatar: %w", err)
	}

	updated, err := s.users.Update(ctx, userID, pgrepo.UserUpdate{AvatarKey: &avatar.ObjectKey})
	if err != nil {
		return Account{}, fmt.Errorf("save avatar key: %w", err)
	}

	s.invalidateDirectory(ctx)

	return Account{User: updated, AvatarURL: avatar.URL}, nil
}

// Directory returns every profile except the viewer's own, in stable
// registration order. Reads go through the mirror; a miss falls back to
// the authoritative store and refreshes the mirror entry.
func (s *Service) Directory(ctx context.Context, viewerID int64) ([]ProfileView, error) {
	if viewerID <= 0 {
		return nil, ErrValidation
	}

	profiles, err := s.directorySnapshot(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ProfileView, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID == viewerID {
			continue
		}
		url, err := s.avatars.AvatarURL(ctx, p.AvatarKey)
		if err != nil {
			return nil, fmt.Errorf("sign avatar url: %w", err)
		}
		views = append(views, ProfileView{Profile: p, AvatarURL: url})
	}

	return views, nil
}

// DirectorySnapshot exposes the raw mirror-backed directory for other
// services (feed, connections) that apply their own filtering.
func (s *Service) DirectorySnapshot(ctx context.Context) ([]model.Profile, error) {
	return s.directorySnapshot(ctx)
}

func (s *Service) directorySnapshot(ctx context.Context) ([]model.Profile, error) {
	profiles, err := s.mirror.GetProfiles(ctx)
	if err == nil {
		return profiles, nil
	}
	if !errors.Is(err, redrepo.ErrMirrorMiss) {
		s.logger.Warn("profiles mirror read failed", zap.Error(err))
	}

	profiles, err = s.users.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	if err := s.mirror.SetProfiles(ctx, profiles); err != nil {
		s.logger.Warn("profiles mirror refresh failed", zap.Error(err))
	}

	return profiles, nil
}

func (s *Service) invalidateDirectory(ctx context.Context) {
	if err := s.mirror.InvalidateProfiles(ctx); err != nil {
		s.logger.Warn("profiles mirror invalidation failed", zap.Error(err))
	}
}

func (s *Service) accountView(ctx context.Context, user model.User) (Account, error) {
	url, err := s.avatars.AvatarURL(ctx, user.AvatarKey)
	if err != nil {
		return Account{}, fmt.Errorf("sign avatar url: %w", err)
	}
	return Account{User: user, AvatarURL: url}, nil
}

// Age is derived, never stored.
func Age(birthDate time.Time, now time.Time) int {
	if birthDate.IsZero() {
		return 0
	}
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
