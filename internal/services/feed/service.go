package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/model"
	"github.com/skipdm/edworking/internal/domain/rules"
	redrepo "github.com/skipdm/edworking/internal/repo/redis"
)

var ErrValidation = errors.New("validation error")

type DirectorySource interface {
	DirectorySnapshot(ctx context.Context) ([]model.Profile, error)
}

type SwipeStore interface {
	ListByActor(ctx context.Context, actorUserID int64) ([]model.Swipe, error)
}

type SwipeMirror interface {
	GetSwipesByActor(ctx context.Context, actorUserID int64) ([]model.Swipe, error)
	SetSwipesByActor(ctx context.Context, actorUserID int64, swipes []model.Swipe) error
}

type AvatarSigner interface {
	AvatarURL(ctx context.Context, objectKey string) (string, error)
}

type Candidate struct {
	model.Profile
	AvatarURL string
}

type Dependencies struct {
	Directory DirectorySource
	Swipes    SwipeStore
	Mirror    SwipeMirror
	Avatars   AvatarSigner
	Logger    *zap.Logger
}

// Service hands out swipe candidates one at a time. Each viewer gets an
// in-memory deck of candidate ids in directory order; the swipe recorder
// removes a candidate optimistically before the write and restores it to
// the front when the write fails.
type Service struct {
	directory DirectorySource
	swipes    SwipeStore
	mirror    SwipeMirror
	avatars   AvatarSigner
	logger    *zap.Logger

	mu    sync.Mutex
	decks map[int64][]int64
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		directory: deps.Directory,
		swipes:    deps.Swipes,
		mirror:    deps.Mirror,
		avatars:   deps.Avatars,
		logger:    logger,
		decks:     map[int64][]int64{},
	}
}

// Next peeks at the viewer's current candidate without consuming it. The
// boolean is false when the deck is exhausted: an explicit empty state,
// never an error.
func (s *Service) Next(ctx context.Context, viewerID int64) (Candidate, bool, error) {
	if viewerID <= 0 {
		return Candidate{}, false, ErrValidation
	}

	profiles, err := s.directory.DirectorySnapshot(ctx)
	if err != nil {
		return Candidate{}, false, err
	}
	byID := make(map[int64]model.Profile, len(profiles))
	for _, p := range profiles {
		byID[p.UserID] = p
	}

	rebuilt := false
	for {
		s.mu.Lock()
		deck, ok := s.decks[viewerID]
		if (!ok || len(deck) == 0) && !rebuilt {
			s.mu.Unlock()
			deck, err = s.buildDeck(ctx, viewerID, profiles)
			if err != nil {
				return Candidate{}, false, err
			}
			rebuilt = true
			s.mu.Lock()
			s.decks[viewerID] = deck
		}

		deck = s.decks[viewerID]
		if len(deck) == 0 {
			s.mu.Unlock()
			return Candidate{}, false, nil
		}

		front := deck[0]
		profile, exists := byID[front]
		if !exists {
			// Candidate vanished from the directory; drop silently.
			s.decks[viewerID] = deck[1:]
			s.mu.Unlock()
			continue
		}
		s.mu.Unlock()

		url, err := s.avatars.AvatarURL(ctx, profile.AvatarKey)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("sign avatar url: %w", err)
		}
		return Candidate{Profile: profile, AvatarURL: url}, true, nil
	}
}

// Reserve removes a candidate from the viewer's deck ahead of the swipe
// write. It reports whether the candidate was present.
func (s *Service) Reserve(viewerID, targetID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck, ok := s.decks[viewerID]
	if !ok {
		return false
	}
	for i, id := range deck {
		if id == targetID {
			s.decks[viewerID] = append(deck[:i:i], deck[i+1:]...)
			return true
		}
	}
	return false
}

// Restore puts a candidate back at the front of the viewer's deck after a
// failed swipe write, so the action can be retried next.
func (s *Service) Restore(viewerID, targetID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deck := s.decks[viewerID]
	for _, id := range deck {
		if id == targetID {
			return
		}
	}
	s.decks[viewerID] = append([]int64{targetID}, deck...)
}

// Invalidate drops the viewer's deck; the next read rebuilds it from the
// directory and the swipe log.
func (s *Service) Invalidate(viewerID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.decks, viewerID)
}

func (s *Service) buildDeck(ctx context.Context, viewerID int64, profiles []model.Profile) ([]int64, error) {
	swipes, err := s.swipesByActor(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	candidates := rules.Candidates(viewerID, profiles, swipes)
	deck := make([]int64, 0, len(candidates))
	for _, c := range candidates {
		deck = append(deck, c.UserID)
	}
	return deck, nil
}

func (s *Service) swipesByActor(ctx context.Context, actorUserID int64) ([]model.Swipe, error) {
	swipes, err := s.mirror.GetSwipesByActor(ctx, actorUserID)
	if err == nil {
		return swipes, nil
	}
	if !errors.Is(err, redrepo.ErrMirrorMiss) {
		s.logger.Warn("swipes mirror read failed", zap.Error(err))
	}

	swipes, err = s.swipes.ListByActor(ctx, actorUserID)
	if err != nil {
		return nil, fmt.Errorf("list swipes by actor: %w", err)
	}

	if err := s.mirror.SetSwipesByActor(ctx, actorUserID, swipes); err != nil {
		s.logger.Warn("swipes mirror refresh failed", zap.Error(err))
	}

	return swipes, nil
}
