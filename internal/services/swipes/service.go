package swipes

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/skipdm/edworking/internal/domain/enums"
	"github.com/skipdm/edworking/internal/domain/model"
)

var (
	ErrValidation     = errors.New("validation error")
	ErrTargetNotFound = errors.New("target not found")
)

// TooFastError reports a rate-limited swipe with the wait the caller should
// respect before retrying.
type TooFastError struct {
	RetryAfterSec int64
}

func (e *TooFastError) Error() string {
	return fmt.Sprintf("too fast, retry after %ds", e.RetryAfterSec)
}

func IsTooFast(err error) (int64, bool) {
	var tooFast *TooFastError
	if errors.As(err, &tooFast) {
		return tooFast.RetryAfterSec, true
	}
	return 0, false
}

type Store interface {
	Upsert(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64, action enums.SwipeAction, now time.Time) (bool, error)
	HasLike(ctx context.Context, tx pgx.Tx, actorUserID, targetUserID int64) (bool, error)
}

// TxRunner runs fn inside a single database transaction.
type TxRunner func(ctx context.Context, fn func(context.Context, pgx.Tx) error) error

type Deck interface {
	Reserve(viewerID, targetID int64) bool
	Restore(viewerID, targetID int64)
}

type Limiter interface {
	AllowSwipe(ctx context.Context, userID int64) (int64, bool, error)
}

type DirectorySource interface {
	DirectorySnapshot(ctx context.Context) ([]model.Profile, error)
}

type SwipeMirror interface {
	InvalidateSwipes(ctx context.Context, actorUserID, targetUserID int64) error
}

type SwipeResult struct {
	Updated      bool
	MatchCreated bool
}

type Dependencies struct {
	Store     Store
	Tx        TxRunner
	Deck      Deck
	Limiter   Limiter
	Directory DirectorySource
	Mirror    SwipeMirror
	Logger    *zap.Logger
}

// Service records swipes. Swipes from one viewer are serialized so the
// last-write-wins outcome is deterministic; viewers never contend with
// each other.
type Service struct {
	store     Store
	tx        TxRunner
	deck      Deck
	limiter   Limiter
	directory DirectorySource
	mirror    SwipeMirror
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:     deps.Store,
		tx:        deps.Tx,
		deck:      deps.Deck,
		limiter:   deps.Limiter,
		directory: deps.Directory,
		mirror:    deps.Mirror,
		logger:    logger,
		now:       time.Now,
		locks:     map[int64]*sync.Mutex{},
	}
}

// Record upserts the viewer's swipe on the target. Repeating the same
// action is a no-op (Updated false); a different action overwrites the
// previous one. MatchCreated reports a mutual LIKE at write time.
func (s *Service) Record(ctx context.Context, viewerID, targetID int64, action enums.SwipeAction) (SwipeResult, error) {
	if viewerID <= 0 || targetID <= 0 || !action.Valid() {
		return SwipeResult{}, ErrValidation
	}
	if viewerID == targetID {
		return SwipeResult{}, ErrValidation
	}

	lock := s.viewerLock(viewerID)
	lock.Lock()
	defer lock.Unlock()

	if s.limiter != nil {
		retryAfter, allowed, err := s.limiter.AllowSwipe(ctx, viewerID)
		if err != nil {
			return SwipeResult{}, fmt.Errorf("rate gate: %w", err)
		}
		if !allowed {
			return SwipeResult{}, &TooFastError{RetryAfterSec: retryAfter}
		}
	}

	exists, err := s.targetExists(ctx, targetID)
	if err != nil {
		return SwipeResult{}, err
	}
	if !exists {
		return SwipeResult{}, ErrTargetNotFound
	}

	// The candidate leaves the deck before the write. A failed write puts
	// it back at the front so the action is never silently dropped.
	reserved := false
	if s.deck != nil {
		reserved = s.deck.Reserve(viewerID, targetID)
	}

	var result SwipeResult
	// Once started, the write must not be torn down with the request.
	writeCtx := context.WithoutCancel(ctx)
	err = s.tx(writeCtx, func(ctx context.Context, tx pgx.Tx) error {
		updated, err := s.store.Upsert(ctx, tx, viewerID, targetID, action, s.now())
		if err != nil {
			return fmt.Errorf("upsert swipe: %w", err)
		}
		result.Updated = updated

		if action == enums.SwipeActionLike {
			mutual, err := s.store.HasLike(ctx, tx, targetID, viewerID)
			if err != nil {
				return fmt.Errorf("check mutual like: %w", err)
			}
			result.MatchCreated = mutual
		}
		return nil
	})
	if err != nil {
		if reserved {
			s.deck.Restore(viewerID, targetID)
		}
		return SwipeResult{}, fmt.Errorf("record swipe: %w", err)
	}

	if err := s.mirror.InvalidateSwipes(writeCtx, viewerID, targetID); err != nil {
		s.logger.Warn("swipes mirror invalidation failed",
			zap.Int64("actor_user_id", viewerID),
			zap.Int64("target_user_id", targetID),
			zap.Error(err))
	}

	return result, nil
}

func (s *Service) targetExists(ctx context.Context, targetID int64) (bool, error) {
	profiles, err := s.directory.DirectorySnapshot(ctx)
	if err != nil {
		return false, fmt.Errorf("load directory: %w", err)
	}
	for _, p := range profiles {
		if p.UserID == targetID {
			return true, nil
		}
	}
	return false, nil
}

// viewerLock hands out one mutex per viewer. Entries are never evicted;
// the map is bounded by the number of active users.
func (s *Service) viewerLock(viewerID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[viewerID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[viewerID] = lock
	}
	return lock
}
