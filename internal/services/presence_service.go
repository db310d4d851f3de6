package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"social-go/internal/events"
	"social-go/internal/models"
	"social-go/internal/storage"
	"social-go/internal/websocket"
)

// PresenceStore caches the latest presence snapshot for fast reads. The
// database row stays the source of truth; cache errors are logged, never
// surfaced.
type PresenceStore interface {
	SetStatus(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error
	GetStatus(ctx context.Context, userID uint) (models.UserStatus, bool, error)
}

// PresenceSnapshot is one user's presence as reported to peers and the REST
// read side.
type PresenceSnapshot struct {
	UserID       uint              `json:"userId"`
	Status       models.UserStatus `json:"status"`
	LastActiveAt *time.Time        `json:"lastActiveAt,omitempty"`
}

// PresenceService is the presence tracker. Bind and unbind of a connection
// drive the online/offline transitions; each transition is fanned out to the
// user's friends through the dispatcher, reaching only the ones currently
// connected.
type PresenceService interface {
	HandleBind(ctx context.Context, userID uint) error
	HandleUnbind(ctx context.Context, userID uint) error
	GetPresence(ctx context.Context, userID uint) (*PresenceSnapshot, error)
}

type presenceService struct {
	userRepo   storage.UserRepository
	relRepo    storage.RelationshipRepository
	dispatcher websocket.EventDispatcher
	store      PresenceStore
}

// NewPresenceService creates a new PresenceService instance. store may be nil
// when no cache is configured.
func NewPresenceService(
	userRepo storage.UserRepository,
	relRepo storage.RelationshipRepository,
	dispatcher websocket.EventDispatcher,
	store PresenceStore,
) PresenceService {
	return &presenceService{
		userRepo:   userRepo,
		relRepo:    relRepo,
		dispatcher: dispatcher,
		store:      store,
	}
}

func (s *presenceService) HandleBind(ctx context.Context, userID uint) error {
	return s.transition(ctx, userID, models.UserStatusOnline)
}

func (s *presenceService) HandleUnbind(ctx context.Context, userID uint) error {
	return s.transition(ctx, userID, models.UserStatusOffline)
}

func (s *presenceService) transition(ctx context.Context, userID uint, status models.UserStatus) error {
	if _, err := s.userRepo.GetBasicInfoByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("loading user %d: %w", userID, err)
	}

	now := time.Now()
	if err := s.userRepo.UpdatePresence(ctx, userID, status, now); err != nil {
		return fmt.Errorf("updating presence of %d to %s: %w", userID, status, err)
	}
	if s.store != nil {
		if err := s.store.SetStatus(ctx, userID, status, now); err != nil {
			log.Printf("presence service: caching status of %d: %v", userID, err)
		}
	}

	friendIDs, err := s.relRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return fmt.Errorf("listing friends of %d for presence fan-out: %w", userID, err)
	}
	payload := events.PresencePayload{UserID: userID, Status: status}
	for _, friendID := range friendIDs {
		s.dispatcher.Deliver(friendID, events.ServerPresence, payload)
	}
	return nil
}

func (s *presenceService) GetPresence(ctx context.Context, userID uint) (*PresenceSnapshot, error) {
	if s.store != nil {
		status, ok, err := s.store.GetStatus(ctx, userID)
		if err != nil {
			log.Printf("presence service: reading cached status of %d: %v", userID, err)
		} else if ok {
			return &PresenceSnapshot{UserID: userID, Status: status}, nil
		}
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return &PresenceSnapshot{
		UserID:       user.ID,
		Status:       user.Status,
		LastActiveAt: user.LastActiveAt,
	}, nil
}
