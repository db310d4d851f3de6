package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"social-go/internal/events"
	"social-go/internal/models"
	"social-go/internal/storage"
	"social-go/internal/websocket"
)

// FriendService is the friend-request state machine. Every operation applies
// its transition as one atomic unit against the relationship store (the pair
// row carries both sides, so partial application is impossible) and emits the
// resulting domain event through the dispatcher, best-effort.
type FriendService interface {
	SendRequest(ctx context.Context, from, to uint) error
	AcceptRequest(ctx context.Context, acceptor, requester uint) (*models.Room, error)
	RejectRequest(ctx context.Context, rejecter, requester uint) error
	CancelRequest(ctx context.Context, canceller, target uint) error
	RemoveFriend(ctx context.Context, remover, target uint) error

	ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
	ListIncomingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
	ListOutgoingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error)
}

type friendService struct {
	userRepo   storage.UserRepository
	relRepo    storage.RelationshipRepository
	dispatcher websocket.EventDispatcher
}

// NewFriendService creates a new FriendService instance.
func NewFriendService(
	userRepo storage.UserRepository,
	relRepo storage.RelationshipRepository,
	dispatcher websocket.EventDispatcher,
) FriendService {
	return &friendService{
		userRepo:   userRepo,
		relRepo:    relRepo,
		dispatcher: dispatcher,
	}
}

// basicInfo fetches a user's public info, translating a missing row into the
// service taxonomy.
func (s *friendService) basicInfo(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	info, err := s.userRepo.GetBasicInfoByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("loading user %d: %w", userID, err)
	}
	return info, nil
}

func (s *friendService) SendRequest(ctx context.Context, from, to uint) error {
	if from == to {
		return ErrSelfRequest
	}

	fromInfo, err := s.basicInfo(ctx, from)
	if err != nil {
		return err
	}
	if _, err := s.basicInfo(ctx, to); err != nil {
		return err
	}

	rel, err := s.relRepo.Get(ctx, from, to)
	if err != nil {
		return fmt.Errorf("checking relationship %d-%d: %w", from, to, err)
	}
	if rel != nil {
		switch {
		case rel.State == models.RelationshipFriends:
			return ErrAlreadyFriends
		case rel.RequesterID == from:
			return ErrDuplicateRequest
		default:
			// The other side already asked; the caller should accept instead.
			return ErrReciprocalPending
		}
	}

	if err := s.relRepo.CreatePending(ctx, from, to); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a race against a concurrent request on the same pair.
			return ErrDuplicateRequest
		}
		return fmt.Errorf("creating pending request %d->%d: %w", from, to, err)
	}

	s.dispatcher.Deliver(to, events.ServerRequestReceived, events.RequestReceivedPayload{Requester: fromInfo})
	return nil
}

func (s *friendService) AcceptRequest(ctx context.Context, acceptor, requester uint) (*models.Room, error) {
	acceptorInfo, err := s.basicInfo(ctx, acceptor)
	if err != nil {
		return nil, err
	}
	requesterInfo, err := s.basicInfo(ctx, requester)
	if err != nil {
		return nil, err
	}

	room, promoted, err := s.relRepo.PromoteToFriends(ctx, requester, acceptor)
	if err != nil {
		return nil, fmt.Errorf("accepting request %d->%d: %w", requester, acceptor, err)
	}
	if !promoted {
		return nil, ErrNoSuchRequest
	}

	// Both parties learn about the new room; the acceptor's delivery keeps
	// any other surface it has open consistent.
	s.dispatcher.Deliver(requester, events.ServerRequestAccepted, events.RequestAcceptedPayload{Friend: acceptorInfo, RoomID: room.ID})
	s.dispatcher.Deliver(acceptor, events.ServerRequestAccepted, events.RequestAcceptedPayload{Friend: requesterInfo, RoomID: room.ID})
	return room, nil
}

func (s *friendService) RejectRequest(ctx context.Context, rejecter, requester uint) error {
	rejecterInfo, err := s.basicInfo(ctx, rejecter)
	if err != nil {
		return err
	}

	// One conditional delete removes the pending entry from both sides.
	removed, err := s.relRepo.DeletePending(ctx, requester, rejecter)
	if err != nil {
		return fmt.Errorf("rejecting request %d->%d: %w", requester, rejecter, err)
	}
	if !removed {
		return ErrNoSuchRequest
	}

	s.dispatcher.Deliver(requester, events.ServerRequestRejected, events.RequestRejectedPayload{Rejecter: rejecterInfo})
	return nil
}

func (s *friendService) CancelRequest(ctx context.Context, canceller, target uint) error {
	removed, err := s.relRepo.DeletePending(ctx, canceller, target)
	if err != nil {
		return fmt.Errorf("cancelling request %d->%d: %w", canceller, target, err)
	}
	if !removed {
		return ErrNoSuchRequest
	}

	s.dispatcher.Deliver(target, events.ServerRequestCancelled, events.RequestCancelledPayload{CancellerID: canceller})
	return nil
}

func (s *friendService) RemoveFriend(ctx context.Context, remover, target uint) error {
	removed, err := s.relRepo.DeleteFriendship(ctx, remover, target)
	if err != nil {
		return fmt.Errorf("removing friendship %d-%d: %w", remover, target, err)
	}
	if !removed {
		return ErrNotFriends
	}

	s.dispatcher.Deliver(target, events.ServerFriendRemoved, events.FriendRemovedPayload{RemoverID: remover})
	return nil
}

func (s *friendService) ListFriends(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	friendIDs, err := s.relRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing friends of %d: %w", userID, err)
	}
	return s.userRepo.GetMultipleBasicInfoByIDs(ctx, friendIDs)
}

func (s *friendService) ListIncomingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	rels, err := s.relRepo.GetPendingFor(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing incoming requests of %d: %w", userID, err)
	}
	return s.requestPeers(ctx, userID, rels)
}

func (s *friendService) ListOutgoingRequests(ctx context.Context, userID uint) ([]*models.UserBasicInfo, error) {
	rels, err := s.relRepo.GetPendingFrom(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing requests of %d: %w", userID, err)
	}
	return s.requestPeers(ctx, userID, rels)
}

func (s *friendService) requestPeers(ctx context.Context, userID uint, rels []models.Relationship) ([]*models.UserBasicInfo, error) {
	peerIDs := make([]uint, 0, len(rels))
	for i := range rels {
		peerIDs = append(peerIDs, rels[i].OtherUser(userID))
	}
	peers, err := s.userRepo.GetMultipleBasicInfoByIDs(ctx, peerIDs)
	if err != nil {
		log.Printf("friend service: loading request peers for user %d: %v", userID, err)
		return nil, err
	}
	return peers, nil
}
