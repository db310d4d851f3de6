package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"social-go/internal/events"
	"social-go/internal/kafka"
	"social-go/internal/models"
	"social-go/internal/storage"
	"social-go/internal/websocket"
)

// SendMessageInput carries one outgoing message. The room is resolved from
// RoomID when set, otherwise from the sender/receiver friend pair.
type SendMessageInput struct {
	RoomID     uint
	ReceiverID uint
	Content    string
	ImageURL   string
}

// ChatService is the chat session manager for 1:1 rooms. Persistence always
// happens before delivery: a message a peer sees is already on disk, and a
// message that fails to persist is never delivered.
type ChatService interface {
	Send(ctx context.Context, senderID uint, in SendMessageInput) (*models.Message, error)
	MarkRead(ctx context.Context, roomID, readerID uint) error
	Recall(ctx context.Context, roomID, messageID, requesterID uint) (*models.Message, error)
	Typing(ctx context.Context, roomID, userID uint) error
	StopTyping(ctx context.Context, roomID, userID uint) error

	ListRooms(ctx context.Context, userID uint, limit int) ([]models.Room, error)
	ListMessages(ctx context.Context, roomID, userID uint, limit int) ([]models.Message, error)
}

type chatService struct {
	roomRepo      storage.RoomRepository
	msgRepo       storage.MessageRepository
	dispatcher    websocket.EventDispatcher
	producer      kafka.MessageProducer
	messagesTopic string
}

// NewChatService creates a new ChatService instance. producer may be nil, in
// which case the message archive topic is skipped.
func NewChatService(
	roomRepo storage.RoomRepository,
	msgRepo storage.MessageRepository,
	dispatcher websocket.EventDispatcher,
	producer kafka.MessageProducer,
	messagesTopic string,
) ChatService {
	return &chatService{
		roomRepo:      roomRepo,
		msgRepo:       msgRepo,
		dispatcher:    dispatcher,
		producer:      producer,
		messagesTopic: messagesTopic,
	}
}

// resolveRoom loads the room and verifies userID participates in it.
func (s *chatService) resolveRoom(ctx context.Context, roomID, userID uint) (*models.Room, error) {
	room, err := s.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("loading room %d: %w", roomID, err)
	}
	if !room.HasParticipant(userID) {
		return nil, ErrNotParticipant
	}
	return room, nil
}

func (s *chatService) Send(ctx context.Context, senderID uint, in SendMessageInput) (*models.Message, error) {
	if in.Content == "" && in.ImageURL == "" {
		return nil, ErrInvalidPayload
	}

	var room *models.Room
	var err error
	switch {
	case in.RoomID != 0:
		room, err = s.resolveRoom(ctx, in.RoomID, senderID)
		if err != nil {
			return nil, err
		}
	case in.ReceiverID != 0:
		room, err = s.roomRepo.FindFriendRoom(ctx, senderID, in.ReceiverID)
		if err != nil {
			return nil, fmt.Errorf("resolving friend room %d-%d: %w", senderID, in.ReceiverID, err)
		}
		if room == nil {
			return nil, ErrRoomNotFound
		}
	default:
		return nil, ErrInvalidPayload
	}

	if room.ExpiredAt != nil && room.ExpiredAt.Before(time.Now()) {
		return nil, ErrRoomNotFound
	}

	msg := &models.Message{
		RoomID:     room.ID,
		SenderID:   senderID,
		ReceiverID: room.OtherParticipant(senderID),
		Content:    in.Content,
		ImageURL:   in.ImageURL,
		Type:       models.DeriveMessageType(in.Content, in.ImageURL),
		Timestamp:  time.Now(),
	}
	if err := s.msgRepo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("persisting message in room %d: %w", room.ID, err)
	}
	if err := s.roomRepo.SetLastMessage(ctx, room.ID, msg.ID); err != nil {
		log.Printf("chat service: updating room %d preview to message %d: %v", room.ID, msg.ID, err)
	}

	// Sender included: any other surface the sender has open stays in sync.
	s.dispatcher.Deliver(msg.ReceiverID, events.ServerMessage, msg)
	s.dispatcher.Deliver(msg.SenderID, events.ServerMessage, msg)

	s.archiveMessage(ctx, msg)
	return msg, nil
}

// archiveMessage publishes the persisted message to the archive topic,
// best-effort.
func (s *chatService) archiveMessage(ctx context.Context, msg *models.Message) {
	if s.producer == nil || s.messagesTopic == "" {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("chat service: marshaling message %d for archive: %v", msg.ID, err)
		return
	}
	key := []byte(strconv.FormatUint(uint64(msg.RoomID), 10))
	if err := s.producer.SendMessage(ctx, s.messagesTopic, key, payload); err != nil {
		log.Printf("chat service: archiving message %d to topic %s: %v", msg.ID, s.messagesTopic, err)
	}
}

func (s *chatService) MarkRead(ctx context.Context, roomID, readerID uint) error {
	room, err := s.resolveRoom(ctx, roomID, readerID)
	if err != nil {
		return err
	}

	updated, err := s.msgRepo.MarkRoomRead(ctx, roomID, readerID)
	if err != nil {
		return fmt.Errorf("marking room %d read for user %d: %w", roomID, readerID, err)
	}
	if updated == 0 {
		// Nothing was unread; stay quiet rather than spamming the peer.
		return nil
	}

	s.dispatcher.Deliver(room.OtherParticipant(readerID), events.ServerMessagesRead, events.MessagesReadPayload{
		RoomID:   roomID,
		ReaderID: readerID,
	})
	return nil
}

func (s *chatService) Recall(ctx context.Context, roomID, messageID, requesterID uint) (*models.Message, error) {
	room, err := s.resolveRoom(ctx, roomID, requesterID)
	if err != nil {
		return nil, err
	}

	msg, err := s.msgRepo.GetByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, fmt.Errorf("loading message %d: %w", messageID, err)
	}
	if msg.RoomID != roomID {
		return nil, ErrMessageNotFound
	}
	if msg.SenderID != requesterID {
		return nil, ErrRecallForbidden
	}
	if msg.IsRecalled {
		return nil, ErrAlreadyRecalled
	}

	recalled, err := s.msgRepo.Recall(ctx, messageID, requesterID)
	if err != nil {
		return nil, fmt.Errorf("recalling message %d: %w", messageID, err)
	}
	if !recalled {
		// Raced with another recall of the same message.
		return nil, ErrAlreadyRecalled
	}
	msg.IsRecalled = true
	msg.Content = models.RecalledContent

	if room.LastMessageID != nil && *room.LastMessageID == msg.ID {
		if err := s.roomRepo.Touch(ctx, roomID); err != nil {
			log.Printf("chat service: touching room %d after recall of message %d: %v", roomID, msg.ID, err)
		}
	}

	payload := events.MessageRecalledPayload{
		RoomID:    roomID,
		MessageID: msg.ID,
		Content:   models.RecalledContent,
	}
	s.dispatcher.Deliver(msg.ReceiverID, events.ServerMessageRecalled, payload)
	s.dispatcher.Deliver(msg.SenderID, events.ServerMessageRecalled, payload)
	return msg, nil
}

func (s *chatService) Typing(ctx context.Context, roomID, userID uint) error {
	return s.notifyTyping(ctx, roomID, userID, events.ServerTyping)
}

func (s *chatService) StopTyping(ctx context.Context, roomID, userID uint) error {
	return s.notifyTyping(ctx, roomID, userID, events.ServerStopTyping)
}

// notifyTyping relays a typing indicator to the other participant. Nothing is
// persisted; an offline peer simply misses it.
func (s *chatService) notifyTyping(ctx context.Context, roomID, userID uint, event string) error {
	room, err := s.resolveRoom(ctx, roomID, userID)
	if err != nil {
		return err
	}
	s.dispatcher.Deliver(room.OtherParticipant(userID), event, events.TypingPayload{
		RoomID: roomID,
		UserID: userID,
	})
	return nil
}

func (s *chatService) ListRooms(ctx context.Context, userID uint, limit int) ([]models.Room, error) {
	rooms, err := s.roomRepo.ListFriendRoomsForUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing rooms of %d: %w", userID, err)
	}
	return rooms, nil
}

func (s *chatService) ListMessages(ctx context.Context, roomID, userID uint, limit int) ([]models.Message, error) {
	if _, err := s.resolveRoom(ctx, roomID, userID); err != nil {
		return nil, err
	}
	msgs, err := s.msgRepo.ListByRoom(ctx, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages of room %d: %w", roomID, err)
	}
	return msgs, nil
}
