package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"social-go/internal/models"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	args := m.Called(ctx, userID)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetBasicInfoByID(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	args := m.Called(ctx, userID)
	var info *models.UserBasicInfo
	if val := args.Get(0); val != nil {
		info = val.(*models.UserBasicInfo)
	}
	return info, args.Error(1)
}

func (m *UserRepositoryMock) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	args := m.Called(ctx, userIDs)
	var infos []*models.UserBasicInfo
	if val := args.Get(0); val != nil {
		infos = val.([]*models.UserBasicInfo)
	}
	return infos, args.Error(1)
}

func (m *UserRepositoryMock) UpdatePresence(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error {
	args := m.Called(ctx, userID, status, lastActive)
	return args.Error(0)
}

type RelationshipRepositoryMock struct {
	mock.Mock
}

func (m *RelationshipRepositoryMock) Get(ctx context.Context, userA, userB uint) (*models.Relationship, error) {
	args := m.Called(ctx, userA, userB)
	var rel *models.Relationship
	if val := args.Get(0); val != nil {
		rel = val.(*models.Relationship)
	}
	return rel, args.Error(1)
}

func (m *RelationshipRepositoryMock) CreatePending(ctx context.Context, from, to uint) error {
	args := m.Called(ctx, from, to)
	return args.Error(0)
}

func (m *RelationshipRepositoryMock) PromoteToFriends(ctx context.Context, requester, acceptor uint) (*models.Room, bool, error) {
	args := m.Called(ctx, requester, acceptor)
	var room *models.Room
	if val := args.Get(0); val != nil {
		room = val.(*models.Room)
	}
	return room, args.Bool(1), args.Error(2)
}

func (m *RelationshipRepositoryMock) DeletePending(ctx context.Context, requester, other uint) (bool, error) {
	args := m.Called(ctx, requester, other)
	return args.Bool(0), args.Error(1)
}

func (m *RelationshipRepositoryMock) DeleteFriendship(ctx context.Context, userA, userB uint) (bool, error) {
	args := m.Called(ctx, userA, userB)
	return args.Bool(0), args.Error(1)
}

func (m *RelationshipRepositoryMock) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	args := m.Called(ctx, userID)
	var ids []uint
	if val := args.Get(0); val != nil {
		ids = val.([]uint)
	}
	return ids, args.Error(1)
}

func (m *RelationshipRepositoryMock) GetPendingFor(ctx context.Context, userID uint) ([]models.Relationship, error) {
	args := m.Called(ctx, userID)
	var rels []models.Relationship
	if val := args.Get(0); val != nil {
		rels = val.([]models.Relationship)
	}
	return rels, args.Error(1)
}

func (m *RelationshipRepositoryMock) GetPendingFrom(ctx context.Context, userID uint) ([]models.Relationship, error) {
	args := m.Called(ctx, userID)
	var rels []models.Relationship
	if val := args.Get(0); val != nil {
		rels = val.([]models.Relationship)
	}
	return rels, args.Error(1)
}

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) GetByID(ctx context.Context, roomID uint) (*models.Room, error) {
	args := m.Called(ctx, roomID)
	var room *models.Room
	if val := args.Get(0); val != nil {
		room = val.(*models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) FindFriendRoom(ctx context.Context, userA, userB uint) (*models.Room, error) {
	args := m.Called(ctx, userA, userB)
	var room *models.Room
	if val := args.Get(0); val != nil {
		room = val.(*models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) SetLastMessage(ctx context.Context, roomID, messageID uint) error {
	args := m.Called(ctx, roomID, messageID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) Touch(ctx context.Context, roomID uint) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

func (m *RoomRepositoryMock) ListFriendRoomsForUser(ctx context.Context, userID uint, limit int) ([]models.Room, error) {
	args := m.Called(ctx, userID, limit)
	var rooms []models.Room
	if val := args.Get(0); val != nil {
		rooms = val.([]models.Room)
	}
	return rooms, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, msg *models.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MessageRepositoryMock) GetByID(ctx context.Context, messageID uint) (*models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg *models.Message
	if val := args.Get(0); val != nil {
		msg = val.(*models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) MarkRoomRead(ctx context.Context, roomID, readerID uint) (int64, error) {
	args := m.Called(ctx, roomID, readerID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) Recall(ctx context.Context, messageID, requesterID uint) (bool, error) {
	args := m.Called(ctx, messageID, requesterID)
	return args.Bool(0), args.Error(1)
}

func (m *MessageRepositoryMock) ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	args := m.Called(ctx, roomID, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

// DispatcherMock records deliveries per user and event so tests can assert on
// fan-out without a live hub.
type DispatcherMock struct {
	mock.Mock
}

func (m *DispatcherMock) Deliver(userID uint, event string, payload interface{}) {
	m.Called(userID, event, payload)
}

type ProducerMock struct {
	mock.Mock
}

func (m *ProducerMock) SendMessage(ctx context.Context, topic string, key []byte, payload []byte) error {
	args := m.Called(ctx, topic, key, payload)
	return args.Error(0)
}

func (m *ProducerMock) Close() {
	m.Called()
}

// PresenceStoreMock caches presence writes for assertion.
type PresenceStoreMock struct {
	mock.Mock
}

func (m *PresenceStoreMock) SetStatus(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error {
	args := m.Called(ctx, userID, status, lastActive)
	return args.Error(0)
}

func (m *PresenceStoreMock) GetStatus(ctx context.Context, userID uint) (models.UserStatus, bool, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.UserStatus), args.Bool(1), args.Error(2)
}
