package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"social-go/internal/events"
	"social-go/internal/mocks"
	"social-go/internal/models"
)

func newChatServiceFixture() (ChatService, *mocks.RoomRepositoryMock, *mocks.MessageRepositoryMock, *mocks.DispatcherMock, *mocks.ProducerMock) {
	roomRepo := new(mocks.RoomRepositoryMock)
	msgRepo := new(mocks.MessageRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	producer := new(mocks.ProducerMock)
	svc := NewChatService(roomRepo, msgRepo, dispatcher, producer, "chat-messages")
	return svc, roomRepo, msgRepo, dispatcher, producer
}

func friendRoomFixture(id, userA, userB uint) *models.Room {
	room := &models.Room{UserID1: userA, UserID2: userB, Type: models.FriendRoom}
	room.EnsureCanonicalOrder()
	room.ID = id
	return room
}

func TestSendPersistsThenDeliversToBothParticipants(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, producer := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("Create", ctx, mock.AnythingOfType("*models.Message")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Message).ID = 77
	}).Return(nil)
	roomRepo.On("SetLastMessage", ctx, uint(10), uint(77)).Return(nil)
	dispatcher.On("Deliver", uint(2), events.ServerMessage, mock.Anything).Return()
	dispatcher.On("Deliver", uint(1), events.ServerMessage, mock.Anything).Return()
	producer.On("SendMessage", ctx, "chat-messages", mock.Anything, mock.Anything).Return(nil)

	msg, err := svc.Send(ctx, 1, SendMessageInput{RoomID: 10, Content: "hello"})

	require.NoError(t, err)
	assert.Equal(t, uint(77), msg.ID)
	assert.Equal(t, uint(2), msg.ReceiverID)
	assert.Equal(t, models.TextMessage, msg.Type)
	dispatcher.AssertExpectations(t)
	producer.AssertExpectations(t)
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	svc, _, msgRepo, dispatcher, _ := newChatServiceFixture()

	_, err := svc.Send(context.Background(), 1, SendMessageInput{RoomID: 10})

	assert.ErrorIs(t, err, ErrInvalidPayload)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendToUnknownRoom(t *testing.T) {
	svc, roomRepo, _, _, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.Send(ctx, 1, SendMessageInput{RoomID: 404, Content: "hello"})

	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestSendFromOutsider(t *testing.T) {
	svc, roomRepo, msgRepo, _, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 2, 3), nil)

	_, err := svc.Send(ctx, 1, SendMessageInput{RoomID: 10, Content: "hello"})

	assert.ErrorIs(t, err, ErrNotParticipant)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendResolvesRoomFromReceiverPair(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, producer := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("FindFriendRoom", ctx, uint(1), uint(2)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Message).ID = 5
	}).Return(nil)
	roomRepo.On("SetLastMessage", ctx, uint(10), uint(5)).Return(nil)
	dispatcher.On("Deliver", mock.Anything, events.ServerMessage, mock.Anything).Return()
	producer.On("SendMessage", ctx, "chat-messages", mock.Anything, mock.Anything).Return(nil)

	msg, err := svc.Send(ctx, 1, SendMessageInput{ReceiverID: 2, Content: "hi"})

	require.NoError(t, err)
	assert.Equal(t, uint(10), msg.RoomID)
}

func TestSendToExpiredMatchRoom(t *testing.T) {
	svc, roomRepo, msgRepo, _, _ := newChatServiceFixture()
	ctx := context.Background()

	expired := time.Now().Add(-time.Hour)
	room := friendRoomFixture(10, 1, 2)
	room.Type = models.MatchRoom
	room.ExpiredAt = &expired
	roomRepo.On("GetByID", ctx, uint(10)).Return(room, nil)

	_, err := svc.Send(ctx, 1, SendMessageInput{RoomID: 10, Content: "hello"})

	assert.ErrorIs(t, err, ErrRoomNotFound)
	msgRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendSkipsDeliveryWhenPersistenceFails(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, producer := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("Create", ctx, mock.Anything).Return(gorm.ErrInvalidData)

	_, err := svc.Send(ctx, 1, SendMessageInput{RoomID: 10, Content: "hello"})

	require.Error(t, err)
	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
	producer.AssertNotCalled(t, "SendMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestMarkReadNotifiesPeerOnce(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("MarkRoomRead", ctx, uint(10), uint(2)).Return(int64(3), nil)
	dispatcher.On("Deliver", uint(1), events.ServerMessagesRead, events.MessagesReadPayload{RoomID: 10, ReaderID: 2}).Return()

	require.NoError(t, svc.MarkRead(ctx, 10, 2))

	dispatcher.AssertExpectations(t)
}

func TestMarkReadWithNothingUnreadStaysSilent(t *testing.T) {
	// Marking an already-read room again must not re-notify the peer.
	svc, roomRepo, msgRepo, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("MarkRoomRead", ctx, uint(10), uint(2)).Return(int64(0), nil)

	require.NoError(t, svc.MarkRead(ctx, 10, 2))

	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func recallFixture(roomID, msgID, senderID, receiverID uint) *models.Message {
	msg := &models.Message{RoomID: roomID, SenderID: senderID, ReceiverID: receiverID, Content: "secret", Type: models.TextMessage}
	msg.ID = msgID
	return msg
}

func TestRecallReplacesContentAndNotifiesBothSides(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	lastID := uint(77)
	room := friendRoomFixture(10, 1, 2)
	room.LastMessageID = &lastID
	roomRepo.On("GetByID", ctx, uint(10)).Return(room, nil)
	msgRepo.On("GetByID", ctx, uint(77)).Return(recallFixture(10, 77, 1, 2), nil)
	msgRepo.On("Recall", ctx, uint(77), uint(1)).Return(true, nil)
	roomRepo.On("Touch", ctx, uint(10)).Return(nil)
	expected := events.MessageRecalledPayload{RoomID: 10, MessageID: 77, Content: models.RecalledContent}
	dispatcher.On("Deliver", uint(2), events.ServerMessageRecalled, expected).Return()
	dispatcher.On("Deliver", uint(1), events.ServerMessageRecalled, expected).Return()

	msg, err := svc.Recall(ctx, 10, 77, 1)

	require.NoError(t, err)
	assert.True(t, msg.IsRecalled)
	assert.Equal(t, models.RecalledContent, msg.Content)
	dispatcher.AssertExpectations(t)
	roomRepo.AssertExpectations(t)
}

func TestRecallByReceiver(t *testing.T) {
	svc, roomRepo, msgRepo, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("GetByID", ctx, uint(77)).Return(recallFixture(10, 77, 1, 2), nil)

	_, err := svc.Recall(ctx, 10, 77, 2)

	assert.ErrorIs(t, err, ErrRecallForbidden)
	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecallTwice(t *testing.T) {
	svc, roomRepo, msgRepo, _, _ := newChatServiceFixture()
	ctx := context.Background()

	recalled := recallFixture(10, 77, 1, 2)
	recalled.IsRecalled = true
	recalled.Content = models.RecalledContent
	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("GetByID", ctx, uint(77)).Return(recalled, nil)

	_, err := svc.Recall(ctx, 10, 77, 1)

	assert.ErrorIs(t, err, ErrAlreadyRecalled)
}

func TestRecallMessageFromAnotherRoom(t *testing.T) {
	svc, roomRepo, msgRepo, _, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	msgRepo.On("GetByID", ctx, uint(77)).Return(recallFixture(99, 77, 1, 2), nil)

	_, err := svc.Recall(ctx, 10, 77, 1)

	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestTypingRelayedToPeerOnly(t *testing.T) {
	svc, roomRepo, _, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 1, 2), nil)
	dispatcher.On("Deliver", uint(2), events.ServerTyping, events.TypingPayload{RoomID: 10, UserID: 1}).Return()

	require.NoError(t, svc.Typing(ctx, 10, 1))

	dispatcher.AssertExpectations(t)
	dispatcher.AssertNumberOfCalls(t, "Deliver", 1)
}

func TestStopTypingFromOutsider(t *testing.T) {
	svc, roomRepo, _, dispatcher, _ := newChatServiceFixture()
	ctx := context.Background()

	roomRepo.On("GetByID", ctx, uint(10)).Return(friendRoomFixture(10, 2, 3), nil)

	err := svc.StopTyping(ctx, 10, 1)

	assert.ErrorIs(t, err, ErrNotParticipant)
	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}
