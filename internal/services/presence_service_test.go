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

func newPresenceServiceFixture() (PresenceService, *mocks.UserRepositoryMock, *mocks.RelationshipRepositoryMock, *mocks.DispatcherMock, *mocks.PresenceStoreMock) {
	userRepo := new(mocks.UserRepositoryMock)
	relRepo := new(mocks.RelationshipRepositoryMock)
	dispatcher := new(mocks.DispatcherMock)
	store := new(mocks.PresenceStoreMock)
	return NewPresenceService(userRepo, relRepo, dispatcher, store), userRepo, relRepo, dispatcher, store
}

func TestHandleBindFansOutOnlineToFriends(t *testing.T) {
	svc, userRepo, relRepo, dispatcher, store := newPresenceServiceFixture()
	ctx := context.Background()

	userRepo.On("GetBasicInfoByID", ctx, uint(1)).Return(basicInfoFixture(1), nil)
	userRepo.On("UpdatePresence", ctx, uint(1), models.UserStatusOnline, mock.Anything).Return(nil)
	store.On("SetStatus", ctx, uint(1), models.UserStatusOnline, mock.Anything).Return(nil)
	relRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{2, 3}, nil)
	payload := events.PresencePayload{UserID: 1, Status: models.UserStatusOnline}
	dispatcher.On("Deliver", uint(2), events.ServerPresence, payload).Return()
	dispatcher.On("Deliver", uint(3), events.ServerPresence, payload).Return()

	require.NoError(t, svc.HandleBind(ctx, 1))

	dispatcher.AssertExpectations(t)
	dispatcher.AssertNumberOfCalls(t, "Deliver", 2)
}

func TestHandleUnbindFansOutOffline(t *testing.T) {
	svc, userRepo, relRepo, dispatcher, store := newPresenceServiceFixture()
	ctx := context.Background()

	userRepo.On("GetBasicInfoByID", ctx, uint(1)).Return(basicInfoFixture(1), nil)
	userRepo.On("UpdatePresence", ctx, uint(1), models.UserStatusOffline, mock.Anything).Return(nil)
	store.On("SetStatus", ctx, uint(1), models.UserStatusOffline, mock.Anything).Return(nil)
	relRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{2}, nil)
	dispatcher.On("Deliver", uint(2), events.ServerPresence, events.PresencePayload{UserID: 1, Status: models.UserStatusOffline}).Return()

	require.NoError(t, svc.HandleUnbind(ctx, 1))

	dispatcher.AssertExpectations(t)
}

func TestHandleBindUnknownUser(t *testing.T) {
	svc, userRepo, _, dispatcher, _ := newPresenceServiceFixture()
	ctx := context.Background()

	userRepo.On("GetBasicInfoByID", ctx, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.HandleBind(ctx, 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleBindWithNoFriendsDeliversNothing(t *testing.T) {
	svc, userRepo, relRepo, dispatcher, store := newPresenceServiceFixture()
	ctx := context.Background()

	userRepo.On("GetBasicInfoByID", ctx, uint(1)).Return(basicInfoFixture(1), nil)
	userRepo.On("UpdatePresence", ctx, uint(1), models.UserStatusOnline, mock.Anything).Return(nil)
	store.On("SetStatus", ctx, uint(1), models.UserStatusOnline, mock.Anything).Return(nil)
	relRepo.On("GetFriendIDs", ctx, uint(1)).Return([]uint{}, nil)

	require.NoError(t, svc.HandleBind(ctx, 1))

	dispatcher.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPresenceServedFromCache(t *testing.T) {
	svc, userRepo, _, _, store := newPresenceServiceFixture()
	ctx := context.Background()

	store.On("GetStatus", ctx, uint(1)).Return(models.UserStatusOnline, true, nil)

	snapshot, err := svc.GetPresence(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, models.UserStatusOnline, snapshot.Status)
	userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestGetPresenceFallsBackToDatabase(t *testing.T) {
	svc, userRepo, _, _, store := newPresenceServiceFixture()
	ctx := context.Background()

	lastActive := time.Now().Add(-time.Minute)
	user := &models.User{Status: models.UserStatusOffline, LastActiveAt: &lastActive}
	user.ID = 1
	store.On("GetStatus", ctx, uint(1)).Return(models.UserStatus(""), false, nil)
	userRepo.On("GetByID", ctx, uint(1)).Return(user, nil)

	snapshot, err := svc.GetPresence(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, models.UserStatusOffline, snapshot.Status)
	require.NotNil(t, snapshot.LastActiveAt)
	assert.WithinDuration(t, lastActive, *snapshot.LastActiveAt, time.Second)
}

func TestGetPresenceUnknownUser(t *testing.T) {
	svc, userRepo, _, _, store := newPresenceServiceFixture()
	ctx := context.Background()

	store.On("GetStatus", ctx, uint(99)).Return(models.UserStatus(""), false, nil)
	userRepo.On("GetByID", ctx, uint(99)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetPresence(ctx, 99)

	assert.ErrorIs(t, err, ErrUserNotFound)
}
