package chatserver

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"social-go/internal/config"
	"social-go/internal/services"
	"social-go/internal/websocket"
)

type presenceServiceMock struct {
	mock.Mock
}

func (m *presenceServiceMock) HandleBind(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *presenceServiceMock) HandleUnbind(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *presenceServiceMock) GetPresence(ctx context.Context, userID uint) (*services.PresenceSnapshot, error) {
	args := m.Called(ctx, userID)
	var snapshot *services.PresenceSnapshot
	if val := args.Get(0); val != nil {
		snapshot = val.(*services.PresenceSnapshot)
	}
	return snapshot, args.Error(1)
}

func routerFixture(hub *websocket.Hub, presenceSvc services.PresenceService) *EventRouter {
	return NewEventRouter(hub, nil, nil, presenceSvc, config.AuthConfig{JWTSecretKey: "test-secret"}, nil)
}

func boundClient(hub *websocket.Hub, connID string, userID uint) *websocket.Client {
	client := websocket.NewClient(connID, hub, nil, nil, config.WebSocketConfig{SendBufferSize: 8})
	client.UserID = userID
	hub.Bind(userID, client)
	return client
}

func TestDisconnectOfBoundConnectionMarksOffline(t *testing.T) {
	hub := websocket.NewHub()
	presenceSvc := new(presenceServiceMock)
	router := routerFixture(hub, presenceSvc)
	client := boundClient(hub, "c1", 1)

	presenceSvc.On("HandleUnbind", mock.Anything, uint(1)).Return(nil)

	router.HandleDisconnect(context.Background(), client)

	presenceSvc.AssertExpectations(t)
	if hub.IsOnline(1) {
		t.Fatal("expected user 1 to be unbound")
	}
}

func TestStaleDisconnectKeepsFreshBindingOnline(t *testing.T) {
	hub := websocket.NewHub()
	presenceSvc := new(presenceServiceMock)
	router := routerFixture(hub, presenceSvc)

	stale := boundClient(hub, "c1", 1)
	fresh := boundClient(hub, "c2", 1)

	// The old connection's teardown races the reconnect; the user must stay
	// online and no offline transition may run.
	router.HandleDisconnect(context.Background(), stale)

	presenceSvc.AssertNotCalled(t, "HandleUnbind", mock.Anything, mock.Anything)
	if hub.Resolve(1) != fresh {
		t.Fatal("expected the fresh connection to stay bound")
	}
}

func TestDisconnectBeforeBindIsNoOp(t *testing.T) {
	hub := websocket.NewHub()
	presenceSvc := new(presenceServiceMock)
	router := routerFixture(hub, presenceSvc)
	client := websocket.NewClient("c1", hub, nil, nil, config.WebSocketConfig{SendBufferSize: 8})

	router.HandleDisconnect(context.Background(), client)

	presenceSvc.AssertNotCalled(t, "HandleUnbind", mock.Anything, mock.Anything)
}
