package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnsureCanonicalOrder(t *testing.T) {
	rel := Relationship{UserID1: 9, UserID2: 3, RequesterID: 9}
	rel.EnsureCanonicalOrder()

	assert.Equal(t, uint(3), rel.UserID1)
	assert.Equal(t, uint(9), rel.UserID2)
	// The requester tag is unaffected by reordering.
	assert.Equal(t, uint(9), rel.RequesterID)
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(7, 2)
	assert.Equal(t, uint(2), a)
	assert.Equal(t, uint(7), b)

	a, b = CanonicalPair(2, 7)
	assert.Equal(t, uint(2), a)
	assert.Equal(t, uint(7), b)
}

func TestOtherUser(t *testing.T) {
	rel := Relationship{UserID1: 2, UserID2: 7}
	assert.Equal(t, uint(7), rel.OtherUser(2))
	assert.Equal(t, uint(2), rel.OtherUser(7))
}

func TestDeriveMessageType(t *testing.T) {
	assert.Equal(t, TextMessage, DeriveMessageType("hello", ""))
	assert.Equal(t, ImageMessage, DeriveMessageType("", "https://cdn/x.png"))
	assert.Equal(t, BothMessage, DeriveMessageType("look", "https://cdn/x.png"))
}

func TestRoomParticipants(t *testing.T) {
	room := Room{UserID1: 5, UserID2: 1, Type: FriendRoom}
	room.EnsureCanonicalOrder()

	assert.Equal(t, uint(1), room.UserID1)
	assert.True(t, room.HasParticipant(5))
	assert.False(t, room.HasParticipant(4))
	assert.Equal(t, uint(5), room.OtherParticipant(1))
}
