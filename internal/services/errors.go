package services

import (
	"errors"
	"net/http"
)

// Sentinel errors for the socket operations. The event router and the REST
// handlers map these onto status codes; anything unlisted is an internal
// error and is never surfaced verbatim to clients.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrSelfRequest       = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends    = errors.New("users are already friends")
	ErrDuplicateRequest  = errors.New("a friend request is already pending")
	ErrReciprocalPending = errors.New("this user already sent you a friend request")
	ErrNoSuchRequest     = errors.New("no pending friend request from this user")
	ErrNotFriends        = errors.New("users are not friends")

	ErrRoomNotFound    = errors.New("chat room not found")
	ErrNotParticipant  = errors.New("user is not a participant of this room")
	ErrMessageNotFound = errors.New("message not found")
	ErrInvalidPayload  = errors.New("message needs text content or an image")
	ErrRecallForbidden = errors.New("only the sender can recall a message")
	ErrAlreadyRecalled = errors.New("message has already been recalled")
)

// StatusCode maps a service error to the status carried in error frames and
// REST responses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrRoomNotFound),
		errors.Is(err, ErrMessageNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrSelfRequest),
		errors.Is(err, ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrDuplicateRequest),
		errors.Is(err, ErrReciprocalPending),
		errors.Is(err, ErrNoSuchRequest),
		errors.Is(err, ErrNotFriends),
		errors.Is(err, ErrAlreadyRecalled):
		return http.StatusConflict
	case errors.Is(err, ErrRecallForbidden),
		errors.Is(err, ErrNotParticipant):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
