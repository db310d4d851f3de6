package events

import "social-go/internal/models"

// Inbound payloads. SenderID/UserID fields in inbound frames are not trusted
// for identity: the event router overwrites them with the bound user ID.

type BindIdentityPayload struct {
	UserID    uint   `json:"userId"`
	AuthToken string `json:"authToken"`
}

type SendRequestPayload struct {
	From uint `json:"from"`
	To   uint `json:"to"`
}

type AcceptRequestPayload struct {
	Acceptor  uint `json:"acceptor"`
	Requester uint `json:"requester"`
}

type RejectRequestPayload struct {
	Me        uint `json:"me"`
	Requester uint `json:"requester"`
}

type CancelRequestPayload struct {
	Me     uint `json:"me"`
	Target uint `json:"target"`
}

type RemoveFriendPayload struct {
	Me     uint `json:"me"`
	Target uint `json:"target"`
}

type SendMessagePayload struct {
	RoomID     uint   `json:"roomId"`
	SenderID   uint   `json:"senderId"`
	ReceiverID uint   `json:"receiverId"`
	Content    string `json:"content,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

type MarkReadPayload struct {
	RoomID uint `json:"roomId"`
	UserID uint `json:"userId"`
}

type RecallMessagePayload struct {
	RoomID    uint `json:"roomId"`
	MessageID uint `json:"messageId"`
	UserID    uint `json:"userId"`
}

type TypingPayload struct {
	RoomID uint `json:"roomId"`
	UserID uint `json:"userId"`
}

// Outbound payloads, denormalized with the peer's public info so clients do
// not need a follow-up fetch.

type RequestReceivedPayload struct {
	Requester *models.UserBasicInfo `json:"requester"`
}

type RequestAcceptedPayload struct {
	Friend *models.UserBasicInfo `json:"friend"`
	RoomID uint                  `json:"roomId"`
}

type RequestRejectedPayload struct {
	Rejecter *models.UserBasicInfo `json:"rejecter"`
}

type RequestCancelledPayload struct {
	CancellerID uint `json:"cancellerId"`
}

type FriendRemovedPayload struct {
	RemoverID uint `json:"removerId"`
}

type MessageRecalledPayload struct {
	RoomID    uint   `json:"roomId"`
	MessageID uint   `json:"messageId"`
	Content   string `json:"content"`
}

type MessagesReadPayload struct {
	RoomID   uint `json:"roomId"`
	ReaderID uint `json:"readerId"`
}

type PresencePayload struct {
	UserID uint              `json:"userId"`
	Status models.UserStatus `json:"status"`
}
