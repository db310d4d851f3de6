package models

import "time"

// MessageType describes what a message carries. Text and image types are
// derived from the payload on send; call records come from the call flow.
type MessageType string

const (
	TextMessage  MessageType = "text"
	ImageMessage MessageType = "image"
	BothMessage  MessageType = "both" // text and image in one message
	CallMessage  MessageType = "call"
)

// RecalledContent is the fixed tombstone that replaces the content of a
// recalled message. Once set, the message is immutable.
const RecalledContent = "This message has been recalled"

// Message is one chat message inside a room. Messages are never physically
// deleted by this core: read-marking and recall both only flip their flag
// from false to true.
type Message struct {
	BaseModel
	RoomID     uint        `gorm:"not null;index:idx_message_room_time" json:"roomId"`
	SenderID   uint        `gorm:"not null;index" json:"senderId"`
	ReceiverID uint        `gorm:"not null;index" json:"receiverId"`
	Content    string      `gorm:"type:text" json:"content"`
	ImageURL   string      `gorm:"type:varchar(255)" json:"imageUrl,omitempty"`
	Type       MessageType `gorm:"type:varchar(20);not null;default:'text'" json:"type"`
	IsRead     bool        `gorm:"not null;default:false" json:"isRead"`
	IsRecalled bool        `gorm:"not null;default:false" json:"isRecalled"`
	Timestamp  time.Time   `gorm:"not null;index:idx_message_room_time" json:"timestamp"`
}

// TableName specifies the table name for the Message model.
func (Message) TableName() string {
	return "messages"
}

// DeriveMessageType maps payload presence to a message type. Callers must
// reject payloads where both parts are empty before calling this.
func DeriveMessageType(content, imageURL string) MessageType {
	switch {
	case content != "" && imageURL != "":
		return BothMessage
	case imageURL != "":
		return ImageMessage
	default:
		return TextMessage
	}
}
