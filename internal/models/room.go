package models

import "time"

// RoomType distinguishes friend rooms from temporary match rooms.
type RoomType string

const (
	FriendRoom RoomType = "friend"
	MatchRoom  RoomType = "match"
)

// Room is a 1:1 chat room. Exactly two participants, stored in canonical
// order (UserID1 < UserID2). A friend room is created exactly once when a
// friend request is accepted and deleted when the friendship is removed.
// Match rooms are created by the external match flow and expire at ExpiredAt;
// MatchID and ExpiredAt are set together for that type only.
type Room struct {
	BaseModel
	UserID1       uint       `gorm:"not null;index:idx_room_pair" json:"userId1"`
	UserID2       uint       `gorm:"not null;index:idx_room_pair" json:"userId2"`
	Type          RoomType   `gorm:"type:varchar(20);not null;index" json:"type"`
	MatchID       *uint      `gorm:"index" json:"matchId,omitempty"`
	ExpiredAt     *time.Time `gorm:"index" json:"expiredAt,omitempty"`
	LastMessageID *uint      `gorm:"index" json:"lastMessageId,omitempty"`

	LastMessage *Message `gorm:"foreignKey:LastMessageID" json:"lastMessage,omitempty"`
}

// TableName specifies the table name for the Room model.
func (Room) TableName() string {
	return "rooms"
}

// EnsureCanonicalOrder sets UserID1 to the smaller ID and UserID2 to the
// larger ID. Must be called before creating a Room record.
func (r *Room) EnsureCanonicalOrder() {
	if r.UserID1 > r.UserID2 {
		r.UserID1, r.UserID2 = r.UserID2, r.UserID1
	}
}

// HasParticipant reports whether userID is one of the two room members.
func (r *Room) HasParticipant(userID uint) bool {
	return r.UserID1 == userID || r.UserID2 == userID
}

// OtherParticipant returns the room member that is not userID.
func (r *Room) OtherParticipant(userID uint) uint {
	if r.UserID1 == userID {
		return r.UserID2
	}
	return r.UserID1
}
