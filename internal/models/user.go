package models

import "time"

// UserStatus is the presence status stored for a user.
type UserStatus string

const (
	UserStatusOnline  UserStatus = "online"
	UserStatusOffline UserStatus = "offline"
	UserStatusBusy    UserStatus = "busy"
)

// User represents a registered user. Account creation and profile editing are
// owned by the external REST collaborators; this core only reads profile data
// and mutates status/last_active on connect and disconnect.
//
// Friend and pending-request lists are not stored on the user row; they are
// projections over Relationship rows (see relationship.go). The live
// connection handle is likewise never persisted — it lives only in the
// websocket hub for the lifetime of the connection.
type User struct {
	BaseModel
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	FullName     string     `gorm:"type:varchar(100);not null" json:"fullName"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	AvatarURL    string     `gorm:"type:varchar(255)" json:"avatarUrl,omitempty"`
	Bio          string     `gorm:"type:text" json:"bio,omitempty"`
	Status       UserStatus `gorm:"type:varchar(20);default:'offline'" json:"status,omitempty"`
	LastActiveAt *time.Time `json:"lastActiveAt,omitempty"`
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

// UserBasicInfo holds minimal public information about a user.
// Used for denormalized event payloads and friend listings.
type UserBasicInfo struct {
	ID        uint       `json:"id"`
	FullName  string     `json:"fullName"`
	Email     string     `json:"email"`
	AvatarURL string     `json:"avatarUrl,omitempty"`
	Status    UserStatus `json:"status,omitempty"`
}

// BasicInfo projects the public fields of a user.
func (u *User) BasicInfo() *UserBasicInfo {
	return &UserBasicInfo{
		ID:        u.ID,
		FullName:  u.FullName,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Status:    u.Status,
	}
}
