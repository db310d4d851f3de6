package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// RoomRepository is the Room Store for 1:1 chat rooms. Friend-room creation
// and deletion ride inside the relationship transitions (see
// RelationshipRepository); match rooms are created by the external match flow.
type RoomRepository interface {
	GetByID(ctx context.Context, roomID uint) (*models.Room, error)
	// FindFriendRoom returns the friend-type room for the pair, or nil.
	FindFriendRoom(ctx context.Context, userA, userB uint) (*models.Room, error)
	// SetLastMessage updates the preview pointer and bumps updated_at.
	SetLastMessage(ctx context.Context, roomID, messageID uint) error
	// Touch bumps updated_at only, used when the preview content changed in
	// place (recall of the last message).
	Touch(ctx context.Context, roomID uint) error
	ListFriendRoomsForUser(ctx context.Context, userID uint, limit int) ([]models.Room, error)
}

type gormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a new RoomRepository backed by gorm.
func NewGormRoomRepository(db *gorm.DB) RoomRepository {
	return &gormRoomRepository{db: db}
}

func (r *gormRoomRepository) GetByID(ctx context.Context, roomID uint) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) FindFriendRoom(ctx context.Context, userA, userB uint) (*models.Room, error) {
	u1, u2 := models.CanonicalPair(userA, userB)
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("user_id1 = ? AND user_id2 = ? AND type = ?", u1, u2, models.FriendRoom).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &room, nil
}

func (r *gormRoomRepository) SetLastMessage(ctx context.Context, roomID, messageID uint) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("last_message_id", messageID).Error
}

func (r *gormRoomRepository) Touch(ctx context.Context, roomID uint) error {
	return r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", roomID).
		Update("updated_at", gorm.Expr("NOW()")).Error
}

func (r *gormRoomRepository) ListFriendRoomsForUser(ctx context.Context, userID uint, limit int) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).
		Preload("LastMessage").
		Where("type = ?", models.FriendRoom).
		Where("user_id1 = ? OR user_id2 = ?", userID, userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&rooms).Error
	return rooms, err
}
