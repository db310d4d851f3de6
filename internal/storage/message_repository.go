package storage

import (
	"context"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// MessageRepository persists chat messages. Read-marking and recall are
// expressed as conditional batch updates so the monotonic false->true
// transitions can never be reversed or double-applied.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	GetByID(ctx context.Context, messageID uint) (*models.Message, error)
	// MarkRoomRead flips is_read on every unread message in the room addressed
	// to readerID, in one statement. Returns the number of messages updated.
	MarkRoomRead(ctx context.Context, roomID, readerID uint) (int64, error)
	// Recall sets is_recalled and overwrites the content with the tombstone,
	// only when requesterID is the sender and the message is not yet recalled.
	// Returns false when the conditional update matched nothing.
	Recall(ctx context.Context, messageID, requesterID uint) (bool, error)
	ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error)
}

type gormMessageRepository struct {
	db *gorm.DB
}

// NewGormMessageRepository creates a new MessageRepository backed by gorm.
func NewGormMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

func (r *gormMessageRepository) GetByID(ctx context.Context, messageID uint) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, messageID).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

func (r *gormMessageRepository) MarkRoomRead(ctx context.Context, roomID, readerID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("room_id = ? AND receiver_id = ? AND is_read = ?", roomID, readerID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *gormMessageRepository) Recall(ctx context.Context, messageID, requesterID uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND sender_id = ? AND is_recalled = ?", messageID, requesterID, false).
		Updates(map[string]interface{}{
			"is_recalled": true,
			"content":     models.RecalledContent,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormMessageRepository) ListByRoom(ctx context.Context, roomID uint, limit int) ([]models.Message, error) {
	var msgs []models.Message
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("timestamp ASC").
		Limit(limit).
		Find(&msgs).Error
	return msgs, err
}
