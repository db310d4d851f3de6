package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// UserRepository defines the read/status operations this core needs on users.
// Account creation and profile editing live in the external REST collaborators.
type UserRepository interface {
	GetByID(ctx context.Context, userID uint) (*models.User, error)
	GetBasicInfoByID(ctx context.Context, userID uint) (*models.UserBasicInfo, error)
	GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error)
	UpdatePresence(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new UserRepository backed by gorm.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) GetByID(ctx context.Context, userID uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *gormUserRepository) GetBasicInfoByID(ctx context.Context, userID uint) (*models.UserBasicInfo, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.BasicInfo(), nil
}

func (r *gormUserRepository) GetMultipleBasicInfoByIDs(ctx context.Context, userIDs []uint) ([]*models.UserBasicInfo, error) {
	if len(userIDs) == 0 {
		return []*models.UserBasicInfo{}, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error; err != nil {
		return nil, err
	}
	infos := make([]*models.UserBasicInfo, 0, len(users))
	for i := range users {
		infos = append(infos, users[i].BasicInfo())
	}
	return infos, nil
}

// UpdatePresence stamps status and last_active in one update.
func (r *gormUserRepository) UpdatePresence(ctx context.Context, userID uint, status models.UserStatus, lastActive time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"status":         status,
			"last_active_at": lastActive,
		}).Error
}
