package storage

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"social-go/internal/models"
)

// RelationshipRepository is the Relationship Store: one row per user pair.
// Every state transition checks its precondition inside the update statement
// itself (WHERE on the current state) and reports whether it actually
// applied, so two racing transitions on the same pair can never both
// succeed. Transitions that touch the friend room as well run in one
// transaction.
type RelationshipRepository interface {
	// Get returns the relationship row for the pair, or nil when none exists.
	Get(ctx context.Context, userA, userB uint) (*models.Relationship, error)
	// CreatePending inserts a pending row requested by `from`. The unique pair
	// index rejects a concurrent duplicate.
	CreatePending(ctx context.Context, from, to uint) error
	// PromoteToFriends flips pending -> friends (only if the pending request
	// was sent by `requester`) and creates the pair's friend room, in one
	// transaction. Returns false when no such pending row existed.
	PromoteToFriends(ctx context.Context, requester, acceptor uint) (*models.Room, bool, error)
	// DeletePending removes the pending row sent by `requester`. Returns false
	// when no such pending row existed.
	DeletePending(ctx context.Context, requester, other uint) (bool, error)
	// DeleteFriendship removes the friends row and the pair's friend room in
	// one transaction. Returns false when the pair was not friends.
	DeleteFriendship(ctx context.Context, userA, userB uint) (bool, error)

	GetFriendIDs(ctx context.Context, userID uint) ([]uint, error)
	// GetPendingFor lists pending rows where userID is the recipient.
	GetPendingFor(ctx context.Context, userID uint) ([]models.Relationship, error)
	// GetPendingFrom lists pending rows where userID is the requester.
	GetPendingFrom(ctx context.Context, userID uint) ([]models.Relationship, error)
}

type gormRelationshipRepository struct {
	db *gorm.DB
}

// NewGormRelationshipRepository creates a new RelationshipRepository backed by gorm.
func NewGormRelationshipRepository(db *gorm.DB) RelationshipRepository {
	return &gormRelationshipRepository{db: db}
}

func (r *gormRelationshipRepository) pairScope(ctx context.Context, userA, userB uint) *gorm.DB {
	u1, u2 := models.CanonicalPair(userA, userB)
	return r.db.WithContext(ctx).Where("user_id1 = ? AND user_id2 = ?", u1, u2)
}

func (r *gormRelationshipRepository) Get(ctx context.Context, userA, userB uint) (*models.Relationship, error) {
	var rel models.Relationship
	err := r.pairScope(ctx, userA, userB).First(&rel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil // no relationship is not an error here
		}
		return nil, err
	}
	return &rel, nil
}

func (r *gormRelationshipRepository) CreatePending(ctx context.Context, from, to uint) error {
	rel := models.Relationship{
		UserID1:     from,
		UserID2:     to,
		State:       models.RelationshipPending,
		RequesterID: from,
	}
	rel.EnsureCanonicalOrder()
	return r.db.WithContext(ctx).Create(&rel).Error
}

func (r *gormRelationshipRepository) PromoteToFriends(ctx context.Context, requester, acceptor uint) (*models.Room, bool, error) {
	u1, u2 := models.CanonicalPair(requester, acceptor)
	var room *models.Room
	promoted := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// The conditional update is the precondition check: it only matches a
		// pending row sent by `requester`, so a racing cancel and accept on
		// the same request can never both succeed.
		res := tx.Model(&models.Relationship{}).
			Where("user_id1 = ? AND user_id2 = ?", u1, u2).
			Where("state = ? AND requester_id = ?", models.RelationshipPending, requester).
			Update("state", models.RelationshipFriends)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // no pending request; nothing to roll back
		}
		promoted = true

		room = &models.Room{
			UserID1: u1,
			UserID2: u2,
			Type:    models.FriendRoom,
		}
		return tx.Create(room).Error
	})
	if err != nil {
		return nil, false, err
	}
	if !promoted {
		return nil, false, nil
	}
	return room, true, nil
}

func (r *gormRelationshipRepository) DeletePending(ctx context.Context, requester, other uint) (bool, error) {
	res := r.pairScope(ctx, requester, other).
		Where("state = ? AND requester_id = ?", models.RelationshipPending, requester).
		Delete(&models.Relationship{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormRelationshipRepository) DeleteFriendship(ctx context.Context, userA, userB uint) (bool, error) {
	u1, u2 := models.CanonicalPair(userA, userB)
	removed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id1 = ? AND user_id2 = ?", u1, u2).
			Where("state = ?", models.RelationshipFriends).
			Delete(&models.Relationship{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		removed = true

		return tx.Where("user_id1 = ? AND user_id2 = ? AND type = ?", u1, u2, models.FriendRoom).
			Delete(&models.Room{}).Error
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

func (r *gormRelationshipRepository) GetFriendIDs(ctx context.Context, userID uint) ([]uint, error) {
	var rels []models.Relationship
	err := r.db.WithContext(ctx).
		Where("state = ?", models.RelationshipFriends).
		Where("user_id1 = ? OR user_id2 = ?", userID, userID).
		Find(&rels).Error
	if err != nil {
		return nil, err
	}
	friendIDs := make([]uint, 0, len(rels))
	for i := range rels {
		friendIDs = append(friendIDs, rels[i].OtherUser(userID))
	}
	return friendIDs, nil
}

func (r *gormRelationshipRepository) GetPendingFor(ctx context.Context, userID uint) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := r.db.WithContext(ctx).
		Where("state = ? AND requester_id != ?", models.RelationshipPending, userID).
		Where("user_id1 = ? OR user_id2 = ?", userID, userID).
		Find(&rels).Error
	return rels, err
}

func (r *gormRelationshipRepository) GetPendingFrom(ctx context.Context, userID uint) ([]models.Relationship, error) {
	var rels []models.Relationship
	err := r.db.WithContext(ctx).
		Where("state = ? AND requester_id = ?", models.RelationshipPending, userID).
		Find(&rels).Error
	return rels, err
}
