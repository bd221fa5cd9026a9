package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type SubscriptionRepository interface {
	// FindActive returns the unexpired window for (user, tier), or nil when
	// none exists. There is at most one by construction.
	FindActive(ctx context.Context, tx *gorm.DB, userID, tierID uint, now time.Time) (*model.Subscription, error)
	Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error
	ExtendExpire(ctx context.Context, tx *gorm.DB, subID uint, newExpireAt time.Time, orderNo string) error
	ListByUser(ctx context.Context, userID uint) ([]*model.Subscription, error)
}

type subscriptionRepoImpl struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepoImpl{db: db}
}

func (r *subscriptionRepoImpl) FindActive(ctx context.Context, tx *gorm.DB, userID, tierID uint, now time.Time) (*model.Subscription, error) {
	if tx == nil {
		tx = r.db
	}

	var sub model.Subscription
	err := tx.WithContext(ctx).
		Where("user_id = ? AND tier_id = ? AND expire_at > ?", userID, tierID, now).
		First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &sub, nil
}

func (r *subscriptionRepoImpl) Create(ctx context.Context, tx *gorm.DB, sub *model.Subscription) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(sub).Error
}

func (r *subscriptionRepoImpl) ExtendExpire(ctx context.Context, tx *gorm.DB, subID uint, newExpireAt time.Time, orderNo string) error {
	return tx.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ?", subID).
		Updates(map[string]interface{}{
			"expire_at":       newExpireAt,
			"latest_order_no": orderNo,
		}).Error
}

func (r *subscriptionRepoImpl) ListByUser(ctx context.Context, userID uint) ([]*model.Subscription, error) {
	var subs []*model.Subscription
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expire_at DESC").
		Find(&subs).Error
	if err != nil {
		return nil, err
	}

	return subs, nil
}
