package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type TierPriceRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, tierPriceID uint) (*model.TierPrice, error)
	ListActive(ctx context.Context) ([]*model.TierPrice, error)
}

type tierPriceRepoImpl struct {
	db *gorm.DB
}

func NewTierPriceRepository(db *gorm.DB) TierPriceRepository {
	return &tierPriceRepoImpl{db: db}
}

func (r *tierPriceRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, tierPriceID uint) (*model.TierPrice, error) {
	if tx == nil {
		tx = r.db
	}

	var price model.TierPrice
	err := tx.WithContext(ctx).First(&price, tierPriceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tier price %d", tierPriceID)
	}
	if err != nil {
		return nil, err
	}

	return &price, nil
}

func (r *tierPriceRepoImpl) ListActive(ctx context.Context) ([]*model.TierPrice, error) {
	var prices []*model.TierPrice
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("tier_id, months").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}

	return prices, nil
}
