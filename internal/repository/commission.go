package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type CommissionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, commission *model.Commission) error
	// FindDue lists commissions still FROZEN whose unlock time has passed.
	FindDue(ctx context.Context, tx *gorm.DB, now time.Time) ([]*model.Commission, error)
	// MarkAvailable flips the given FROZEN rows to AVAILABLE and reports how
	// many rows actually changed. The status guard keeps the flip exactly-once.
	MarkAvailable(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uint, page, pageSize int) ([]*model.Commission, int64, error)
}

type commissionRepoImpl struct {
	db *gorm.DB
}

func NewCommissionRepository(db *gorm.DB) CommissionRepository {
	return &commissionRepoImpl{db: db}
}

func (r *commissionRepoImpl) Create(ctx context.Context, tx *gorm.DB, commission *model.Commission) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(commission).Error
}

func (r *commissionRepoImpl) FindDue(ctx context.Context, tx *gorm.DB, now time.Time) ([]*model.Commission, error) {
	if tx == nil {
		tx = r.db
	}

	var due []*model.Commission
	err := tx.WithContext(ctx).
		Where("status = ? AND unlock_at <= ?", model.CommissionFrozen, now).
		Order("beneficiary_id, id").
		Find(&due).Error
	if err != nil {
		return nil, err
	}

	return due, nil
}

func (r *commissionRepoImpl) MarkAvailable(ctx context.Context, tx *gorm.DB, ids []uint) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Commission{}).
		Where("id IN ? AND status = ?", ids, model.CommissionFrozen).
		Update("status", model.CommissionAvailable)

	return result.RowsAffected, result.Error
}

func (r *commissionRepoImpl) ListByBeneficiary(ctx context.Context, beneficiaryID uint, page, pageSize int) ([]*model.Commission, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Commission{}).
		Where("beneficiary_id = ?", beneficiaryID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var commissions []*model.Commission
	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&commissions).Error
	if err != nil {
		return nil, 0, err
	}

	return commissions, total, nil
}
