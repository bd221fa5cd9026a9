package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type WithdrawalRepository interface {
	Create(ctx context.Context, tx *gorm.DB, withdrawal *model.Withdrawal) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Withdrawal, error)
	FindByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*model.Withdrawal, error)
	CountInFlight(ctx context.Context, tx *gorm.DB, userID uint) (int64, error)
	// The Mark* transitions carry their from-status in the WHERE clause;
	// callers check the affected count to detect stale state.
	MarkApproved(ctx context.Context, tx *gorm.DB, id, adminID uint) (int64, error)
	MarkRejected(ctx context.Context, tx *gorm.DB, id uint, adminID *uint, reason string, refund decimal.Decimal) (int64, error)
	MarkCompleted(ctx context.Context, tx *gorm.DB, id, adminID uint, processedAt time.Time) (int64, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*model.Withdrawal, int64, error)
	ListAll(ctx context.Context, status model.WithdrawalStatus, page, pageSize int) ([]*model.Withdrawal, int64, error)
}

type withdrawalRepoImpl struct {
	db *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) WithdrawalRepository {
	return &withdrawalRepoImpl{db: db}
}

func (r *withdrawalRepoImpl) Create(ctx context.Context, tx *gorm.DB, withdrawal *model.Withdrawal) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(withdrawal).Error
}

func (r *withdrawalRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*model.Withdrawal, error) {
	if tx == nil {
		tx = r.db
	}

	var w model.Withdrawal
	err := tx.WithContext(ctx).First(&w, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("withdrawal %d", id)
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *withdrawalRepoImpl) FindByIDAndUser(ctx context.Context, tx *gorm.DB, id, userID uint) (*model.Withdrawal, error) {
	if tx == nil {
		tx = r.db
	}

	var w model.Withdrawal
	err := tx.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("withdrawal %d", id)
	}
	if err != nil {
		return nil, err
	}

	return &w, nil
}

func (r *withdrawalRepoImpl) CountInFlight(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	var count int64
	err := tx.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("user_id = ? AND status IN ?", userID, []model.WithdrawalStatus{
			model.WithdrawalPending,
			model.WithdrawalApproved,
			model.WithdrawalProcessing,
		}).
		Count(&count).Error

	return count, err
}

func (r *withdrawalRepoImpl) MarkApproved(ctx context.Context, tx *gorm.DB, id, adminID uint) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, model.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":   model.WithdrawalApproved,
			"admin_id": adminID,
		})

	return result.RowsAffected, result.Error
}

func (r *withdrawalRepoImpl) MarkRejected(ctx context.Context, tx *gorm.DB, id uint, adminID *uint, reason string, refund decimal.Decimal) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, model.WithdrawalPending).
		Updates(map[string]interface{}{
			"status":        model.WithdrawalRejected,
			"admin_id":      adminID,
			"reject_reason": reason,
			"refund_amount": refund,
		})

	return result.RowsAffected, result.Error
}

func (r *withdrawalRepoImpl) MarkCompleted(ctx context.Context, tx *gorm.DB, id, adminID uint, processedAt time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, model.WithdrawalApproved).
		Updates(map[string]interface{}{
			"status":       model.WithdrawalCompleted,
			"admin_id":     adminID,
			"processed_at": processedAt,
		})

	return result.RowsAffected, result.Error
}

func (r *withdrawalRepoImpl) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*model.Withdrawal, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Withdrawal{}).Where("user_id = ?", userID)

	return paginateWithdrawals(query, page, pageSize)
}

func (r *withdrawalRepoImpl) ListAll(ctx context.Context, status model.WithdrawalStatus, page, pageSize int) ([]*model.Withdrawal, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Withdrawal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	return paginateWithdrawals(query, page, pageSize)
}

func paginateWithdrawals(query *gorm.DB, page, pageSize int) ([]*model.Withdrawal, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var withdrawals []*model.Withdrawal
	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&withdrawals).Error
	if err != nil {
		return nil, 0, err
	}

	return withdrawals, total, nil
}
