package repository

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error)
	// Debit subtracts amount from the user's balance. The balance check and
	// the write are one guarded UPDATE, so two concurrent debits can never
	// both spend the same funds regardless of isolation level.
	Debit(ctx context.Context, tx *gorm.DB, userID uint, amount decimal.Decimal) error
	Credit(ctx context.Context, tx *gorm.DB, userID uint, amount decimal.Decimal) error
}

type userRepoImpl struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepoImpl{db: db}
}

func (r *userRepoImpl) FindByID(ctx context.Context, tx *gorm.DB, userID uint) (*model.User, error) {
	if tx == nil {
		tx = r.db
	}

	var user model.User
	err := tx.WithContext(ctx).First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user %d", userID)
	}
	if err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepoImpl) Debit(ctx context.Context, tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND balance >= ?", userID, amount).
		Update("balance", gorm.Expr("balance - ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.InvalidState("insufficient balance for user %d", userID)
	}
	return nil
}

func (r *userRepoImpl) Credit(ctx context.Context, tx *gorm.DB, userID uint, amount decimal.Decimal) error {
	result := tx.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("balance", gorm.Expr("balance + ?", amount))

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("user %d", userID)
	}
	return nil
}
