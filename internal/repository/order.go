package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, order *model.Order) error
	FindByOrderNo(ctx context.Context, tx *gorm.DB, orderNo string) (*model.Order, error)
	FindByOrderNoAndUser(ctx context.Context, orderNo string, userID uint) (*model.Order, error)
	// MarkPaid transitions PENDING→PAID. The status guard sits in the WHERE
	// clause so a replayed or racing settlement affects zero rows instead of
	// overwriting a paid order.
	MarkPaid(ctx context.Context, tx *gorm.DB, orderNo, payMethod, tradeRef string, paidAt time.Time) (int64, error)
	MarkCancelled(ctx context.Context, tx *gorm.DB, orderNo string, userID uint) (int64, error)
	ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*model.Order, int64, error)
	ListAll(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]*model.Order, int64, error)
}

type orderRepoImpl struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepoImpl{db: db}
}

func (r *orderRepoImpl) Create(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	if tx == nil {
		tx = r.db
	}
	return tx.WithContext(ctx).Create(order).Error
}

func (r *orderRepoImpl) FindByOrderNo(ctx context.Context, tx *gorm.DB, orderNo string) (*model.Order, error) {
	if tx == nil {
		tx = r.db
	}

	var order model.Order
	err := tx.WithContext(ctx).
		Where("order_no = ?", orderNo).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order %s", orderNo)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) FindByOrderNoAndUser(ctx context.Context, orderNo string, userID uint) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("order_no = ? AND user_id = ?", orderNo, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("order %s", orderNo)
	}
	if err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *orderRepoImpl) MarkPaid(ctx context.Context, tx *gorm.DB, orderNo, payMethod, tradeRef string, paidAt time.Time) (int64, error) {
	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND status = ?", orderNo, model.OrderPending).
		Updates(map[string]interface{}{
			"status":     model.OrderPaid,
			"pay_method": payMethod,
			"trade_ref":  tradeRef,
			"paid_at":    paidAt,
		})

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) MarkCancelled(ctx context.Context, tx *gorm.DB, orderNo string, userID uint) (int64, error) {
	if tx == nil {
		tx = r.db
	}

	result := tx.WithContext(ctx).Model(&model.Order{}).
		Where("order_no = ? AND user_id = ? AND status = ?", orderNo, userID, model.OrderPending).
		Update("status", model.OrderCancelled)

	return result.RowsAffected, result.Error
}

func (r *orderRepoImpl) ListByUser(ctx context.Context, userID uint, page, pageSize int) ([]*model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{}).Where("user_id = ?", userID)

	return paginateOrders(query, page, pageSize)
}

func (r *orderRepoImpl) ListAll(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]*model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	return paginateOrders(query, page, pageSize)
}

func paginateOrders(query *gorm.DB, page, pageSize int) ([]*model.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []*model.Order
	err := query.
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}
