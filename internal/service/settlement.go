package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
)

// CommissionCreator is what the settlement path needs from the commission
// ledger. The coordinator depends on this interface, not on the commission
// service, so the order and affiliate sides stay decoupled.
type CommissionCreator interface {
	CreateForOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error
}

type SettlementService interface {
	// HandlePaymentConfirmed applies a verified payment notification to the
	// order, the buyer's subscription window and, when the buyer was
	// referred, the referrer's commission — all in one transaction. Safe to
	// call any number of times for the same order: replays are success
	// no-ops.
	HandlePaymentConfirmed(ctx context.Context, orderNo, payMethod, tradeRef string) error
}

type settlementServiceImpl struct {
	db               *gorm.DB
	orderRepo        repository.OrderRepository
	subscriptionRepo repository.SubscriptionRepository
	tierPriceRepo    repository.TierPriceRepository
	userRepo         repository.UserRepository
	commissions      CommissionCreator
}

func NewSettlementService(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	subscriptionRepo repository.SubscriptionRepository,
	tierPriceRepo repository.TierPriceRepository,
	userRepo repository.UserRepository,
	commissions CommissionCreator,
) SettlementService {
	return &settlementServiceImpl{
		db:               db,
		orderRepo:        orderRepo,
		subscriptionRepo: subscriptionRepo,
		tierPriceRepo:    tierPriceRepo,
		userRepo:         userRepo,
		commissions:      commissions,
	}
}

func (s *settlementServiceImpl) HandlePaymentConfirmed(ctx context.Context, orderNo, payMethod, tradeRef string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByOrderNo(ctx, tx, orderNo)
		if err != nil {
			return err
		}

		// Providers retry webhooks; a replay for a settled order must ack
		// without writing anything.
		if order.Status == model.OrderPaid {
			return nil
		}
		if order.Status == model.OrderCancelled {
			return apperr.InvalidState("order %s is cancelled", orderNo)
		}

		now := time.Now()

		// The status guard inside MarkPaid doubles as the idempotency key:
		// of two racing settlements only one flips the row, the other sees
		// zero affected rows and backs out with success.
		affected, err := s.orderRepo.MarkPaid(ctx, tx, orderNo, payMethod, tradeRef, now)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if affected == 0 {
			return nil
		}

		price, err := s.tierPriceRepo.FindByID(ctx, tx, order.TierPriceID)
		if err != nil {
			return err
		}

		if err := s.applySubscription(ctx, tx, order, price.Months, now); err != nil {
			return err
		}

		buyer, err := s.userRepo.FindByID(ctx, tx, order.UserID)
		if err != nil {
			return err
		}
		if buyer.ParentID != nil {
			if err := s.commissions.CreateForOrder(ctx, tx, order); err != nil {
				return fmt.Errorf("create commission: %w", err)
			}
		}

		return nil
	})
}

// applySubscription extends the buyer's active window for the tier, or opens
// a fresh one. A renewal is anchored at the old expiry, not at now, so paying
// early never costs the buyer remaining time.
func (s *settlementServiceImpl) applySubscription(ctx context.Context, tx *gorm.DB, order *model.Order, months int, now time.Time) error {
	existing, err := s.subscriptionRepo.FindActive(ctx, tx, order.UserID, order.TierID, now)
	if err != nil {
		return fmt.Errorf("find active subscription: %w", err)
	}

	if existing != nil {
		newExpire := existing.ExpireAt.AddDate(0, months, 0)
		if err := s.subscriptionRepo.ExtendExpire(ctx, tx, existing.ID, newExpire, order.OrderNo); err != nil {
			return fmt.Errorf("extend subscription: %w", err)
		}
		return nil
	}

	sub := &model.Subscription{
		UserID:        order.UserID,
		TierID:        order.TierID,
		StartAt:       now,
		ExpireAt:      now.AddDate(0, months, 0),
		LatestOrderNo: order.OrderNo,
	}
	if err := s.subscriptionRepo.Create(ctx, tx, sub); err != nil {
		return fmt.Errorf("create subscription: %w", err)
	}
	return nil
}
