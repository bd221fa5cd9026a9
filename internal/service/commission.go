package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
)

type CommissionService interface {
	CommissionCreator
	// UnlockDue promotes every due FROZEN commission to AVAILABLE and
	// credits each beneficiary once with the sum of their unlocked amounts.
	// Returns how many commissions were unlocked. Rerunning after a failure
	// retries the same due set, so the scheduler needs no state of its own.
	UnlockDue(ctx context.Context) (int, error)
	ListCommissions(ctx context.Context, beneficiaryID uint, page, pageSize int) ([]*model.Commission, int64, error)
}

type commissionServiceImpl struct {
	db             *gorm.DB
	commissionRepo repository.CommissionRepository
	userRepo       repository.UserRepository
	rate           decimal.Decimal
	freezeDays     int
}

func NewCommissionService(
	db *gorm.DB,
	commissionRepo repository.CommissionRepository,
	userRepo repository.UserRepository,
	rate float64,
	freezeDays int,
) (CommissionService, error) {
	if rate < 0 || rate > 1 {
		return nil, apperr.InvalidArgument("commission rate %v out of range [0,1]", rate)
	}
	if freezeDays < 0 {
		return nil, apperr.InvalidArgument("commission freeze days %d must not be negative", freezeDays)
	}

	return &commissionServiceImpl{
		db:             db,
		commissionRepo: commissionRepo,
		userRepo:       userRepo,
		rate:           decimal.NewFromFloat(rate),
		freezeDays:     freezeDays,
	}, nil
}

func (s *commissionServiceImpl) CreateForOrder(ctx context.Context, tx *gorm.DB, order *model.Order) error {
	buyer, err := s.userRepo.FindByID(ctx, tx, order.UserID)
	if err != nil {
		return err
	}
	if buyer.ParentID == nil {
		// Unreferred buyer: nothing owed, not an error.
		return nil
	}

	// Floor, never round: the beneficiary may get a cent less than the exact
	// rate, never a cent more.
	amount := order.Amount.Mul(s.rate).RoundFloor(2)

	now := time.Now()
	commission := &model.Commission{
		BeneficiaryID: *buyer.ParentID,
		SourceUserID:  buyer.ID,
		OrderNo:       order.OrderNo,
		Amount:        amount,
		Rate:          s.rate,
		Status:        model.CommissionFrozen,
		UnlockAt:      now.AddDate(0, 0, s.freezeDays),
	}

	// No freeze window configured: the credit is spendable right away and
	// the unlock job never sees this row.
	if s.freezeDays == 0 {
		commission.Status = model.CommissionAvailable
	}

	if err := s.commissionRepo.Create(ctx, tx, commission); err != nil {
		return err
	}

	if commission.Status == model.CommissionAvailable {
		if err := s.userRepo.Credit(ctx, tx, commission.BeneficiaryID, amount); err != nil {
			return fmt.Errorf("credit beneficiary %d: %w", commission.BeneficiaryID, err)
		}
	}

	return nil
}

func (s *commissionServiceImpl) UnlockDue(ctx context.Context) (int, error) {
	var unlocked int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		due, err := s.commissionRepo.FindDue(ctx, tx, time.Now())
		if err != nil {
			return fmt.Errorf("find due commissions: %w", err)
		}
		if len(due) == 0 {
			return nil
		}

		ids := make([]uint, len(due))
		totals := make(map[uint]decimal.Decimal)
		for i, c := range due {
			ids[i] = c.ID
			totals[c.BeneficiaryID] = totals[c.BeneficiaryID].Add(c.Amount)
		}

		affected, err := s.commissionRepo.MarkAvailable(ctx, tx, ids)
		if err != nil {
			return fmt.Errorf("mark commissions available: %w", err)
		}
		if affected != int64(len(ids)) {
			// Another unlocker grabbed part of the set; roll back and let
			// the next tick settle what is still frozen.
			return fmt.Errorf("expected to unlock %d commissions, changed %d", len(ids), affected)
		}

		// One credit per beneficiary, not per row.
		for beneficiaryID, total := range totals {
			if err := s.userRepo.Credit(ctx, tx, beneficiaryID, total); err != nil {
				return fmt.Errorf("credit beneficiary %d: %w", beneficiaryID, err)
			}
		}

		unlocked = len(ids)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return unlocked, nil
}

func (s *commissionServiceImpl) ListCommissions(ctx context.Context, beneficiaryID uint, page, pageSize int) ([]*model.Commission, int64, error) {
	return s.commissionRepo.ListByBeneficiary(ctx, beneficiaryID, page, pageSize)
}
