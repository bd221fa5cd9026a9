package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
)

const userCancelledReason = "user cancelled"

type WithdrawalService interface {
	// CreateWithdrawal reserves the amount by debiting the balance and
	// inserting a PENDING request in one transaction. At most one request
	// may be in flight per user.
	CreateWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal, accountInfo datatypes.JSON) (*model.Withdrawal, error)
	CancelWithdrawal(ctx context.Context, userID, id uint) error
	// ApproveWithdrawal reviews a PENDING request. Approval moves no money
	// (the funds are already reserved); rejection credits the refund back,
	// full by default, or the admin's override for partial-fault cases.
	ApproveWithdrawal(ctx context.Context, id, adminID uint, approved bool, reason string, refundAmount *decimal.Decimal) error
	CompleteWithdrawal(ctx context.Context, id, adminID uint) error
	ListWithdrawals(ctx context.Context, userID uint, page, pageSize int) ([]*model.Withdrawal, int64, error)
	ListAllWithdrawals(ctx context.Context, status model.WithdrawalStatus, page, pageSize int) ([]*model.Withdrawal, int64, error)
}

type withdrawalServiceImpl struct {
	db             *gorm.DB
	withdrawalRepo repository.WithdrawalRepository
	userRepo       repository.UserRepository
	minWithdrawal  decimal.Decimal
}

func NewWithdrawalService(
	db *gorm.DB,
	withdrawalRepo repository.WithdrawalRepository,
	userRepo repository.UserRepository,
	minWithdrawal float64,
) WithdrawalService {
	return &withdrawalServiceImpl{
		db:             db,
		withdrawalRepo: withdrawalRepo,
		userRepo:       userRepo,
		minWithdrawal:  decimal.NewFromFloat(minWithdrawal),
	}
}

func (s *withdrawalServiceImpl) CreateWithdrawal(ctx context.Context, userID uint, amount decimal.Decimal, accountInfo datatypes.JSON) (*model.Withdrawal, error) {
	if amount.LessThan(s.minWithdrawal) {
		return nil, apperr.InvalidArgument("amount %s below minimum %s", amount, s.minWithdrawal)
	}

	withdrawal := &model.Withdrawal{
		UserID:      userID,
		Amount:      amount,
		AccountInfo: accountInfo,
		Status:      model.WithdrawalPending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inFlight, err := s.withdrawalRepo.CountInFlight(ctx, tx, userID)
		if err != nil {
			return err
		}
		if inFlight > 0 {
			return apperr.InvalidState("a withdrawal request is already in flight")
		}

		// Debit is a guarded UPDATE: the sufficient-funds check and the
		// write are one statement, so a concurrent request cannot spend the
		// same balance twice.
		if err := s.userRepo.Debit(ctx, tx, userID, amount); err != nil {
			return err
		}

		return s.withdrawalRepo.Create(ctx, tx, withdrawal)
	})
	if err != nil {
		return nil, err
	}

	return withdrawal, nil
}

func (s *withdrawalServiceImpl) CancelWithdrawal(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := s.withdrawalRepo.FindByIDAndUser(ctx, tx, id, userID)
		if err != nil {
			return err
		}
		if w.Status != model.WithdrawalPending {
			return apperr.InvalidState("withdrawal %d is %s, only PENDING can be cancelled", id, w.Status)
		}

		affected, err := s.withdrawalRepo.MarkRejected(ctx, tx, id, nil, userCancelledReason, w.Amount)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.InvalidState("withdrawal %d is no longer PENDING", id)
		}

		return s.userRepo.Credit(ctx, tx, userID, w.Amount)
	})
}

func (s *withdrawalServiceImpl) ApproveWithdrawal(ctx context.Context, id, adminID uint, approved bool, reason string, refundAmount *decimal.Decimal) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w, err := s.withdrawalRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if w.Status != model.WithdrawalPending {
			return apperr.InvalidState("withdrawal %d is %s, only PENDING can be reviewed", id, w.Status)
		}

		if approved {
			affected, err := s.withdrawalRepo.MarkApproved(ctx, tx, id, adminID)
			if err != nil {
				return err
			}
			if affected == 0 {
				return apperr.InvalidState("withdrawal %d is no longer PENDING", id)
			}
			// Funds stay reserved; the payout itself happens outside the
			// ledger and is confirmed via CompleteWithdrawal.
			return nil
		}

		refund := w.Amount
		if refundAmount != nil {
			if refundAmount.IsNegative() || refundAmount.GreaterThan(w.Amount) {
				return apperr.InvalidArgument("refund %s outside [0, %s]", refundAmount, w.Amount)
			}
			refund = *refundAmount
		}

		affected, err := s.withdrawalRepo.MarkRejected(ctx, tx, id, &adminID, reason, refund)
		if err != nil {
			return err
		}
		if affected == 0 {
			return apperr.InvalidState("withdrawal %d is no longer PENDING", id)
		}

		if refund.IsPositive() {
			if err := s.userRepo.Credit(ctx, tx, w.UserID, refund); err != nil {
				return fmt.Errorf("refund user %d: %w", w.UserID, err)
			}
		}
		return nil
	})
}

func (s *withdrawalServiceImpl) CompleteWithdrawal(ctx context.Context, id, adminID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.withdrawalRepo.MarkCompleted(ctx, tx, id, adminID, time.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			w, err := s.withdrawalRepo.FindByID(ctx, tx, id)
			if err != nil {
				return err
			}
			return apperr.InvalidState("withdrawal %d is %s, only APPROVED can be completed", id, w.Status)
		}
		// No balance movement: the money left the ledger at approval.
		return nil
	})
}

func (s *withdrawalServiceImpl) ListWithdrawals(ctx context.Context, userID uint, page, pageSize int) ([]*model.Withdrawal, int64, error) {
	return s.withdrawalRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *withdrawalServiceImpl) ListAllWithdrawals(ctx context.Context, status model.WithdrawalStatus, page, pageSize int) ([]*model.Withdrawal, int64, error) {
	return s.withdrawalRepo.ListAll(ctx, status, page, pageSize)
}
