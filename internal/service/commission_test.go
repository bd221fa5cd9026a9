package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

func (e *env) seedCommission(t *testing.T, beneficiaryID uint, amount string, status model.CommissionStatus, unlockAt time.Time) *model.Commission {
	t.Helper()

	c := &model.Commission{
		BeneficiaryID: beneficiaryID,
		SourceUserID:  beneficiaryID + 1000,
		OrderNo:       fmt.Sprintf("C%d-%d", beneficiaryID, time.Now().UnixNano()),
		Amount:        dec(amount),
		Rate:          dec("0.10"),
		Status:        status,
		UnlockAt:      unlockAt,
	}
	if err := e.db.Create(c).Error; err != nil {
		t.Fatalf("seed commission: %v", err)
	}
	return c
}

func TestUnlockDue_OneCreditPerBeneficiary(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	alice := e.seedUser(t, "alice", nil, "0")
	bob := e.seedUser(t, "bob", nil, "5")

	due := time.Now().Add(-time.Minute)
	e.seedCommission(t, alice.ID, "3.50", model.CommissionFrozen, due)
	e.seedCommission(t, alice.ID, "2.49", model.CommissionFrozen, due)
	e.seedCommission(t, alice.ID, "0.01", model.CommissionFrozen, due)
	e.seedCommission(t, bob.ID, "10.00", model.CommissionFrozen, due)
	// Not yet due: must stay frozen and unpaid.
	e.seedCommission(t, alice.ID, "99.00", model.CommissionFrozen, time.Now().Add(time.Hour))

	count, err := e.commissions.UnlockDue(ctx)
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if count != 4 {
		t.Errorf("unlocked = %d, want 4", count)
	}

	// Balance increases by exactly the sum of the unlocked amounts.
	assertMoney(t, e.balance(t, alice.ID), "6", "alice balance")
	assertMoney(t, e.balance(t, bob.ID), "15", "bob balance")

	var frozen int64
	e.db.Model(&model.Commission{}).Where("status = ?", model.CommissionFrozen).Count(&frozen)
	if frozen != 1 {
		t.Errorf("frozen rows remaining = %d, want 1", frozen)
	}
}

func TestUnlockDue_NothingDue(t *testing.T) {
	e := defaultEnv(t)

	alice := e.seedUser(t, "alice", nil, "0")
	e.seedCommission(t, alice.ID, "1.00", model.CommissionFrozen, time.Now().Add(time.Hour))

	count, err := e.commissions.UnlockDue(context.Background())
	if err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if count != 0 {
		t.Errorf("unlocked = %d, want 0", count)
	}
	assertMoney(t, e.balance(t, alice.ID), "0", "alice balance")
}

func TestUnlockDue_SecondRunIsNoOp(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	alice := e.seedUser(t, "alice", nil, "0")
	e.seedCommission(t, alice.ID, "7.77", model.CommissionFrozen, time.Now().Add(-time.Minute))

	if _, err := e.commissions.UnlockDue(ctx); err != nil {
		t.Fatalf("first unlock: %v", err)
	}

	// The unlocked row is AVAILABLE now, so it never matches the due set
	// again and the credit cannot double-fire.
	count, err := e.commissions.UnlockDue(ctx)
	if err != nil {
		t.Fatalf("second unlock: %v", err)
	}
	if count != 0 {
		t.Errorf("second run unlocked %d, want 0", count)
	}
	assertMoney(t, e.balance(t, alice.ID), "7.77", "alice balance")
}
