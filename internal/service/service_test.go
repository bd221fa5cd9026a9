package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ichewm/MedicalBible-sub004/internal/client"
	"github.com/ichewm/MedicalBible-sub004/internal/gateway"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
)

// env bundles the engine wired against a fresh in-memory database. Tests run
// real transactions; only the payment gateway is stubbed.
type env struct {
	db          *gorm.DB
	users       repository.UserRepository
	orders      repository.OrderRepository
	tierPrices  repository.TierPriceRepository
	commissions CommissionService
	settlement  SettlementService
	withdrawals WithdrawalService
}

type envConfig struct {
	rate          float64
	freezeDays    int
	minWithdrawal float64
}

func newEnv(t *testing.T, cfg envConfig) *env {
	t.Helper()

	// A named shared-cache DB keeps every pooled connection on the same
	// in-memory database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := client.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	tierPriceRepo := repository.NewTierPriceRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)

	commissionService, err := NewCommissionService(
		db, repository.NewCommissionRepository(db), userRepo, cfg.rate, cfg.freezeDays,
	)
	if err != nil {
		t.Fatalf("new commission service: %v", err)
	}

	return &env{
		db:          db,
		users:       userRepo,
		orders:      orderRepo,
		tierPrices:  tierPriceRepo,
		commissions: commissionService,
		settlement: NewSettlementService(
			db, orderRepo, subscriptionRepo, tierPriceRepo, userRepo, commissionService,
		),
		withdrawals: NewWithdrawalService(
			db, repository.NewWithdrawalRepository(db), userRepo, cfg.minWithdrawal,
		),
	}
}

func defaultEnv(t *testing.T) *env {
	return newEnv(t, envConfig{rate: 0.10, freezeDays: 7, minWithdrawal: 10})
}

func (e *env) seedUser(t *testing.T, username string, parentID *uint, balance string) *model.User {
	t.Helper()

	user := &model.User{
		Username: username,
		ParentID: parentID,
		Balance:  dec(balance),
	}
	if err := e.db.Create(user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func (e *env) seedTierPrice(t *testing.T, tierID uint, months int, amount string, active bool) *model.TierPrice {
	t.Helper()

	price := &model.TierPrice{
		TierID: tierID,
		Name:   fmt.Sprintf("tier %d / %d months", tierID, months),
		Months: months,
		Amount: dec(amount),
		Active: active,
	}
	if err := e.db.Create(price).Error; err != nil {
		t.Fatalf("seed tier price: %v", err)
	}
	return price
}

func (e *env) seedOrder(t *testing.T, user *model.User, price *model.TierPrice) *model.Order {
	t.Helper()

	order := &model.Order{
		OrderNo:     fmt.Sprintf("%s%06d", time.Now().Format("20060102150405"), user.ID),
		UserID:      user.ID,
		TierID:      price.TierID,
		TierPriceID: price.ID,
		Amount:      price.Amount,
		Status:      model.OrderPending,
	}
	if err := e.db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return order
}

func (e *env) balance(t *testing.T, userID uint) decimal.Decimal {
	t.Helper()

	user, err := e.users.FindByID(context.Background(), nil, userID)
	if err != nil {
		t.Fatalf("load user %d: %v", userID, err)
	}
	return user.Balance
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, got decimal.Decimal, want string, what string) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s = %s, want %s", what, got, want)
	}
}

// stubGateway satisfies gateway.PaymentGateway for order-service tests.
type stubGateway struct {
	intent    *gateway.Intent
	intentErr error
	callback  *gateway.Callback
	verified  bool
}

func (g *stubGateway) CreateIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.Intent, error) {
	if g.intentErr != nil {
		return nil, g.intentErr
	}
	return g.intent, nil
}

func (g *stubGateway) VerifyCallback(ctx context.Context, payload []byte) (*gateway.Callback, bool, error) {
	return g.callback, g.verified, nil
}
