package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/gateway"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
)

func (e *env) orderService(gw gateway.PaymentGateway, testMode bool) OrderService {
	return NewOrderService(e.orders, e.tierPrices, gw, e.settlement, testMode)
}

func TestCreateOrder(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	user := e.seedUser(t, "alice", nil, "0")
	price := e.seedTierPrice(t, 2, 6, "128.00", true)

	svc := e.orderService(&stubGateway{}, false)
	order, err := svc.CreateOrder(ctx, user.ID, price.ID)
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if order.Status != model.OrderPending {
		t.Errorf("status = %s, want PENDING", order.Status)
	}
	assertMoney(t, order.Amount, "128.00", "order amount")
	if order.TierID != price.TierID {
		t.Errorf("tier id = %d, want %d", order.TierID, price.TierID)
	}

	// Date-coded order number: yyyymmddHHMMSS prefix plus 6 random digits.
	if len(order.OrderNo) != 20 {
		t.Fatalf("order no %q has length %d, want 20", order.OrderNo, len(order.OrderNo))
	}
	if !strings.HasPrefix(order.OrderNo, time.Now().Format("20060102")) {
		t.Errorf("order no %q not date-coded for today", order.OrderNo)
	}
}

func TestCreateOrder_PriceChecks(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	user := e.seedUser(t, "alice", nil, "0")
	inactive := e.seedTierPrice(t, 1, 1, "30.00", false)

	svc := e.orderService(&stubGateway{}, false)

	if _, err := svc.CreateOrder(ctx, user.ID, 9999); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown price err = %v, want NotFound", err)
	}
	if _, err := svc.CreateOrder(ctx, user.ID, inactive.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("inactive price err = %v, want InvalidState", err)
	}
}

func TestCancelOrder(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	user := e.seedUser(t, "alice", nil, "0")
	other := e.seedUser(t, "mallory", nil, "0")
	price := e.seedTierPrice(t, 1, 1, "30.00", true)
	order := e.seedOrder(t, user, price)

	svc := e.orderService(&stubGateway{}, false)

	// Not the owner: looks like it does not exist.
	if err := svc.CancelOrder(ctx, order.OrderNo, other.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign cancel err = %v, want NotFound", err)
	}

	if err := svc.CancelOrder(ctx, order.OrderNo, user.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	got, err := svc.GetOrder(ctx, order.OrderNo, user.ID)
	if err != nil {
		t.Fatalf("get order: %v", err)
	}
	if got.Status != model.OrderCancelled {
		t.Errorf("status = %s, want CANCELLED", got.Status)
	}

	// CANCELLED is terminal.
	if err := svc.CancelOrder(ctx, order.OrderNo, user.ID); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("second cancel err = %v, want InvalidState", err)
	}
}

func TestRequestPayURL_ReturnsIntent(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	user := e.seedUser(t, "alice", nil, "0")
	price := e.seedTierPrice(t, 1, 1, "30.00", true)
	order := e.seedOrder(t, user, price)

	svc := e.orderService(&stubGateway{
		intent: &gateway.Intent{PayURL: "https://pay.example/i/abc", QRCode: "QR"},
	}, false)

	resp, err := svc.RequestPayURL(ctx, order.OrderNo, user.ID, "wechat")
	if err != nil {
		t.Fatalf("request pay url: %v", err)
	}
	if resp.PayURL != "https://pay.example/i/abc" || resp.QRCode != "QR" {
		t.Errorf("unexpected intent passthrough: %+v", resp)
	}

	// Gateway failure surfaces as ExternalError, order untouched.
	failing := e.orderService(&stubGateway{intentErr: fmt.Errorf("provider down")}, false)
	if _, err := failing.RequestPayURL(ctx, order.OrderNo, user.ID, "wechat"); !errors.Is(err, apperr.ErrExternal) {
		t.Errorf("err = %v, want ExternalError", err)
	}
	got, _ := svc.GetOrder(ctx, order.OrderNo, user.ID)
	if got.Status != model.OrderPending {
		t.Errorf("failed intent mutated order to %s", got.Status)
	}
}

func TestRequestPayURL_TestModeSettlesInline(t *testing.T) {
	e := defaultEnv(t)
	ctx := context.Background()

	user := e.seedUser(t, "alice", nil, "0")
	price := e.seedTierPrice(t, 1, 1, "30.00", true)
	order := e.seedOrder(t, user, price)

	svc := e.orderService(&stubGateway{}, true)

	resp, err := svc.RequestPayURL(ctx, order.OrderNo, user.ID, "wechat")
	if err != nil {
		t.Fatalf("request pay url: %v", err)
	}
	if !resp.Paid {
		t.Error("test mode response not marked paid")
	}

	got, _ := svc.GetOrder(ctx, order.OrderNo, user.ID)
	if got.Status != model.OrderPaid {
		t.Errorf("status = %s, want PAID", got.Status)
	}
	if !strings.HasPrefix(got.TradeRef, "TEST-") {
		t.Errorf("trade ref %q missing synthetic prefix", got.TradeRef)
	}

	var subCount int64
	e.db.Model(&model.Subscription{}).Count(&subCount)
	if subCount != 1 {
		t.Errorf("test-mode settlement created %d subscriptions, want 1", subCount)
	}

	// Paying a settled order again is refused.
	if _, err := svc.RequestPayURL(ctx, order.OrderNo, user.ID, "wechat"); !errors.Is(err, apperr.ErrInvalidState) {
		t.Errorf("repay err = %v, want InvalidState", err)
	}
}
