package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ichewm/MedicalBible-sub004/internal/apperr"
	"github.com/ichewm/MedicalBible-sub004/internal/dto"
	"github.com/ichewm/MedicalBible-sub004/internal/gateway"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
)

type OrderService interface {
	CreateOrder(ctx context.Context, userID, tierPriceID uint) (*model.Order, error)
	CancelOrder(ctx context.Context, orderNo string, userID uint) error
	GetOrder(ctx context.Context, orderNo string, userID uint) (*model.Order, error)
	ListOrders(ctx context.Context, userID uint, page, pageSize int) ([]*model.Order, int64, error)
	ListAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]*model.Order, int64, error)
	// RequestPayURL asks the gateway for a payable intent on a PENDING
	// order. In test mode it skips the gateway and settles the order on the
	// spot with a synthetic trade reference.
	RequestPayURL(ctx context.Context, orderNo string, userID uint, provider string) (*dto.PayURLResponse, error)
}

type orderServiceImpl struct {
	orderRepo     repository.OrderRepository
	tierPriceRepo repository.TierPriceRepository
	gateway       gateway.PaymentGateway
	settlement    SettlementService
	testMode      bool
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	tierPriceRepo repository.TierPriceRepository,
	gw gateway.PaymentGateway,
	settlement SettlementService,
	testMode bool,
) OrderService {
	return &orderServiceImpl{
		orderRepo:     orderRepo,
		tierPriceRepo: tierPriceRepo,
		gateway:       gw,
		settlement:    settlement,
		testMode:      testMode,
	}
}

func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID, tierPriceID uint) (*model.Order, error) {
	price, err := s.tierPriceRepo.FindByID(ctx, nil, tierPriceID)
	if err != nil {
		return nil, err
	}
	if !price.Active {
		return nil, apperr.InvalidState("tier price %d is no longer on sale", tierPriceID)
	}

	order := &model.Order{
		OrderNo:     newOrderNo(time.Now()),
		UserID:      userID,
		TierID:      price.TierID,
		TierPriceID: price.ID,
		Amount:      price.Amount,
		Status:      model.OrderPending,
	}
	if err := s.orderRepo.Create(ctx, nil, order); err != nil {
		return nil, fmt.Errorf("store order: %w", err)
	}

	return order, nil
}

func (s *orderServiceImpl) CancelOrder(ctx context.Context, orderNo string, userID uint) error {
	affected, err := s.orderRepo.MarkCancelled(ctx, nil, orderNo, userID)
	if err != nil {
		return err
	}
	if affected == 0 {
		// Distinguish a missing order from one in the wrong state.
		order, err := s.orderRepo.FindByOrderNoAndUser(ctx, orderNo, userID)
		if err != nil {
			return err
		}
		return apperr.InvalidState("order %s is %s, only PENDING can be cancelled", orderNo, order.Status)
	}
	return nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, orderNo string, userID uint) (*model.Order, error) {
	return s.orderRepo.FindByOrderNoAndUser(ctx, orderNo, userID)
}

func (s *orderServiceImpl) ListOrders(ctx context.Context, userID uint, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderRepo.ListByUser(ctx, userID, page, pageSize)
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context, status model.OrderStatus, page, pageSize int) ([]*model.Order, int64, error) {
	return s.orderRepo.ListAll(ctx, status, page, pageSize)
}

func (s *orderServiceImpl) RequestPayURL(ctx context.Context, orderNo string, userID uint, provider string) (*dto.PayURLResponse, error) {
	order, err := s.orderRepo.FindByOrderNoAndUser(ctx, orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderPending {
		return nil, apperr.InvalidState("order %s is %s, only PENDING can be paid", orderNo, order.Status)
	}

	price, err := s.tierPriceRepo.FindByID(ctx, nil, order.TierPriceID)
	if err != nil {
		return nil, err
	}

	if s.testMode {
		// Staging/demo shortcut: settle immediately as if the provider had
		// called back.
		tradeRef := "TEST-" + uuid.NewString()
		if err := s.settlement.HandlePaymentConfirmed(ctx, orderNo, provider, tradeRef); err != nil {
			return nil, err
		}
		return &dto.PayURLResponse{OrderNo: orderNo, Paid: true}, nil
	}

	intent, err := s.gateway.CreateIntent(ctx, gateway.IntentRequest{
		Provider: provider,
		OrderNo:  orderNo,
		Amount:   order.Amount,
		Subject:  price.Name,
	})
	if err != nil {
		return nil, apperr.External("create payment intent for %s: %v", orderNo, err)
	}

	return &dto.PayURLResponse{
		OrderNo: orderNo,
		PayURL:  intent.PayURL,
		QRCode:  intent.QRCode,
	}, nil
}

// newOrderNo builds a date-coded order number, e.g. 20260827153012847261.
// The date prefix keeps numbers human-routable in support tooling; the random
// suffix keeps concurrent creations from colliding.
func newOrderNo(now time.Time) string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// fall back to the clock rather than refusing the purchase.
		binary.BigEndian.PutUint32(buf[:], uint32(now.UnixNano()))
	}
	suffix := binary.BigEndian.Uint32(buf[:]) % 1_000_000
	return now.Format("20060102150405") + fmt.Sprintf("%06d", suffix)
}
