package handler

import (
	"io"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ichewm/MedicalBible-sub004/internal/gateway"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

type PaymentHandler struct {
	gateway    gateway.PaymentGateway
	settlement service.SettlementService
}

func NewPaymentHandler(gw gateway.PaymentGateway, settlement service.SettlementService) *PaymentHandler {
	return &PaymentHandler{gateway: gw, settlement: settlement}
}

// Callback receives payment notifications from the provider. The response is
// deliberately uninformative on failure — a generic "fail" makes the provider
// retry without leaking internal detail to whoever is posting to this route.
func (h *PaymentHandler) Callback(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.String(http.StatusBadRequest, "fail")
	}

	cb, ok, err := h.gateway.VerifyCallback(ctx, body)
	if err != nil {
		log.Printf("payment callback verification errored: %v", err)
		return c.String(http.StatusBadGateway, "fail")
	}
	if !ok {
		// Security relevant: someone posted a payload the provider does not
		// recognize as its own.
		log.Printf("payment callback failed verification, remote=%s", c.RealIP())
		return c.String(http.StatusBadRequest, "fail")
	}

	if err := h.settlement.HandlePaymentConfirmed(ctx, cb.OrderNo, cb.PayMethod, cb.TradeRef); err != nil {
		log.Printf("settle order %s: %v", cb.OrderNo, err)
		return c.String(http.StatusInternalServerError, "fail")
	}

	return c.String(http.StatusOK, "success")
}
