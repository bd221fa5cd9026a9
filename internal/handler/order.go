package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ichewm/MedicalBible-sub004/internal/dto"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.CreateOrder(ctx, userIDFrom(c), req.TierPriceID)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.orderService.CancelOrder(ctx, c.Param("orderNo"), userIDFrom(c)); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.GetOrder(ctx, c.Param("orderNo"), userIDFrom(c))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	orders, total, err := h.orderService.ListOrders(ctx, userIDFrom(c), page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ListResponse{Items: orders, Total: total})
}

func (h *OrderHandler) RequestPayURL(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	resp, err := h.orderService.RequestPayURL(ctx, c.Param("orderNo"), userIDFrom(c), req.Provider)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, resp)
}
