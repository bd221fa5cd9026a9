package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ichewm/MedicalBible-sub004/internal/dto"
	"github.com/ichewm/MedicalBible-sub004/internal/model"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

type AdminHandler struct {
	orderService      service.OrderService
	withdrawalService service.WithdrawalService
}

func NewAdminHandler(orderService service.OrderService, withdrawalService service.WithdrawalService) *AdminHandler {
	return &AdminHandler{
		orderService:      orderService,
		withdrawalService: withdrawalService,
	}
}

func (h *AdminHandler) ReviewWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	var req dto.ReviewWithdrawalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	err = h.withdrawalService.ApproveWithdrawal(ctx, id, userIDFrom(c), req.Approved, req.Reason, req.RefundAmount)
	if err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) CompleteWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.withdrawalService.CompleteWithdrawal(ctx, id, userIDFrom(c)); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListWithdrawals(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	status := model.WithdrawalStatus(c.QueryParam("status"))
	withdrawals, total, err := h.withdrawalService.ListAllWithdrawals(ctx, status, page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ListResponse{Items: withdrawals, Total: total})
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	status := model.OrderStatus(c.QueryParam("status"))
	orders, total, err := h.orderService.ListAllOrders(ctx, status, page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ListResponse{Items: orders, Total: total})
}
