package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/datatypes"

	"github.com/ichewm/MedicalBible-sub004/internal/dto"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

type WithdrawalHandler struct {
	withdrawalService service.WithdrawalService
	commissionService service.CommissionService
}

func NewWithdrawalHandler(withdrawalService service.WithdrawalService, commissionService service.CommissionService) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		commissionService: commissionService,
	}
}

func (h *WithdrawalHandler) CreateWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.WithdrawRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	w, err := h.withdrawalService.CreateWithdrawal(ctx, userIDFrom(c), req.Amount, datatypes.JSON(req.AccountInfo))
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, w)
}

func (h *WithdrawalHandler) CancelWithdrawal(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.withdrawalService.CancelWithdrawal(ctx, userIDFrom(c), id); err != nil {
		return httpError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *WithdrawalHandler) ListWithdrawals(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	withdrawals, total, err := h.withdrawalService.ListWithdrawals(ctx, userIDFrom(c), page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ListResponse{Items: withdrawals, Total: total})
}

func (h *WithdrawalHandler) ListCommissions(c echo.Context) error {
	ctx := c.Request().Context()
	page, pageSize := pageParams(c)

	commissions, total, err := h.commissionService.ListCommissions(ctx, userIDFrom(c), page, pageSize)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusOK, dto.ListResponse{Items: commissions, Total: total})
}
