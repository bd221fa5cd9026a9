package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/ichewm/MedicalBible-sub004/internal/handler"
	"github.com/ichewm/MedicalBible-sub004/internal/middleware"
)

type Server struct {
	echo              *echo.Echo
	jwtSecret         string
	orderHandler      *handler.OrderHandler
	paymentHandler    *handler.PaymentHandler
	withdrawalHandler *handler.WithdrawalHandler
	adminHandler      *handler.AdminHandler
}

func NewServer(
	jwtSecret string,
	orderHandler *handler.OrderHandler,
	paymentHandler *handler.PaymentHandler,
	withdrawalHandler *handler.WithdrawalHandler,
	adminHandler *handler.AdminHandler,
) *Server {
	e := echo.New()

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:              e,
		jwtSecret:         jwtSecret,
		orderHandler:      orderHandler,
		paymentHandler:    paymentHandler,
		withdrawalHandler: withdrawalHandler,
		adminHandler:      adminHandler,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// Provider callbacks are unauthenticated; authenticity comes from
	// gateway verification, not from a bearer token.
	api.POST("/payment/callback", s.paymentHandler.Callback)

	user := api.Group("", middleware.Auth(s.jwtSecret))
	user.POST("/orders", s.orderHandler.CreateOrder)
	user.GET("/orders", s.orderHandler.ListOrders)
	user.GET("/orders/:orderNo", s.orderHandler.GetOrder)
	user.POST("/orders/:orderNo/cancel", s.orderHandler.CancelOrder)
	user.POST("/orders/:orderNo/pay", s.orderHandler.RequestPayURL)

	user.POST("/withdrawals", s.withdrawalHandler.CreateWithdrawal)
	user.GET("/withdrawals", s.withdrawalHandler.ListWithdrawals)
	user.POST("/withdrawals/:id/cancel", s.withdrawalHandler.CancelWithdrawal)
	user.GET("/commissions", s.withdrawalHandler.ListCommissions)

	admin := api.Group("/admin", middleware.Auth(s.jwtSecret), middleware.RequireAdmin())
	admin.GET("/orders", s.adminHandler.ListOrders)
	admin.GET("/withdrawals", s.adminHandler.ListWithdrawals)
	admin.POST("/withdrawals/:id/review", s.adminHandler.ReviewWithdrawal)
	admin.POST("/withdrawals/:id/complete", s.adminHandler.CompleteWithdrawal)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
