package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"github.com/ichewm/MedicalBible-sub004/internal/client"
	"github.com/ichewm/MedicalBible-sub004/internal/config"
	"github.com/ichewm/MedicalBible-sub004/internal/gateway"
	"github.com/ichewm/MedicalBible-sub004/internal/handler"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
	"github.com/ichewm/MedicalBible-sub004/internal/server"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	if cfg.Gateway.TestMode && cfg.Environment.Name == "production" {
		log.Fatal("GATEWAY_TEST_MODE must not be enabled in production")
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)
	gw := gateway.NewHTTPGateway(&cfg.Gateway)

	userRepo := repository.NewUserRepository(db)
	tierPriceRepo := repository.NewTierPriceRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)

	commissionService, err := service.NewCommissionService(
		db, commissionRepo, userRepo,
		cfg.Settlement.CommissionRate, cfg.Settlement.CommissionFreezeDays,
	)
	if err != nil {
		log.Fatal(err)
	}

	settlementService := service.NewSettlementService(
		db, orderRepo, subscriptionRepo, tierPriceRepo, userRepo, commissionService,
	)
	orderService := service.NewOrderService(
		orderRepo, tierPriceRepo, gw, settlementService, cfg.Gateway.TestMode,
	)
	withdrawalService := service.NewWithdrawalService(
		db, withdrawalRepo, userRepo, cfg.Settlement.MinWithdrawal,
	)

	srv := server.NewServer(
		cfg.JWTSecret,
		handler.NewOrderHandler(orderService),
		handler.NewPaymentHandler(gw, settlementService),
		handler.NewWithdrawalHandler(withdrawalService, commissionService),
		handler.NewAdminHandler(orderService, withdrawalService),
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
