package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/ichewm/MedicalBible-sub004/internal/client"
	"github.com/ichewm/MedicalBible-sub004/internal/config"
	"github.com/ichewm/MedicalBible-sub004/internal/repository"
	"github.com/ichewm/MedicalBible-sub004/internal/service"
)

// The unlocker promotes due frozen commissions to available and credits the
// beneficiaries. All state lives in the database, so nothing carries over
// between ticks and a failed run simply retries on the next one.
func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	db := client.InitMysqlClient(cfg.DatabaseURL)

	commissionService, err := service.NewCommissionService(
		db,
		repository.NewCommissionRepository(db),
		repository.NewUserRepository(db),
		cfg.Settlement.CommissionRate,
		cfg.Settlement.CommissionFreezeDays,
	)
	if err != nil {
		log.Fatal(err)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Settlement.UnlockSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		count, err := commissionService.UnlockDue(ctx)
		if err != nil {
			log.Printf("[CRON] commission unlock failed: %v", err)
			return
		}
		if count == 0 {
			log.Println("[CRON] commission unlock: nothing due")
			return
		}
		log.Printf("[CRON] commission unlock: promoted %d commissions", count)
	})
	if err != nil {
		log.Fatalf("failed to add unlock job: %v", err)
	}

	scheduler.Start()
	log.Printf("Commission unlocker started, schedule %q", cfg.Settlement.UnlockSpec)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down gracefully...")
	ctx := scheduler.Stop()
	select {
	case <-ctx.Done():
		log.Println("Unlock job stopped gracefully")
	case <-time.After(5 * time.Second):
		log.Println("Unlock job forced to stop after timeout")
	}
}
