package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
	"ielts-payme-billing/internal/infra/db/postgres"
	"ielts-payme-billing/internal/infra/security"
)

// Resets the database to a predictable state for manual end-to-end testing
// against the Payme sandbox and prints bearer tokens for the order API.
func main() {
	userID := flag.String("user", "e2e-user", "subject of the minted user token")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "lifetime of the minted tokens")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config load: %v", err)
	}
	if !cfg.Runtime.Dev {
		log.Fatal("refusing to wipe data without -dev")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("postgres connection failed: %v", err)
	}
	defer pool.Close()

	log.Println("--- Starting E2E Environment Setup ---")

	log.Println("[1/3] Wiping billing tables...")
	_, err = pool.Exec(ctx, `
		TRUNCATE payme_transactions, payment_history, user_plans, orders, plans
		RESTART IDENTITY CASCADE;
	`)
	if err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}

	log.Println("[2/3] Seeding plans...")
	planRepo := postgres.NewPostgresPlanRepo(pool)
	for _, p := range []struct {
		id, name string
		price    int64
		days     int
		free     bool
	}{
		{cfg.Subscription.FreePlanID, "Free", 0, 0, true},
		{"premium_monthly", "Premium (1 month)", 99_000, 30, false},
	} {
		plan, err := model.NewPlan(p.id, p.name, p.price, p.days, p.free)
		if err != nil {
			log.Fatalf("plan %q: %v", p.id, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, plan); err != nil {
			log.Fatalf("failed to save plan %q: %v", p.id, err)
		}
	}

	log.Println("[3/3] Minting tokens...")
	tokens := security.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.JWTIssuer)
	userTok, err := tokens.Mint(*userID, security.RoleUser, *tokenTTL)
	if err != nil {
		log.Fatalf("mint user token: %v", err)
	}
	adminTok, err := tokens.Mint("e2e-admin", security.RoleAdmin, *tokenTTL)
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}
	fmt.Printf("USER_TOKEN=%s\nADMIN_TOKEN=%s\n", userTok, adminTok)

	log.Println("--- E2E Environment Setup Complete ---")
}
