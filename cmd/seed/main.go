package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"ielts-payme-billing/internal/config"
	"ielts-payme-billing/internal/domain/model"
	"ielts-payme-billing/internal/domain/ports/repository"
	pg "ielts-payme-billing/internal/infra/db/postgres"
)

// catalog is the default plan set for a fresh installation.
var catalog = []struct {
	ID    string
	Name  string
	Days  int
	Price int64 // UZS
	Free  bool
}{
	{"free", "Free", 0, 0, true},
	{"premium_monthly", "Premium (1 month)", 30, 99_000, false},
	{"premium_quarterly", "Premium (3 months)", 90, 249_000, false},
	{"premium_yearly", "Premium (12 months)", 365, 799_000, false},
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPool(ctx, config.DatabaseConfig{URL: cfg.Database.URL, MaxConns: 4})
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planRepo := pg.NewPostgresPlanRepo(pool)

	existing, err := planRepo.ListAll(ctx, repository.NoTX)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.ID] = true
	}

	for _, s := range catalog {
		if have[s.ID] {
			fmt.Printf("  = %s already present\n", s.ID)
			continue
		}
		p, err := model.NewPlan(s.ID, s.Name, s.Price, s.Days, s.Free)
		if err != nil {
			log.Fatalf("plan %q: %v", s.ID, err)
		}
		if err := planRepo.Save(ctx, repository.NoTX, p); err != nil {
			log.Fatalf("save plan %q: %v", s.ID, err)
		}
		fmt.Printf("seeded: %s (days=%d, price=%d UZS)\n", p.ID, p.DurationDays, p.PriceUZS)
	}
	fmt.Println("Seeding complete.")
}
