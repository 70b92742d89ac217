// Seed tool: loads a starter set of pricing rules, fx adjustment rules
// and market rates for local development and demos.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"pricefx/internal/domain"
	"pricefx/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	now := time.Now().UTC()

	pricingRules := postgres.NewPricingRuleRepository(db)
	fxRules := postgres.NewFxRuleRepository(db)
	marketRates := postgres.NewMarketRateRepository(db)

	for _, rule := range samplePricingRules(now) {
		if err := pricingRules.Create(ctx, rule); err != nil {
			log.Fatalf("Failed to seed pricing rule %s: %v", rule.ID, err)
		}
		log.Printf("Seeded pricing rule %s (%s %s->%s, priority %d)",
			rule.ID, rule.TxType, rule.FromCurrency, rule.ToCurrency, rule.Priority)
	}

	for _, rule := range sampleFxRules(now) {
		if err := fxRules.Create(ctx, rule); err != nil {
			log.Fatalf("Failed to seed fx rule %s: %v", rule.ID, err)
		}
		log.Printf("Seeded fx rule %s (%s %s->%s)", rule.ID, rule.Mode, rule.FromCurrency, rule.ToCurrency)
	}

	for _, mr := range sampleMarketRates() {
		if err := marketRates.Upsert(ctx, mr.from, mr.to, mr.rate); err != nil {
			log.Fatalf("Failed to seed market rate %s->%s: %v", mr.from, mr.to, err)
		}
		log.Printf("Seeded market rate %s->%s = %s", mr.from, mr.to, mr.rate)
	}

	log.Println("Seed completed")
}

func samplePricingRules(now time.Time) []*domain.PricingRule {
	return []*domain.PricingRule{
		{
			// Default EUR->XOF transfer corridor: 2% fee, market rate.
			ID:            uuid.New(),
			TxType:        domain.TxTransfer,
			FromCurrency:  "EUR",
			ToCurrency:    "XOF",
			Countries:     pq.StringArray{},
			Operators:     pq.StringArray{},
			MinAmount:     decimal.NewFromInt(1),
			FeeMode:       domain.FeeModePercent,
			FeePercent:    decimal.NewFromInt(2),
			MinFee:        decPtr("1"),
			FxMode:        domain.FxModeMarket,
			MarkupPercent: decimal.Zero,
			Priority:      10,
			Active:        true,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			// Promo for Senegal via the wave operator: flat 1 EUR below 500.
			ID:            uuid.New(),
			TxType:        domain.TxTransfer,
			FromCurrency:  "EUR",
			ToCurrency:    "XOF",
			Countries:     pq.StringArray{"SN"},
			Operators:     pq.StringArray{"wave"},
			MinAmount:     decimal.NewFromInt(1),
			MaxAmount:     decPtr("500"),
			FeeMode:       domain.FeeModeFixed,
			FeeFixed:      decimal.NewFromInt(1),
			FxMode:        domain.FxModeMarket,
			MarkupPercent: decimal.Zero,
			Priority:      50,
			Active:        true,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
		{
			// EUR->GHS deposits: mixed fee with a 1.5% markup on the rate.
			ID:            uuid.New(),
			TxType:        domain.TxDeposit,
			FromCurrency:  "EUR",
			ToCurrency:    "GHS",
			Countries:     pq.StringArray{},
			Operators:     pq.StringArray{},
			MinAmount:     decimal.NewFromInt(5),
			FeeMode:       domain.FeeModeMixed,
			FeePercent:    decimal.NewFromFloat(1.5),
			FeeFixed:      decimal.NewFromFloat(0.5),
			MaxFee:        decPtr("25"),
			FxMode:        domain.FxModeMarkup,
			MarkupPercent: decimal.NewFromFloat(1.5),
			Priority:      10,
			Active:        true,
			Version:       1,
			CreatedAt:     now,
			UpdatedAt:     now,
		},
	}
}

func sampleFxRules(now time.Time) []*domain.FxRule {
	return []*domain.FxRule{
		{
			// Corridor-wide 2% uplift on EUR->XOF transfers.
			ID:           uuid.New(),
			TxType:       domain.TxTransfer,
			FromCurrency: "EUR",
			ToCurrency:   "XOF",
			Mode:         domain.FxAdjustDeltaPercent,
			Percent:      decimal.NewFromInt(2),
			Priority:     10,
			Active:       true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

type marketRate struct {
	from, to domain.Currency
	rate     decimal.Decimal
}

func sampleMarketRates() []marketRate {
	return []marketRate{
		{from: "EUR", to: "XOF", rate: decimal.New(655957, -3)},
		{from: "EUR", to: "XAF", rate: decimal.New(655957, -3)},
		{from: "EUR", to: "GHS", rate: decimal.New(1612, -2)},
		{from: "EUR", to: "NGN", rate: decimal.New(171050, -2)},
		{from: "USD", to: "XOF", rate: decimal.New(60410, -2)},
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
