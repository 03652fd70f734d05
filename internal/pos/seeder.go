package pos

import (
	"context"
	"fmt"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

// CatalogClient creates products and prices in the payment provider.
type CatalogClient interface {
	CreateProduct(ctx context.Context, entry CatalogEntry) (*StripeProduct, error)
	CreatePrice(ctx context.Context, productID string, price CatalogPrice) (*StripePrice, error)
}

// ServiceStore persists the POS service rows built during seeding.
type ServiceStore interface {
	DeactivateAll(ctx context.Context) error
	Insert(ctx context.Context, s Service) error
}

// Seeder pushes the catalog into Stripe and rebuilds the pos_services
// table from the result. With SkipDB set it only creates the Stripe
// objects and reports what it would have written.
type Seeder struct {
	client CatalogClient
	store  ServiceStore
	logger *logging.Logger

	SkipDB bool
}

func NewSeeder(client CatalogClient, store ServiceStore, logger *logging.Logger) *Seeder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Seeder{client: client, store: store, logger: logger}
}

// Summary reports what a seeding run produced.
type Summary struct {
	Products int
	Prices   int
	Services int
}

// Run seeds the full catalog. Stripe failures abort the run; the
// pos_services table is only touched after every Stripe call succeeds.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	var summary Summary
	var rows []Service
	sortCounters := map[string]int{}

	for _, entry := range Catalog {
		s.logger.Info("seeding product", "name", entry.Name, "category", entry.Category)

		product, err := s.client.CreateProduct(ctx, entry)
		if err != nil {
			return nil, fmt.Errorf("pos: create product %q: %w", entry.Name, err)
		}
		summary.Products++

		for _, price := range entry.Prices {
			created, err := s.client.CreatePrice(ctx, product.ID, price)
			if err != nil {
				return nil, fmt.Errorf("pos: create price for %q: %w", entry.Name, err)
			}
			summary.Prices++
			s.logger.Info("created price", "product_id", product.ID, "price_id", created.ID,
				"amount_cents", price.Amount, "recurring", price.Recurring)

			name := entry.Name
			if price.Nickname != "" {
				name = entry.Name + " — " + price.Nickname
			}
			interval := ""
			if price.Recurring {
				interval = "month"
			}
			sortCounters[entry.Category]++
			rows = append(rows, Service{
				Name:      name,
				Category:  entry.Category,
				Price:     price.Amount,
				Recurring: price.Recurring,
				Interval:  interval,
				Active:    true,
				SortOrder: categoryIndex(entry.Category)*1000 + sortCounters[entry.Category],
			})
		}
	}

	summary.Services = len(rows)

	if s.skipWrites() {
		s.logger.Info("skipping pos_services writes", "rows", len(rows))
		return &summary, nil
	}

	if err := s.store.DeactivateAll(ctx); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := s.store.Insert(ctx, row); err != nil {
			return nil, err
		}
	}
	s.logger.Info("seeded pos_services", "rows", len(rows))
	return &summary, nil
}

func (s *Seeder) skipWrites() bool {
	return s.SkipDB || s.store == nil
}
