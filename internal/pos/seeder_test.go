package pos

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeCatalogClient struct {
	products int
	prices   int
	priceErr error
}

func (f *fakeCatalogClient) CreateProduct(ctx context.Context, entry CatalogEntry) (*StripeProduct, error) {
	f.products++
	return &StripeProduct{ID: fmt.Sprintf("prod_%d", f.products), Name: entry.Name}, nil
}

func (f *fakeCatalogClient) CreatePrice(ctx context.Context, productID string, price CatalogPrice) (*StripePrice, error) {
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	f.prices++
	return &StripePrice{ID: fmt.Sprintf("price_%d", f.prices), UnitAmount: price.Amount}, nil
}

type fakeServiceStore struct {
	deactivated bool
	inserted    []Service
}

func (f *fakeServiceStore) DeactivateAll(ctx context.Context) error {
	f.deactivated = true
	return nil
}

func (f *fakeServiceStore) Insert(ctx context.Context, s Service) error {
	f.inserted = append(f.inserted, s)
	return nil
}

func totalCatalogPrices() int {
	n := 0
	for _, e := range Catalog {
		n += len(e.Prices)
	}
	return n
}

func TestSeederRun(t *testing.T) {
	client := &fakeCatalogClient{}
	store := &fakeServiceStore{}

	summary, err := NewSeeder(client, store, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.Products != len(Catalog) {
		t.Errorf("expected %d products, got %d", len(Catalog), summary.Products)
	}
	wantPrices := totalCatalogPrices()
	if summary.Prices != wantPrices {
		t.Errorf("expected %d prices, got %d", wantPrices, summary.Prices)
	}
	if summary.Services != wantPrices {
		t.Errorf("expected one service row per price, got %d", summary.Services)
	}
	if !store.deactivated {
		t.Error("expected existing services deactivated before insert")
	}
	if len(store.inserted) != wantPrices {
		t.Fatalf("expected %d rows inserted, got %d", wantPrices, len(store.inserted))
	}
}

func TestSeederRowNaming(t *testing.T) {
	client := &fakeCatalogClient{}
	store := &fakeServiceStore{}

	if _, err := NewSeeder(client, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var combo *Service
	for i := range store.inserted {
		if store.inserted[i].Name == "HBOT + Red Light Membership — 8 sessions/mo" {
			combo = &store.inserted[i]
			break
		}
	}
	if combo == nil {
		t.Fatal("expected nicknamed membership row")
	}
	if combo.Price != 59900 {
		t.Errorf("unexpected price: %d", combo.Price)
	}
	if !combo.Recurring || combo.Interval != "month" {
		t.Errorf("expected monthly recurring row, got recurring=%v interval=%q", combo.Recurring, combo.Interval)
	}
	if !combo.Active {
		t.Error("expected seeded row active")
	}
}

func TestSeederSortOrderGroupsByCategory(t *testing.T) {
	client := &fakeCatalogClient{}
	store := &fakeServiceStore{}

	if _, err := NewSeeder(client, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	orders := map[string]int{}
	for _, s := range store.inserted {
		orders[s.Category+"/"+s.Name] = s.SortOrder
	}
	program := orders["programs/Six-Week Cellular Energy Reset"]
	hbot := orders["hbot/Hyperbaric Oxygen Session"]
	assessment := orders["assessment/Range Assessment"]
	if !(program < hbot && hbot < assessment) {
		t.Errorf("expected programs < hbot < assessment, got %d %d %d", program, hbot, assessment)
	}
}

func TestSeederConsultationOnlyGetsNoRow(t *testing.T) {
	client := &fakeCatalogClient{}
	store := &fakeServiceStore{}

	if _, err := NewSeeder(client, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range store.inserted {
		if strings.HasPrefix(s.Name, "Exosome IV Therapy") {
			t.Fatalf("consultation-only product should not get a service row: %+v", s)
		}
	}
}

func TestSeederStripeFailureLeavesStoreUntouched(t *testing.T) {
	client := &fakeCatalogClient{priceErr: errors.New("rate limited")}
	store := &fakeServiceStore{}

	_, err := NewSeeder(client, store, nil).Run(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if store.deactivated || len(store.inserted) != 0 {
		t.Error("store should not be touched when Stripe calls fail")
	}
}

func TestSeederSkipDB(t *testing.T) {
	client := &fakeCatalogClient{}
	store := &fakeServiceStore{}

	seeder := NewSeeder(client, store, nil)
	seeder.SkipDB = true

	summary, err := seeder.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Services == 0 {
		t.Error("summary should still count would-be rows")
	}
	if store.deactivated || len(store.inserted) != 0 {
		t.Error("SkipDB run should not write rows")
	}
}
