package pos

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStripeCatalogClient_CreateProduct(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/products" {
			t.Errorf("expected path /v1/products, got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("expected auth header, got %q", got)
		}
		if r.Header.Get("Stripe-Version") == "" {
			t.Errorf("expected Stripe-Version header")
		}
		if r.Header.Get("Content-Type") != "application/x-www-form-urlencoded" {
			t.Errorf("expected form-urlencoded content type, got %q", r.Header.Get("Content-Type"))
		}

		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"id":   "prod_abc123",
			"name": "Hyperbaric Oxygen Session",
		})
	}))
	defer srv.Close()

	client := NewStripeCatalogClient("sk_test_123", nil).WithBaseURL(srv.URL)

	product, err := client.CreateProduct(context.Background(), CatalogEntry{
		Name:        "Hyperbaric Oxygen Session",
		Description: "Single mild hyperbaric oxygen therapy session.",
		Category:    "hbot",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if product.ID != "prod_abc123" {
		t.Fatalf("unexpected product ID: %s", product.ID)
	}

	if got := gotForm["name"]; len(got) != 1 || got[0] != "Hyperbaric Oxygen Session" {
		t.Errorf("unexpected name field: %v", got)
	}
	if got := gotForm["metadata[category]"]; len(got) != 1 || got[0] != "hbot" {
		t.Errorf("unexpected category metadata: %v", got)
	}
	if got := gotForm["active"]; len(got) != 1 || got[0] != "true" {
		t.Errorf("unexpected active field: %v", got)
	}
}

func TestStripeCatalogClient_CreatePriceRecurring(t *testing.T) {
	var gotForm map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/prices" {
			t.Errorf("expected path /v1/prices, got %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		gotForm = r.PostForm

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "price_xyz789",
			"unit_amount": 59900,
		})
	}))
	defer srv.Close()

	client := NewStripeCatalogClient("sk_test_123", nil).WithBaseURL(srv.URL)

	price, err := client.CreatePrice(context.Background(), "prod_abc123", CatalogPrice{
		Amount:     59900,
		Nickname:   "8 sessions/mo",
		Recurring:  true,
		Commitment: "3mo",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price.ID != "price_xyz789" {
		t.Fatalf("unexpected price ID: %s", price.ID)
	}

	if got := gotForm["product"]; len(got) != 1 || got[0] != "prod_abc123" {
		t.Errorf("unexpected product field: %v", got)
	}
	if got := gotForm["unit_amount"]; len(got) != 1 || got[0] != "59900" {
		t.Errorf("unexpected unit_amount: %v", got)
	}
	if got := gotForm["nickname"]; len(got) != 1 || got[0] != "8 sessions/mo" {
		t.Errorf("unexpected nickname: %v", got)
	}
	if got := gotForm["recurring[interval]"]; len(got) != 1 || got[0] != "month" {
		t.Errorf("unexpected recurring interval: %v", got)
	}
	if got := gotForm["metadata[commitment]"]; len(got) != 1 || got[0] != "3mo" {
		t.Errorf("unexpected commitment metadata: %v", got)
	}
}

func TestStripeCatalogClient_CreatePriceOneTimeOmitsRecurring(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if _, ok := r.PostForm["recurring[interval]"]; ok {
			t.Errorf("one-time price should not set recurring fields")
		}
		if _, ok := r.PostForm["nickname"]; ok {
			t.Errorf("empty nickname should be omitted")
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"id": "price_flat", "unit_amount": 12500})
	}))
	defer srv.Close()

	client := NewStripeCatalogClient("sk_test_123", nil).WithBaseURL(srv.URL)

	if _, err := client.CreatePrice(context.Background(), "prod_1", CatalogPrice{Amount: 12500}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStripeCatalogClient_DryRun(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("dry run should not hit the API")
	}))
	defer srv.Close()

	client := NewStripeCatalogClient("sk_test_123", nil).WithBaseURL(srv.URL).WithDryRun(true)

	product, err := client.CreateProduct(context.Background(), Catalog[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(product.ID, "prod_dryrun_") {
		t.Fatalf("expected dry-run product ID, got %s", product.ID)
	}

	price, err := client.CreatePrice(context.Background(), product.ID, CatalogPrice{Amount: 1000})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(price.ID, "price_dryrun_") {
		t.Fatalf("expected dry-run price ID, got %s", price.ID)
	}
	if price.UnitAmount != 1000 {
		t.Fatalf("expected dry-run amount echoed back, got %d", price.UnitAmount)
	}
}

func TestStripeCatalogClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"message":"expired key"}}`))
	}))
	defer srv.Close()

	client := NewStripeCatalogClient("sk_expired", nil).WithBaseURL(srv.URL)

	_, err := client.CreateProduct(context.Background(), Catalog[0])
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "status 402") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "expired key") {
		t.Fatalf("expected body in error, got %v", err)
	}
}
