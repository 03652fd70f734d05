package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rangemedical/clinic-ops/pkg/logging"
)

var stripeTracer = otel.Tracer("clinicops.internal.pos.stripe")

// StripeCatalogClient creates products and prices through Stripe's v1
// catalog endpoints. Dry-run mode skips the API and returns fake IDs.
type StripeCatalogClient struct {
	secretKey  string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	logger     *logging.Logger
	dryRun     bool
}

// NewStripeCatalogClient creates a catalog client for the given secret key.
func NewStripeCatalogClient(secretKey string, logger *logging.Logger) *StripeCatalogClient {
	if logger == nil {
		logger = logging.Default()
	}
	return &StripeCatalogClient{
		secretKey:  secretKey,
		baseURL:    "https://api.stripe.com",
		apiVersion: "2024-12-18.acacia",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// WithBaseURL overrides the Stripe API base URL (for testing).
func (c *StripeCatalogClient) WithBaseURL(baseURL string) *StripeCatalogClient {
	if baseURL != "" {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
	return c
}

// WithDryRun enables dry-run mode (returns fake IDs without calling Stripe).
func (c *StripeCatalogClient) WithDryRun(enabled bool) *StripeCatalogClient {
	c.dryRun = enabled
	return c
}

// StripeProduct is the subset of Stripe's Product object we need.
type StripeProduct struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StripePrice is the subset of Stripe's Price object we need.
type StripePrice struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
}

// CreateProduct creates a Stripe product for a catalog entry.
func (c *StripeCatalogClient) CreateProduct(ctx context.Context, entry CatalogEntry) (*StripeProduct, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_product")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicops.product_name", entry.Name),
		attribute.String("clinicops.category", entry.Category),
	)

	if c.dryRun {
		fakeID := "prod_dryrun_" + uuid.New().String()[:8]
		c.logger.Info("stripe dry run: skipping product creation",
			"name", entry.Name, "category", entry.Category)
		return &StripeProduct{ID: fakeID, Name: entry.Name}, nil
	}

	form := url.Values{}
	form.Set("name", entry.Name)
	form.Set("description", entry.Description)
	form.Set("active", "true")
	form.Set("metadata[category]", entry.Category)

	var parsed StripeProduct
	if err := c.post(ctx, "/v1/products", form, &parsed); err != nil {
		return nil, err
	}
	if parsed.ID == "" {
		return nil, fmt.Errorf("pos: stripe response missing product id")
	}
	return &parsed, nil
}

// CreatePrice creates a Stripe price attached to a product.
func (c *StripeCatalogClient) CreatePrice(ctx context.Context, productID string, price CatalogPrice) (*StripePrice, error) {
	ctx, span := stripeTracer.Start(ctx, "stripe.create_price")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicops.product_id", productID),
		attribute.Int("clinicops.amount_cents", int(price.Amount)),
	)

	if c.dryRun {
		fakeID := "price_dryrun_" + uuid.New().String()[:8]
		c.logger.Info("stripe dry run: skipping price creation",
			"product_id", productID, "amount_cents", price.Amount)
		return &StripePrice{ID: fakeID, UnitAmount: price.Amount}, nil
	}

	form := url.Values{}
	form.Set("product", productID)
	form.Set("currency", "usd")
	form.Set("unit_amount", fmt.Sprintf("%d", price.Amount))
	form.Set("active", "true")
	if price.Nickname != "" {
		form.Set("nickname", price.Nickname)
	}
	if price.Commitment != "" {
		form.Set("metadata[commitment]", price.Commitment)
	}
	if price.Recurring {
		form.Set("recurring[interval]", "month")
		form.Set("recurring[interval_count]", "1")
	}

	var parsed StripePrice
	if err := c.post(ctx, "/v1/prices", form, &parsed); err != nil {
		return nil, err
	}
	if parsed.ID == "" {
		return nil, fmt.Errorf("pos: stripe response missing price id")
	}
	return &parsed, nil
}

func (c *StripeCatalogClient) post(ctx context.Context, path string, form url.Values, out any) error {
	apiURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("pos: stripe request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Stripe-Version", c.apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pos: stripe http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pos: stripe api status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("pos: stripe decode: %w", err)
	}
	return nil
}
