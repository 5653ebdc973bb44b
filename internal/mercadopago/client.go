package mercadopago

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/service"
	"bakery-service/internal/util"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

const webhookPath = "/api/v1/webhooks/mercadopago"

// Client adapts the Mercado Pago SDK to the service.PaymentProvider
// interface. One explicitly constructed instance is shared by the checkout
// and webhook services.
type Client struct {
	payments    payment.Client
	preferences preference.Client
	siteURL     string
	currency    string
}

// NewClient creates a Mercado Pago client
func NewClient(accessToken, siteURL, currency string) (*Client, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to configure mercado pago: %w", err)
	}

	return &Client{
		payments:    payment.NewClient(cfg),
		preferences: preference.NewClient(cfg),
		siteURL:     siteURL,
		currency:    currency,
	}, nil
}

// GetPayment fetches the authoritative payment record by the id delivered in
// a webhook notification.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*service.PaymentInfo, error) {
	id, err := strconv.Atoi(paymentID)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id %q: %w", paymentID, err)
	}

	start := time.Now()
	p, err := c.payments.Get(ctx, id)
	util.PaymentLookupLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("payment lookup failed: %w", err)
	}

	return &service.PaymentInfo{
		ID:                paymentID,
		Status:            p.Status,
		ExternalReference: p.ExternalReference,
		Amount:            p.TransactionAmount,
	}, nil
}

// CreatePreference mints a payable transaction for the order, embedding the
// order id as external_reference and pointing notifications at the webhook.
func (c *Client) CreatePreference(ctx context.Context, order *models.Order, items []models.OrderItem) (*service.CheckoutSession, error) {
	prefItems := make([]preference.ItemRequest, 0, len(items))
	for _, item := range items {
		prefItems = append(prefItems, preference.ItemRequest{
			ID:         item.ProductID,
			Title:      item.Name,
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
			CurrencyID: c.currency,
		})
	}

	req := preference.Request{
		Items: prefItems,
		BackURLs: &preference.BackURLsRequest{
			Success: c.siteURL + "/",
			Failure: c.siteURL + "/checkout",
			Pending: c.siteURL + "/",
		},
		AutoReturn:        "approved",
		ExternalReference: order.ID,
		NotificationURL:   c.siteURL + webhookPath,
	}

	start := time.Now()
	resp, err := c.preferences.Create(ctx, req)
	util.PreferenceCreateLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("preference creation failed: %w", err)
	}

	return &service.CheckoutSession{
		PreferenceID: resp.ID,
		InitPoint:    resp.InitPoint,
	}, nil
}
