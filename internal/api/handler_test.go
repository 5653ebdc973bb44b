package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bakery-service/internal/models"
	"bakery-service/internal/service"
	"bakery-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheckout struct {
	resp        *service.CheckoutResponse
	checkoutErr error
	order       *models.Order
	items       []models.OrderItem
	orderErr    error
	orders      []models.Order
	listErr     error
}

func (s *stubCheckout) Checkout(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutResponse, error) {
	if s.checkoutErr != nil {
		return nil, s.checkoutErr
	}
	return s.resp, nil
}

func (s *stubCheckout) Order(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, error) {
	if s.orderErr != nil {
		return nil, nil, s.orderErr
	}
	return s.order, s.items, nil
}

func (s *stubCheckout) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.orders, nil
}

type stubWebhooks struct {
	outcome  service.Outcome
	err      error
	received []service.Notification
}

func (s *stubWebhooks) Process(ctx context.Context, n service.Notification) (service.Outcome, error) {
	s.received = append(s.received, n)
	return s.outcome, s.err
}

type stubCatalog struct {
	products  []models.Product
	activeErr error
	product   *models.Product
	createErr error
	updateErr error
	deleteErr error
}

func (s *stubCatalog) ActiveProducts(ctx context.Context) ([]models.Product, error) {
	if s.activeErr != nil {
		return nil, s.activeErr
	}
	return s.products, nil
}

func (s *stubCatalog) AllProducts(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

func (s *stubCatalog) Product(ctx context.Context, id string) (*models.Product, error) {
	if s.product == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrProductNotFound, id)
	}
	return s.product, nil
}

func (s *stubCatalog) CreateProduct(ctx context.Context, product *models.Product) error {
	return s.createErr
}

func (s *stubCatalog) UpdateProduct(ctx context.Context, product *models.Product) error {
	return s.updateErr
}

func (s *stubCatalog) DeleteProduct(ctx context.Context, id string) error {
	return s.deleteErr
}

func setupRouter(checkout CheckoutService, webhooks WebhookService, catalog CatalogService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(checkout, webhooks, catalog).SetupRoutes(router)
	return router
}

func performRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCheckoutSuccess(t *testing.T) {
	checkout := &stubCheckout{resp: &service.CheckoutResponse{ID: "order-1", InitPoint: "https://mp.test/init"}}
	router := setupRouter(checkout, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodPost, "/api/v1/checkout", gin.H{
		"items":        []gin.H{{"id": "p1", "name": "Budín", "price": 1500, "quantity": 2}},
		"customerInfo": gin.H{"name": "María"},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp service.CheckoutResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "order-1", resp.ID)
	assert.Equal(t, "https://mp.test/init", resp.InitPoint)
}

func TestCreateCheckoutMalformedBody(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCheckoutErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"site url missing", service.ErrSiteURLNotConfigured, http.StatusInternalServerError},
		{"empty order", service.ErrEmptyOrder, http.StatusBadRequest},
		{"invalid item", fmt.Errorf("%w: %q", service.ErrInvalidItem, "Budín"), http.StatusBadRequest},
		{"provider failure", fmt.Errorf("%w: timeout", service.ErrPaymentInit), http.StatusInternalServerError},
		{"db failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupRouter(&stubCheckout{checkoutErr: tt.err}, &stubWebhooks{}, &stubCatalog{})

			w := performRequest(router, http.MethodPost, "/api/v1/checkout", gin.H{
				"items":        []gin.H{{"id": "p1", "name": "Budín", "price": 1500, "quantity": 1}},
				"customerInfo": gin.H{"name": "María"},
			})

			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestPaymentWebhookOutcomeMapping(t *testing.T) {
	tests := []struct {
		outcome  service.Outcome
		err      error
		wantCode int
		wantBody string
	}{
		{service.OutcomeIgnored, nil, http.StatusOK, `"ignored"`},
		{service.OutcomeMissingReference, nil, http.StatusBadRequest, `"No external reference found"`},
		{service.OutcomeOrderNotFound, nil, http.StatusNotFound, `"Order not found"`},
		{service.OutcomeProviderError, errors.New("lookup failed"), http.StatusOK, `"Internal error"`},
		{service.OutcomeInternalError, errors.New("tx aborted"), http.StatusOK, `"Internal error"`},
		{service.OutcomePaid, nil, http.StatusOK, `"received":true`},
		{service.OutcomeDuplicate, nil, http.StatusOK, `"received":true`},
		{service.OutcomeStatusUpdated, nil, http.StatusOK, `"received":true`},
		{service.OutcomeNoChange, nil, http.StatusOK, `"received":true`},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			webhooks := &stubWebhooks{outcome: tt.outcome, err: tt.err}
			router := setupRouter(&stubCheckout{}, webhooks, &stubCatalog{})

			w := performRequest(router, http.MethodPost, "/api/v1/webhooks/mercadopago?type=payment&data.id=123", nil)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestPaymentWebhookExtractsQueryParams(t *testing.T) {
	webhooks := &stubWebhooks{outcome: service.OutcomePaid}
	router := setupRouter(&stubCheckout{}, webhooks, &stubCatalog{})

	performRequest(router, http.MethodPost, "/api/v1/webhooks/mercadopago?type=payment&data.id=9876", nil)

	require.Len(t, webhooks.received, 1)
	assert.Equal(t, "payment", webhooks.received[0].Type)
	assert.Equal(t, "9876", webhooks.received[0].PaymentID)
}

func TestListProducts(t *testing.T) {
	catalog := &stubCatalog{products: []models.Product{{ID: "p1", Name: "Budín de Limón", Active: true}}}
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, catalog)

	w := performRequest(router, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Budín de Limón")
}

func TestListProductsError(t *testing.T) {
	catalog := &stubCatalog{activeErr: errors.New("db down")}
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, catalog)

	w := performRequest(router, http.MethodGet, "/api/v1/products", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestGetProductNotFound(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodGet, "/api/v1/products/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProductValidation(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodPost, "/api/v1/admin/products", gin.H{
		"name":  "",
		"price": 1500,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodPost, "/api/v1/admin/products", gin.H{
		"name":  "Budín",
		"price": -5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateProductSuccess(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodPost, "/api/v1/admin/products", gin.H{
		"name":  "Budín de Naranja",
		"price": 1800,
		"stock": 5,
	})
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpdateProductNotFound(t *testing.T) {
	catalog := &stubCatalog{updateErr: fmt.Errorf("%w: missing", store.ErrProductNotFound)}
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, catalog)

	w := performRequest(router, http.MethodPut, "/api/v1/admin/products/missing", gin.H{
		"name":  "Budín",
		"price": 1500,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteProduct(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodDelete, "/api/v1/admin/products/p1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"deleted":true`)
}

func TestGetOrder(t *testing.T) {
	checkout := &stubCheckout{
		order: &models.Order{ID: "order-1", Status: models.OrderStatusPaid, Total: 3000},
		items: []models.OrderItem{{OrderID: "order-1", Name: "Budín de Limón", UnitPrice: 1500, Quantity: 2}},
	}
	router := setupRouter(checkout, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodGet, "/api/v1/admin/orders/order-1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order-1"`)
	assert.Contains(t, w.Body.String(), "Budín de Limón")
}

func TestGetOrderNotFound(t *testing.T) {
	checkout := &stubCheckout{orderErr: fmt.Errorf("%w: missing", store.ErrOrderNotFound)}
	router := setupRouter(checkout, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodGet, "/api/v1/admin/orders/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrders(t *testing.T) {
	checkout := &stubCheckout{orders: []models.Order{{ID: "order-1", Status: models.OrderStatusPending}}}
	router := setupRouter(checkout, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodGet, "/api/v1/admin/orders", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"order-1"`)
}

func TestHealthEndpoints(t *testing.T) {
	router := setupRouter(&stubCheckout{}, &stubWebhooks{}, &stubCatalog{})

	w := performRequest(router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
