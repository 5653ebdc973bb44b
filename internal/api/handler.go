package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/service"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// CheckoutService initiates orders and serves admin order reads
type CheckoutService interface {
	Checkout(ctx context.Context, req *service.CheckoutRequest) (*service.CheckoutResponse, error)
	Order(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
}

// WebhookService reconciles provider payment notifications
type WebhookService interface {
	Process(ctx context.Context, n service.Notification) (service.Outcome, error)
}

// CatalogService manages the product catalog
type CatalogService interface {
	ActiveProducts(ctx context.Context) ([]models.Product, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
	Product(ctx context.Context, id string) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// Handler contains HTTP handlers
type Handler struct {
	checkout CheckoutService
	webhooks WebhookService
	catalog  CatalogService
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(checkout CheckoutService, webhooks WebhookService, catalog CatalogService) *Handler {
	return &Handler{
		checkout: checkout,
		webhooks: webhooks,
		catalog:  catalog,
		logger:   util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/checkout", h.createCheckout)
		v1.POST("/webhooks/mercadopago", h.paymentWebhook)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)

		admin := v1.Group("/admin")
		{
			admin.GET("/products", h.listAllProducts)
			admin.POST("/products", h.createProduct)
			admin.PUT("/products/:id", h.updateProduct)
			admin.DELETE("/products/:id", h.deleteProduct)
			admin.GET("/orders", h.listOrders)
			admin.GET("/orders/:id", h.getOrder)
		}
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// createCheckout writes a pending order and returns the payment redirect link
func (h *Handler) createCheckout(c *gin.Context) {
	var req service.CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	resp, err := h.checkout.Checkout(c.Request.Context(), &req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, service.ErrSiteURLNotConfigured):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Site base URL not configured"})
	case errors.Is(err, service.ErrEmptyOrder), errors.Is(err, service.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		// Surfaced as a generic payment-initialization error; the pending
		// order survives so the customer can retry.
		h.logger.Error("Checkout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not initialize payment"})
	}
}

// paymentWebhook reconciles an asynchronous payment notification. The
// provider retries aggressively on non-2xx responses, so every branch past
// the trust boundary acknowledges with 200 even on internal errors.
func (h *Handler) paymentWebhook(c *gin.Context) {
	n := service.Notification{
		Type:      c.Query("type"),
		PaymentID: c.Query("data.id"),
	}

	outcome, err := h.webhooks.Process(c.Request.Context(), n)
	if err != nil {
		h.logger.Error("Webhook reconciliation error",
			zap.String("payment_id", n.PaymentID),
			zap.String("outcome", string(outcome)),
			zap.Error(err))
	}

	switch outcome {
	case service.OutcomeIgnored:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case service.OutcomeMissingReference:
		c.JSON(http.StatusBadRequest, gin.H{"error": "No external reference found"})
	case service.OutcomeOrderNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case service.OutcomeProviderError, service.OutcomeInternalError:
		c.JSON(http.StatusOK, gin.H{"error": "Internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"received": true})
	}
}

// listProducts returns the active storefront catalog
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.catalog.ActiveProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load catalog"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct returns a single product
func (h *Handler) getProduct(c *gin.Context) {
	product, err := h.catalog.Product(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

// listAllProducts returns every product for the admin dashboard
func (h *Handler) listAllProducts(c *gin.Context) {
	products, err := h.catalog.AllProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// createProduct adds a product to the catalog
func (h *Handler) createProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if product.Name == "" || product.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product needs a name and a non-negative price"})
		return
	}

	if err := h.catalog.CreateProduct(c.Request.Context(), &product); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}
	c.JSON(http.StatusCreated, product)
}

// updateProduct edits a product
func (h *Handler) updateProduct(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	product.ID = c.Param("id")

	err := h.catalog.UpdateProduct(c.Request.Context(), &product)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, product)
	case errors.Is(err, store.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
	}
}

// deleteProduct removes a product
func (h *Handler) deleteProduct(c *gin.Context) {
	err := h.catalog.DeleteProduct(c.Request.Context(), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	case errors.Is(err, store.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
	}
}

// listOrders returns recent orders for the admin dashboard
func (h *Handler) listOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	orders, err := h.checkout.ListOrders(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// getOrder returns an order with its item snapshots
func (h *Handler) getOrder(c *gin.Context) {
	order, items, err := h.checkout.Order(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
