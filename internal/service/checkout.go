package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrSiteURLNotConfigured = errors.New("site base URL not configured")
	ErrEmptyOrder           = errors.New("order must contain at least one item")
	ErrInvalidItem          = errors.New("item has invalid price or quantity")
	ErrPaymentInit          = errors.New("could not initialize payment")
)

// CheckoutService creates pending orders and mints the provider redirect
// link. It also serves order reads for the admin dashboard.
type CheckoutService struct {
	store     OrderStore
	provider  PaymentProvider
	publisher EventPublisher
	siteURL   string
	logger    *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(store OrderStore, provider PaymentProvider, publisher EventPublisher, siteURL string) *CheckoutService {
	return &CheckoutService{
		store:     store,
		provider:  provider,
		publisher: publisher,
		siteURL:   siteURL,
		logger:    util.GetLogger(),
	}
}

// CheckoutRequest is the storefront checkout payload
type CheckoutRequest struct {
	Items        []CheckoutItem `json:"items" binding:"required"`
	CustomerInfo CustomerInfo   `json:"customerInfo" binding:"required"`
	UserID       string         `json:"userId"`
}

// CheckoutItem carries the client-side cart line; price and quantity are
// validated and snapshotted into the order.
type CheckoutItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// CustomerInfo is the contact snapshot captured at order time
type CustomerInfo struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// CheckoutResponse carries the order id and the provider redirect URL
type CheckoutResponse struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}

// Checkout writes a pending order, then asks the provider for a payable
// transaction carrying the order id as correlation token. The order write
// happens first: a provider failure leaves a pending order with no
// transaction, which the customer can simply retry.
func (s *CheckoutService) Checkout(ctx context.Context, req *CheckoutRequest) (*CheckoutResponse, error) {
	ctx, span := util.StartSpan(ctx, "CheckoutService.Checkout")
	defer span.End()

	if s.siteURL == "" {
		util.CheckoutFailedTotal.WithLabelValues("config").Inc()
		return nil, ErrSiteURLNotConfigured
	}

	if len(req.Items) == 0 {
		util.CheckoutFailedTotal.WithLabelValues("empty_order").Inc()
		return nil, ErrEmptyOrder
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	var total float64
	for _, item := range req.Items {
		if item.Price < 0 || item.Quantity <= 0 {
			util.CheckoutFailedTotal.WithLabelValues("invalid_item").Inc()
			return nil, fmt.Errorf("%w: %q", ErrInvalidItem, item.Name)
		}
		items = append(items, models.OrderItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.Price,
			Quantity:  item.Quantity,
		})
		total += item.Price * float64(item.Quantity)
	}

	userID := req.UserID
	if userID == "" {
		userID = "guest"
	}

	order := &models.Order{
		ID:            uuid.New().String(),
		UserID:        userID,
		CustomerName:  req.CustomerInfo.Name,
		CustomerPhone: req.CustomerInfo.Phone,
		CustomerEmail: req.CustomerInfo.Email,
		Total:         total,
		Status:        models.OrderStatusPending,
	}

	if err := s.store.CreateOrder(ctx, order, items); err != nil {
		util.CheckoutFailedTotal.WithLabelValues("db_error").Inc()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	util.OrdersCreatedTotal.Inc()
	s.logger.Info("Order created",
		zap.String("order_id", order.ID),
		zap.Float64("total", total))

	event := &models.OrderCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderCreated,
			Timestamp: time.Now(),
		},
		OrderID: order.ID,
		UserID:  order.UserID,
		Total:   order.Total,
		Items:   toItemData(items),
	}
	if err := s.publisher.PublishOrderCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCreated event", zap.Error(err))
	}

	session, err := s.provider.CreatePreference(ctx, order, items)
	if err != nil {
		util.CheckoutFailedTotal.WithLabelValues("provider").Inc()
		s.logger.Error("Payment preference creation failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentInit, err)
	}

	return &CheckoutResponse{
		ID:        order.ID,
		InitPoint: session.InitPoint,
	}, nil
}

// Order retrieves an order with its item snapshots
func (s *CheckoutService) Order(ctx context.Context, orderID string) (*models.Order, []models.OrderItem, error) {
	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	items, err := s.store.GetOrderItems(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

// ListOrders retrieves recent orders for the admin dashboard
func (s *CheckoutService) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	return s.store.ListOrders(ctx, limit)
}

func toItemData(items []models.OrderItem) []models.OrderItemData {
	data := make([]models.OrderItemData, 0, len(items))
	for _, item := range items {
		data = append(data, models.OrderItemData{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
		})
	}
	return data
}
