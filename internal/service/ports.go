package service

import (
	"context"

	"bakery-service/internal/models"
)

// PaymentInfo is the authoritative payment record looked up at the provider.
// Only this record, never the inbound notification, decides state transitions.
type PaymentInfo struct {
	ID                string
	Status            string
	ExternalReference string
	Amount            float64
}

// CheckoutSession is the provider-minted payable transaction
type CheckoutSession struct {
	PreferenceID string
	InitPoint    string
}

// PaymentProvider is the payment-provider client. It is injected into the
// checkout and webhook services so both can be tested against a fake.
type PaymentProvider interface {
	GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error)
	CreatePreference(ctx context.Context, order *models.Order, items []models.OrderItem) (*CheckoutSession, error)
}

// OrderStore persists orders and their item snapshots. ApplyPayment must be
// atomic: the status compare-and-swap, provider payment id, and all stock
// decrements commit together or not at all, returning false (with no writes)
// when the order is already paid.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error)
	ListOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderPayment(ctx context.Context, orderID, status, paymentID string) error
	ApplyPayment(ctx context.Context, orderID, paymentID string) (bool, error)
}

// ProductStore persists catalog products
type ProductStore interface {
	GetProductByID(ctx context.Context, id string) (*models.Product, error)
	GetProducts(ctx context.Context) ([]models.Product, error)
	GetActiveProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	UpdateProduct(ctx context.Context, product *models.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// EventPublisher publishes order lifecycle events. Publishing is best-effort
// everywhere: a publish failure never rolls back a committed transition.
type EventPublisher interface {
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error
	PublishOrderFailed(ctx context.Context, event *models.OrderFailedEvent) error
}

// Mailer dispatches a rendered receipt email
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}
