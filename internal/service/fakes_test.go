package service

import (
	"context"
	"fmt"
	"sync"

	"bakery-service/internal/models"
	"bakery-service/internal/store"
)

// fakeStore is an in-memory OrderStore/ProductStore with the same
// ApplyPayment semantics as the SQL implementation: all-or-nothing, false on
// an already-paid order.
type fakeStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	items  map[string][]models.OrderItem
	stock  map[string]int

	applyCalls  int
	applyErr    error
	createErr   error
	getOrderErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders: make(map[string]*models.Order),
		items:  make(map[string][]models.OrderItem),
		stock:  make(map[string]int),
	}
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	copied := *order
	f.orders[order.ID] = &copied
	f.items[order.ID] = append([]models.OrderItem(nil), items...)
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getOrderErr != nil {
		return nil, f.getOrderErr
	}
	order, ok := f.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrOrderNotFound, id)
	}
	copied := *order
	return &copied, nil
}

func (f *fakeStore) GetOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.OrderItem(nil), f.items[orderID]...), nil
}

func (f *fakeStore) ListOrders(ctx context.Context, limit int) ([]models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	orders := make([]models.Order, 0, len(f.orders))
	for _, order := range f.orders {
		orders = append(orders, *order)
	}
	return orders, nil
}

func (f *fakeStore) UpdateOrderPayment(ctx context.Context, orderID, status, paymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	order, ok := f.orders[orderID]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderID)
	}
	order.Status = status
	order.ProviderPaymentID = paymentID
	return nil
}

func (f *fakeStore) ApplyPayment(ctx context.Context, orderID, paymentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.applyCalls++
	if f.applyErr != nil {
		return false, f.applyErr
	}

	order, ok := f.orders[orderID]
	if !ok {
		return false, fmt.Errorf("%w: %s", store.ErrOrderNotFound, orderID)
	}
	if order.Status == models.OrderStatusPaid {
		return false, nil
	}

	order.Status = models.OrderStatusPaid
	order.ProviderPaymentID = paymentID
	for _, item := range f.items[orderID] {
		if item.ProductID == "" {
			continue
		}
		if _, ok := f.stock[item.ProductID]; !ok {
			continue
		}
		newStock := f.stock[item.ProductID] - item.Quantity
		if newStock < 0 {
			newStock = 0
		}
		f.stock[item.ProductID] = newStock
	}
	return true, nil
}

func (f *fakeStore) order(id string) *models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.orders[id]
}

// fakeProvider is an in-memory PaymentProvider
type fakeProvider struct {
	payments map[string]*PaymentInfo

	lookupErr     error
	lookupCalls   int
	createErr     error
	createCalls   int
	lastOrder     *models.Order
	lastItems     []models.OrderItem
	nextInitPoint string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		payments:      make(map[string]*PaymentInfo),
		nextInitPoint: "https://mercadopago.test/init/abc",
	}
}

func (f *fakeProvider) GetPayment(ctx context.Context, paymentID string) (*PaymentInfo, error) {
	f.lookupCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	info, ok := f.payments[paymentID]
	if !ok {
		return nil, fmt.Errorf("payment not found: %s", paymentID)
	}
	return info, nil
}

func (f *fakeProvider) CreatePreference(ctx context.Context, order *models.Order, items []models.OrderItem) (*CheckoutSession, error) {
	f.createCalls++
	f.lastOrder = order
	f.lastItems = items
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &CheckoutSession{
		PreferenceID: "pref-" + order.ID,
		InitPoint:    f.nextInitPoint,
	}, nil
}

// fakePublisher records published events
type fakePublisher struct {
	created []*models.OrderCreatedEvent
	paid    []*models.OrderPaidEvent
	failed  []*models.OrderFailedEvent

	publishErr error
}

func (f *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	f.created = append(f.created, event)
	return f.publishErr
}

func (f *fakePublisher) PublishOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	f.paid = append(f.paid, event)
	return f.publishErr
}

func (f *fakePublisher) PublishOrderFailed(ctx context.Context, event *models.OrderFailedEvent) error {
	f.failed = append(f.failed, event)
	return f.publishErr
}

// fakeMailer records dispatched emails
type sentMail struct {
	to      string
	subject string
	html    string
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}
