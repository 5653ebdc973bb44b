package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bakery-service/internal/models"
	"bakery-service/internal/store"
	"bakery-service/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NotificationTypePayment is the only provider notification type that drives
// a reconciliation pass; everything else is acknowledged and ignored.
const NotificationTypePayment = "payment"

// Notification is the ephemeral payload extracted from a provider callback
type Notification struct {
	Type      string
	PaymentID string
}

// Outcome classifies a reconciliation pass so the HTTP layer can pick a
// response status without re-deriving the state machine.
type Outcome string

const (
	OutcomeIgnored          Outcome = "ignored"
	OutcomeMissingReference Outcome = "missing_reference"
	OutcomeOrderNotFound    Outcome = "order_not_found"
	OutcomeProviderError    Outcome = "provider_error"
	OutcomeInternalError    Outcome = "internal_error"
	OutcomePaid             Outcome = "paid"
	OutcomeDuplicate        Outcome = "duplicate"
	OutcomeStatusUpdated    Outcome = "status_updated"
	OutcomeNoChange         Outcome = "no_change"
)

// Reconciler applies asynchronous payment notifications to the order and
// inventory stores. Each delivery is handled statelessly; correctness under
// duplicate and concurrent delivery rests on the store's transactional
// compare-and-swap in ApplyPayment.
type Reconciler struct {
	store     OrderStore
	provider  PaymentProvider
	publisher EventPublisher
	logger    *zap.Logger
}

// NewReconciler creates a new webhook reconciler
func NewReconciler(orderStore OrderStore, provider PaymentProvider, publisher EventPublisher) *Reconciler {
	return &Reconciler{
		store:     orderStore,
		provider:  provider,
		publisher: publisher,
		logger:    util.GetLogger(),
	}
}

// MapProviderStatus maps a provider payment status to an order status.
// Anything outside approved/rejected/cancelled leaves the order pending.
func MapProviderStatus(providerStatus string) string {
	switch providerStatus {
	case "approved":
		return models.OrderStatusPaid
	case "rejected", "cancelled":
		return models.OrderStatusFailed
	default:
		return models.OrderStatusPending
	}
}

// Process runs one reconciliation pass for an inbound notification.
func (r *Reconciler) Process(ctx context.Context, n Notification) (Outcome, error) {
	ctx, span := util.StartSpan(ctx, "Reconciler.Process")
	defer span.End()

	outcome, err := r.process(ctx, n)
	util.WebhookNotificationsTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, err
}

func (r *Reconciler) process(ctx context.Context, n Notification) (Outcome, error) {
	// The provider sends several notification kinds; only payment
	// notifications matter here.
	if n.Type != NotificationTypePayment || n.PaymentID == "" {
		return OutcomeIgnored, nil
	}

	// Trust boundary: the notification body is not trusted. Only the
	// provider's own lookup response decides status.
	info, err := r.provider.GetPayment(ctx, n.PaymentID)
	if err != nil {
		r.logger.Error("Payment lookup failed",
			zap.String("payment_id", n.PaymentID),
			zap.Error(err))
		return OutcomeProviderError, err
	}

	if info.ExternalReference == "" {
		r.logger.Warn("Payment has no external reference",
			zap.String("payment_id", n.PaymentID))
		return OutcomeMissingReference, nil
	}

	order, err := r.store.GetOrderByID(ctx, info.ExternalReference)
	if errors.Is(err, store.ErrOrderNotFound) {
		r.logger.Warn("Notification for unknown order",
			zap.String("order_id", info.ExternalReference),
			zap.String("payment_id", n.PaymentID))
		return OutcomeOrderNotFound, nil
	}
	if err != nil {
		return OutcomeInternalError, fmt.Errorf("failed to load order: %w", err)
	}

	mapped := MapProviderStatus(info.Status)

	// paid is sticky: a later notification reporting any status for an
	// already-paid order must never re-decrement stock or regress status.
	if order.Status == models.OrderStatusPaid {
		if mapped == models.OrderStatusPaid {
			util.DuplicateNotificationsTotal.Inc()
		}
		r.logger.Info("Order already paid, notification ignored",
			zap.String("order_id", order.ID),
			zap.String("provider_status", info.Status))
		return OutcomeDuplicate, nil
	}

	switch mapped {
	case models.OrderStatusPaid:
		return r.applyPaid(ctx, order, info)

	case models.OrderStatusFailed:
		if order.Status == models.OrderStatusFailed {
			return OutcomeNoChange, nil
		}
		if err := r.store.UpdateOrderPayment(ctx, order.ID, models.OrderStatusFailed, info.ID); err != nil {
			return OutcomeInternalError, fmt.Errorf("failed to update order status: %w", err)
		}
		util.OrdersFailedTotal.WithLabelValues(info.Status).Inc()
		r.logger.Info("Order marked failed",
			zap.String("order_id", order.ID),
			zap.String("provider_status", info.Status))
		r.publishFailed(ctx, order.ID, info)
		return OutcomeStatusUpdated, nil

	default:
		// Provider still reports an in-flight status; leave the order pending.
		return OutcomeNoChange, nil
	}
}

// applyPaid commits the paid transition: one atomic batch that flips the
// order status, records the provider payment id, and decrements stock for
// every line item. The in-transaction status check closes the race between
// two concurrent deliveries that both saw a pending order.
func (r *Reconciler) applyPaid(ctx context.Context, order *models.Order, info *PaymentInfo) (Outcome, error) {
	applied, err := r.store.ApplyPayment(ctx, order.ID, info.ID)
	if err != nil {
		return OutcomeInternalError, fmt.Errorf("failed to apply payment: %w", err)
	}
	if !applied {
		util.DuplicateNotificationsTotal.Inc()
		r.logger.Info("Payment already applied",
			zap.String("order_id", order.ID),
			zap.String("payment_id", info.ID))
		return OutcomeDuplicate, nil
	}

	util.OrdersPaidTotal.Inc()
	r.logger.Info("Order paid",
		zap.String("order_id", order.ID),
		zap.String("payment_id", info.ID),
		zap.Float64("amount", info.Amount))

	// Receipt dispatch is asynchronous and best-effort: a publish failure
	// never rolls back the committed payment transition.
	event := &models.OrderPaidEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderPaid,
			Timestamp: time.Now(),
		},
		OrderID:   order.ID,
		PaymentID: info.ID,
		Total:     order.Total,
	}
	if err := r.publisher.PublishOrderPaid(ctx, event); err != nil {
		r.logger.Error("Failed to publish OrderPaid event",
			zap.String("order_id", order.ID),
			zap.Error(err))
	}

	return OutcomePaid, nil
}

func (r *Reconciler) publishFailed(ctx context.Context, orderID string, info *PaymentInfo) {
	event := &models.OrderFailedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeOrderFailed,
			Timestamp: time.Now(),
		},
		OrderID:        orderID,
		PaymentID:      info.ID,
		ProviderStatus: info.Status,
	}
	if err := r.publisher.PublishOrderFailed(ctx, event); err != nil {
		r.logger.Error("Failed to publish OrderFailed event",
			zap.String("order_id", orderID),
			zap.Error(err))
	}
}
