package worker

import (
	"context"
	"log"

	"bakery-service/internal/broker"
	"bakery-service/internal/models"
	"bakery-service/internal/service"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// ReceiptWorker consumes OrderPaid events and dispatches receipt emails.
// Dispatch is best-effort: handler errors are logged and the event is never
// redelivered, so a notifier failure cannot affect payment state.
type ReceiptWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	orders       service.OrderStore
	notifier     *service.ReceiptNotifier
	logger       *zap.Logger
}

// NewReceiptWorker creates a new receipt worker
func NewReceiptWorker(consumer *broker.Consumer, orders service.OrderStore, notifier *service.ReceiptNotifier) *ReceiptWorker {
	w := &ReceiptWorker{
		consumer: consumer,
		orders:   orders,
		notifier: notifier,
		logger:   util.GetLogger(),
	}

	eventHandler := broker.NewEventHandler()
	eventHandler.OnOrderPaid(w.HandleOrderPaid)
	w.eventHandler = eventHandler

	return w
}

// Start starts the worker
func (w *ReceiptWorker) Start(ctx context.Context) error {
	log.Println("Starting receipt worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *ReceiptWorker) Stop() error {
	log.Println("Stopping receipt worker...")
	return w.consumer.Close()
}

// HandleOrderPaid loads the paid order from the store and hands it to the
// notifier. The event only carries identifiers; the store stays the source
// of truth for customer contact and item snapshots.
func (w *ReceiptWorker) HandleOrderPaid(ctx context.Context, event *models.OrderPaidEvent) error {
	order, err := w.orders.GetOrderByID(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Failed to load order for receipt",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return nil
	}

	items, err := w.orders.GetOrderItems(ctx, event.OrderID)
	if err != nil {
		w.logger.Error("Failed to load order items for receipt",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
		return nil
	}

	if err := w.notifier.SendReceipt(ctx, order, items); err != nil {
		w.logger.Error("Receipt dispatch failed",
			zap.String("order_id", event.OrderID),
			zap.Error(err))
	}
	return nil
}
