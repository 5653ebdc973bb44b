package service

import (
	"context"
	"fmt"

	"bakery-service/internal/models"
	"bakery-service/internal/receipt"
	"bakery-service/internal/util"

	"go.uber.org/zap"
)

// ReceiptNotifier produces receipt content for a paid order and dispatches
// it by email. Generation failures fall back to the static template;
// dispatch failures are logged and never touch order or payment state.
type ReceiptNotifier struct {
	generator receipt.Generator
	mailer    Mailer
	logger    *zap.Logger
}

// NewReceiptNotifier creates a new notifier. A nil generator skips straight
// to the fallback template; a nil mailer disables dispatch entirely.
func NewReceiptNotifier(generator receipt.Generator, mailer Mailer) *ReceiptNotifier {
	return &ReceiptNotifier{
		generator: generator,
		mailer:    mailer,
		logger:    util.GetLogger(),
	}
}

// SendReceipt renders and dispatches the receipt for a paid order
func (n *ReceiptNotifier) SendReceipt(ctx context.Context, order *models.Order, items []models.OrderItem) error {
	if order.CustomerEmail == "" {
		n.logger.Info("Order has no customer email, receipt skipped",
			zap.String("order_id", order.ID))
		return nil
	}
	if n.mailer == nil {
		n.logger.Warn("Email dispatch disabled, receipt skipped",
			zap.String("order_id", order.ID))
		return nil
	}

	in := receipt.Input{
		CustomerName: order.CustomerName,
		OrderID:      order.ID,
		Items:        toReceiptItems(items),
		Total:        order.Total,
	}

	content := n.render(ctx, in)

	if err := n.mailer.Send(ctx, order.CustomerEmail, content.Subject, content.Body); err != nil {
		util.ReceiptsFailedTotal.WithLabelValues("dispatch").Inc()
		n.logger.Error("Receipt dispatch failed",
			zap.String("order_id", order.ID),
			zap.Error(err))
		return fmt.Errorf("failed to dispatch receipt: %w", err)
	}

	util.ReceiptsSentTotal.Inc()
	n.logger.Info("Receipt sent",
		zap.String("order_id", order.ID),
		zap.String("to", order.CustomerEmail))
	return nil
}

func (n *ReceiptNotifier) render(ctx context.Context, in receipt.Input) *receipt.Content {
	if n.generator == nil {
		util.ReceiptsFallbackTotal.Inc()
		return receipt.Fallback(in)
	}

	content, err := n.generator.Generate(ctx, in)
	if err != nil {
		util.ReceiptsFallbackTotal.Inc()
		n.logger.Warn("Receipt generation failed, using fallback template",
			zap.String("order_id", in.OrderID),
			zap.Error(err))
		return receipt.Fallback(in)
	}
	return content
}

func toReceiptItems(items []models.OrderItem) []receipt.Item {
	out := make([]receipt.Item, 0, len(items))
	for _, item := range items {
		out = append(out, receipt.Item{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.UnitPrice,
		})
	}
	return out
}
