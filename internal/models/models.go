package models

import "time"

// Order statuses. Transitions are forward-only: pending -> paid or failed.
// paid is terminal and never regresses.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusFailed  = "failed"
)

// Product represents a product in the bakery catalog
type Product struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description,omitempty"`
	ImageURL    string    `db:"image_url" json:"imageUrl,omitempty"`
	Price       float64   `db:"price" json:"price"`
	Stock       int       `db:"stock" json:"stock"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// Order represents a customer order. The ID doubles as the external_reference
// sent to the payment provider so webhook notifications can be matched back.
type Order struct {
	ID                string    `db:"id" json:"id"`
	UserID            string    `db:"user_id" json:"userId"`
	CustomerName      string    `db:"customer_name" json:"customerName"`
	CustomerPhone     string    `db:"customer_phone" json:"customerPhone"`
	CustomerEmail     string    `db:"customer_email" json:"customerEmail,omitempty"`
	Total             float64   `db:"total" json:"total"`
	Status            string    `db:"status" json:"status"`
	ProviderPaymentID string    `db:"provider_payment_id" json:"providerPaymentId,omitempty"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`
}

// OrderItem is a snapshot of a product at order time. Later catalog or price
// changes never alter historical orders.
type OrderItem struct {
	ID        int64   `db:"id" json:"-"`
	OrderID   string  `db:"order_id" json:"-"`
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	UnitPrice float64 `db:"unit_price" json:"price"`
	Quantity  int     `db:"quantity" json:"quantity"`
}
