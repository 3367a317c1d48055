package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order status values. cancelled and delivered are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status values. Independent of order status; only mutated by an
// explicit admin status update.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

var validOrderStatuses = map[string]bool{
	OrderStatusPending:    true,
	OrderStatusConfirmed:  true,
	OrderStatusProcessing: true,
	OrderStatusShipped:    true,
	OrderStatusDelivered:  true,
	OrderStatusCancelled:  true,
}

var validPaymentStatuses = map[string]bool{
	PaymentStatusPending:  true,
	PaymentStatusPaid:     true,
	PaymentStatusFailed:   true,
	PaymentStatusRefunded: true,
}

// ValidOrderStatus reports whether s is a known order status,
// case-insensitively.
func ValidOrderStatus(s string) bool {
	return validOrderStatuses[strings.ToLower(s)]
}

// ValidPaymentStatus reports whether s is a known payment status,
// case-insensitively.
func ValidPaymentStatus(s string) bool {
	return validPaymentStatuses[strings.ToLower(s)]
}

// Order represents one purchase transaction owned by exactly one user.
// TotalAmount equals the sum of its items' TotalPrice at creation time and
// is never recomputed afterwards.
type Order struct {
	ID              uint            `json:"order_id" gorm:"primaryKey"`
	UserID          uint            `json:"user_id" gorm:"index"`
	OrderDate       time.Time       `json:"order_date"`
	TotalAmount     decimal.Decimal `json:"total_amount" gorm:"type:decimal(10,2)"`
	OrderStatus     string          `json:"order_status" gorm:"type:varchar(50);default:pending"`
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method,omitempty" gorm:"type:varchar(50)"`
	PaymentStatus   string          `json:"payment_status" gorm:"type:varchar(50);default:pending"`

	User  *User       `json:"-" gorm:"foreignKey:UserID"`
	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// Cancellable reports whether the order may still be cancelled. Only
// pending and confirmed orders can be; cancellation restores stock.
func (o *Order) Cancellable() bool {
	switch strings.ToLower(o.OrderStatus) {
	case OrderStatusPending, OrderStatusConfirmed:
		return true
	}
	return false
}

// OrderItem is a single line of an order with a price snapshot frozen at
// order time, so later book price changes never alter historical orders.
type OrderItem struct {
	ID         uint            `json:"order_item_id" gorm:"primaryKey"`
	OrderID    uint            `json:"order_id" gorm:"index"`
	BookID     uint            `json:"book_id" gorm:"index"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(10,2)"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(10,2)"`
	CreatedAt  time.Time       `json:"created_at"`

	Book *Book `json:"-" gorm:"foreignKey:BookID"`
}
