package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderCancelled},
	OrderShipped: {OrderCompleted},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPaid, OrderShipped, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether an order in status s may move to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

const DefaultPaymentMethod = "credit-card"

type Order struct {
	gorm.Model
	UserID          uint            `json:"userId" gorm:"not null;uniqueIndex:idx_order_idempotency,priority:1"`
	IdempotencyKey  *string         `json:"-" gorm:"size:128;uniqueIndex:idx_order_idempotency,priority:2"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	TotalAmount     decimal.Decimal `json:"totalAmount" gorm:"type:decimal(12,2);not null"`
	PaymentMethod   string          `json:"paymentMethod" gorm:"size:50;not null;default:credit-card"`
	ShippingAddress string          `json:"shippingAddress" gorm:"type:text;not null"`
	ContactEmail    string          `json:"contactEmail" gorm:"size:191;not null"`
	ContactName     string          `json:"contactName" gorm:"size:191;not null"`
	Status          OrderStatus     `json:"status" gorm:"size:20;not null;default:pending;index"`
}

// OrderItem is a frozen copy of a book line at order time.
type OrderItem struct {
	ID       uint            `json:"-" gorm:"primaryKey"`
	OrderID  uint            `json:"-" gorm:"not null;index"`
	BookID   uint            `json:"bookId" gorm:"not null"`
	Title    string          `json:"title" gorm:"size:255;not null"`
	Price    decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Quantity int             `json:"quantity" gorm:"not null"`
}

// Subtotal is price times quantity for the line.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
