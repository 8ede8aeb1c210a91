package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// order status
const (
	OrderStatusPlaced         = "placed"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusPickedUp       = "picked_up"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"
)

// payment status
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// orderTransitions is the allowed status transition table. cancelled is
// reachable from placed and preparing only; delivered and cancelled are
// terminal. Cancellation from ready is disallowed.
var orderTransitions = map[string][]string{
	OrderStatusPlaced:    {OrderStatusPreparing, OrderStatusCancelled},
	OrderStatusPreparing: {OrderStatusReady, OrderStatusCancelled},
	OrderStatusReady:     {OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a menu item taken at order-creation time.
// Later menu price edits do not affect it.
type OrderItem struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

// Order is order entity
type Order struct {
	ID              string
	Number          string
	StudentID       string
	RestaurantID    string
	Status          string
	PaymentStatus   string
	Items           []OrderItem
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	TotalAmount     decimal.Decimal
	PlatformFee     decimal.Decimal
	RestaurantShare decimal.Decimal
	PaymentIntentID string
	DeliveryAddress string
	Instructions    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
