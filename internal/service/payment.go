package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/payment"
	"github.com/shopspring/decimal"
)

// minor currency units per whole unit
var minorUnits = decimal.NewFromInt(100)

// Processor is the external payment provider boundary. The provider performs
// the actual split and transfer; this service only computes the amounts and
// passes them through.
type Processor interface {
	// CreatePaymentIntent creates a destination charge with the platform fee
	// withheld
	CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error)
	// CreateConnectAccount creates a connected account for a restaurant
	CreateConnectAccount(ctx context.Context, email string) (string, error)
	// CreateAccountLink creates an onboarding link for a connected account
	CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
}

// PaymentOrderRepository is the order store surface the payment service needs
type PaymentOrderRepository interface {
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// SetOrderSplit persists computed split amounts and the payment intent id
	SetOrderSplit(ctx context.Context, order *models.Order) error
	// MarkOrderPaid flips payment status from pending with at-most-once
	// semantics
	MarkOrderPaid(ctx context.Context, id, intentID, status string) error
}

// RestaurantAccountRepository resolves and updates restaurant payment accounts
type RestaurantAccountRepository interface {
	GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
	SetStripeAccount(ctx context.Context, id, accountID, status string) error
}

// UserReader resolves the owner of a restaurant account
type UserReader interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// IntentResult is returned to the client to complete payment.
type IntentResult struct {
	PaymentIntentID string
	ClientSecret    string
	PlatformFee     decimal.Decimal
	RestaurantShare decimal.Decimal
}

// PaymentService computes the marketplace split and coordinates with the
// payment processor.
type PaymentService struct {
	orders      PaymentOrderRepository
	restaurants RestaurantAccountRepository
	users       UserReader
	processor   Processor
	currency    string
}

// NewPaymentService creates new PaymentService instance
func NewPaymentService(orders PaymentOrderRepository, restaurants RestaurantAccountRepository, users UserReader, processor Processor, currency string) *PaymentService {
	return &PaymentService{
		orders:      orders,
		restaurants: restaurants,
		users:       users,
		processor:   processor,
		currency:    currency,
	}
}

// ComputeSplit returns the platform fee and restaurant payout for an order
// total. The fee is rounded half up to the nearest whole currency unit;
// the payout is the remainder, so fee + payout always equals the total.
func ComputeSplit(totalAmount, commissionRate decimal.Decimal) (fee, payout decimal.Decimal) {
	fee = totalAmount.Mul(commissionRate).Round(0)
	payout = totalAmount.Sub(fee)
	return fee, payout
}

// CreateIntent computes the split for the order and creates a payment intent
// with the processor. The order is only mutated after the processor call
// succeeds, so a processor failure leaves it untouched.
func (ps *PaymentService) CreateIntent(ctx context.Context, orderID string) (*IntentResult, error) {
	order, err := ps.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.TotalAmount.IsPositive() {
		return nil, models.ValidationError{Field: "total_amount", Message: "order amount must be positive"}
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		return nil, fmt.Errorf("%w: order %s is already paid", models.ErrConflictData, orderID)
	}

	restaurant, err := ps.restaurants.GetRestaurantByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, err
	}
	if !restaurant.PaymentReady() {
		return nil, fmt.Errorf("%w: restaurant %s", models.ErrPaymentSetup, restaurant.ID)
	}

	rate := restaurant.CommissionRate
	if rate.IsZero() {
		rate = models.DefaultCommissionRate
	}
	fee, payout := ComputeSplit(order.TotalAmount, rate)

	intent, err := ps.processor.CreatePaymentIntent(ctx, payment.CreateIntentRequest{
		OrderID:      order.ID,
		RestaurantID: restaurant.ID,
		Amount:       order.TotalAmount.Mul(minorUnits).IntPart(),
		Currency:     ps.currency,
		PlatformFee:  fee.Mul(minorUnits).IntPart(),
		Destination:  restaurant.StripeAccountID,
	})
	if err != nil {
		return nil, err
	}

	order.PlatformFee = fee
	order.RestaurantShare = payout
	order.PaymentIntentID = intent.ID
	if err := ps.orders.SetOrderSplit(ctx, order); err != nil {
		return nil, err
	}

	return &IntentResult{
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		PlatformFee:     fee,
		RestaurantShare: payout,
	}, nil
}

// Confirm finalizes payment for the order with at-most-once semantics:
// a repeated confirmation with the same intent id is a no-op, and a
// confirmation with a different intent id for an already-paid order is a
// conflict. paid is the only terminal payment state; a declined attempt is
// retried by the processor on the same intent, so failed may still move to
// paid when the intent id matches.
func (ps *PaymentService) Confirm(ctx context.Context, orderID, intentID, finalStatus string) (*models.Order, error) {
	if intentID == "" {
		return nil, models.ValidationError{Field: "payment_intent_id", Message: "payment intent id is required"}
	}
	if finalStatus != models.PaymentStatusPaid && finalStatus != models.PaymentStatusFailed {
		return nil, models.ValidationError{Field: "payment_status", Message: "final status must be paid or failed"}
	}

	order, err := ps.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.PaymentStatus {
	case models.PaymentStatusPending:
		// first confirmation
	case models.PaymentStatusFailed:
		if order.PaymentIntentID != intentID {
			return nil, fmt.Errorf("%w: order %s already finalized with intent %s", models.ErrConflictData, orderID, order.PaymentIntentID)
		}
		if finalStatus == models.PaymentStatusFailed {
			// retried confirmation
			return order, nil
		}
	default:
		if order.PaymentStatus == finalStatus && order.PaymentIntentID == intentID {
			// retried confirmation
			return order, nil
		}
		return nil, fmt.Errorf("%w: order %s already finalized with intent %s", models.ErrConflictData, orderID, order.PaymentIntentID)
	}

	if err := ps.orders.MarkOrderPaid(ctx, orderID, intentID, finalStatus); err != nil {
		if errors.Is(err, models.ErrConflictData) {
			// lost a race with another confirmation; treat an identical
			// outcome as a retry
			cur, gerr := ps.orders.GetOrderByID(ctx, orderID)
			if gerr == nil && cur.PaymentStatus == finalStatus && cur.PaymentIntentID == intentID {
				return cur, nil
			}
		}
		return nil, err
	}

	return ps.orders.GetOrderByID(ctx, orderID)
}

// OnboardRestaurant provisions a connected account for the restaurant if it
// has none and returns a fresh onboarding link.
func (ps *PaymentService) OnboardRestaurant(ctx context.Context, restaurantID, refreshURL, returnURL string) (string, error) {
	restaurant, err := ps.restaurants.GetRestaurantByID(ctx, restaurantID)
	if err != nil {
		return "", err
	}

	accountID := restaurant.StripeAccountID
	if accountID == "" {
		owner, err := ps.users.GetUserByID(ctx, restaurant.UserID)
		if err != nil {
			return "", err
		}

		accountID, err = ps.processor.CreateConnectAccount(ctx, owner.Email)
		if err != nil {
			return "", err
		}

		if err := ps.restaurants.SetStripeAccount(ctx, restaurantID, accountID, models.AccountStatusPending); err != nil {
			return "", err
		}
	}

	return ps.processor.CreateAccountLink(ctx, accountID, refreshURL, returnURL)
}
