package models

import "github.com/shopspring/decimal"

// payment account onboarding status
const (
	AccountStatusPending    = "pending"
	AccountStatusActive     = "active"
	AccountStatusRestricted = "restricted"
)

// DefaultCommissionRate is the platform cut applied when a restaurant has no
// negotiated rate.
var DefaultCommissionRate = decimal.NewFromFloat(0.15)

// Restaurant is restaurant entity
type Restaurant struct {
	ID              string
	UserID          string
	Name            string
	Description     string
	Cuisine         string
	Rating          decimal.Decimal
	DeliveryTime    string
	PriceForTwo     int
	ImageURL        string
	CommissionRate  decimal.Decimal
	StripeAccountID string
	AccountStatus   string
	IsActive        bool
}

// PaymentReady reports whether payment intents may be created for the
// restaurant. A provisioned Stripe account id is required; full onboarding
// completion is not.
func (r *Restaurant) PaymentReady() bool {
	return r.StripeAccountID != ""
}
