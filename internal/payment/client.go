// Package payment wraps the Stripe API used by the marketplace: Connect
// Express accounts for restaurants and destination-charge payment intents
// that carry the platform fee.
package payment

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// request timeout for Stripe calls
const requestTimeout = 10 * time.Second

// Intent is the subset of a Stripe payment intent the service persists.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
}

// CreateIntentRequest describes a destination charge. Amounts are in minor
// currency units.
type CreateIntentRequest struct {
	OrderID      string
	RestaurantID string
	Amount       int64
	Currency     string
	PlatformFee  int64
	Destination  string
}

// Client calls Stripe with a bounded request timeout.
type Client struct {
	api *client.API
}

// NewClient creates new Client instance with the given secret key.
func NewClient(secretKey string) *Client {
	api := &client.API{}
	api.Init(secretKey, stripe.NewBackends(&http.Client{Timeout: requestTimeout}))
	return &Client{api: api}
}

// CreatePaymentIntent creates a payment intent for the full order amount with
// the platform fee withheld and the remainder transferred to the restaurant
// account. The idempotency key is derived from the order id, so client
// retries cannot create a duplicate charge.
func (c *Client) CreatePaymentIntent(ctx context.Context, req CreateIntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Params: stripe.Params{
			Context:        ctx,
			IdempotencyKey: stripe.String("order-" + req.OrderID),
		},
		Amount:               stripe.Int64(req.Amount),
		Currency:             stripe.String(req.Currency),
		ApplicationFeeAmount: stripe.Int64(req.PlatformFee),
		TransferData: &stripe.PaymentIntentTransferDataParams{
			Destination: stripe.String(req.Destination),
		},
		Metadata: map[string]string{
			"order_id":      req.OrderID,
			"restaurant_id": req.RestaurantID,
		},
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return nil, fmt.Errorf("%w: create payment intent for order %s: %v", models.ErrExternalService, req.OrderID, err)
	}

	return &Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
	}, nil
}

// CreateConnectAccount creates an Express connected account for a restaurant.
func (c *Client) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	params := &stripe.AccountParams{
		Params: stripe.Params{Context: ctx},
		Type:   stripe.String(string(stripe.AccountTypeExpress)),
		Email:  stripe.String(email),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{Requested: stripe.Bool(true)},
			Transfers:    &stripe.AccountCapabilitiesTransfersParams{Requested: stripe.Bool(true)},
		},
	}

	acct, err := c.api.Accounts.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create connect account: %v", models.ErrExternalService, err)
	}

	return acct.ID, nil
}

// CreateAccountLink creates an onboarding link for a connected account.
func (c *Client) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Params:     stripe.Params{Context: ctx},
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}

	link, err := c.api.AccountLinks.New(params)
	if err != nil {
		return "", fmt.Errorf("%w: create account link for %s: %v", models.ErrExternalService, accountID, err)
	}

	return link.URL, nil
}
