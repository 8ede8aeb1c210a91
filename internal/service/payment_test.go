package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/payment"
	"github.com/campuseats/campuseats/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	createIntentFn  func(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error)
	createAccountFn func(ctx context.Context, email string) (string, error)
	accountLinkFn   func(ctx context.Context, accountID, refreshURL, returnURL string) (string, error)
	lastIntentReq   *payment.CreateIntentRequest
}

func (fp *fakeProcessor) CreatePaymentIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
	fp.lastIntentReq = &req
	if fp.createIntentFn != nil {
		return fp.createIntentFn(ctx, req)
	}
	return &payment.Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Status: "requires_payment_method"}, nil
}

func (fp *fakeProcessor) CreateConnectAccount(ctx context.Context, email string) (string, error) {
	if fp.createAccountFn != nil {
		return fp.createAccountFn(ctx, email)
	}
	return "acct_test", nil
}

func (fp *fakeProcessor) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	if fp.accountLinkFn != nil {
		return fp.accountLinkFn(ctx, accountID, refreshURL, returnURL)
	}
	return "https://connect.stripe.com/setup/" + accountID, nil
}

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name       string
		total      string
		rate       string
		wantFee    string
		wantPayout string
	}{
		{name: "even_split", total: "1000", rate: "0.15", wantFee: "150", wantPayout: "850"},
		{name: "fee_rounds_up", total: "999", rate: "0.15", wantFee: "150", wantPayout: "849"},
		{name: "half_rounds_up", total: "250", rate: "0.15", wantFee: "38", wantPayout: "212"},
		{name: "fee_rounds_down", total: "101", rate: "0.10", wantFee: "10", wantPayout: "91"},
		{name: "zero_total", total: "0", rate: "0.15", wantFee: "0", wantPayout: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, payout := ComputeSplit(decimal.RequireFromString(tt.total), decimal.RequireFromString(tt.rate))
			assert.True(t, fee.Equal(decimal.RequireFromString(tt.wantFee)), "fee = %s", fee)
			assert.True(t, payout.Equal(decimal.RequireFromString(tt.wantPayout)), "payout = %s", payout)
			assert.True(t, fee.Add(payout).Equal(decimal.RequireFromString(tt.total)), "split must sum to the total")
		})
	}
}

type paymentFixture struct {
	store        *memory.Store
	processor    *fakeProcessor
	svc          *PaymentService
	restaurantID string
	ownerID      string
}

func newPaymentFixture(t *testing.T, stripeAccountID string) *paymentFixture {
	t.Helper()
	store := memory.NewStore()

	ownerID := uuid.NewString()
	_, err := store.CreateUser(context.Background(), &models.User{
		ID:    ownerID,
		Email: "owner@campus.edu",
		Role:  models.RoleRestaurant,
	})
	require.NoError(t, err)

	restaurantID := uuid.NewString()
	_, err = store.CreateRestaurant(context.Background(), &models.Restaurant{
		ID:              restaurantID,
		UserID:          ownerID,
		Name:            "Pizza Palace",
		CommissionRate:  models.DefaultCommissionRate,
		StripeAccountID: stripeAccountID,
		IsActive:        true,
	})
	require.NoError(t, err)

	processor := &fakeProcessor{}
	return &paymentFixture{
		store:        store,
		processor:    processor,
		svc:          NewPaymentService(store, store, store, processor, "inr"),
		restaurantID: restaurantID,
		ownerID:      ownerID,
	}
}

func (pf *paymentFixture) seedOrder(t *testing.T, total string) *models.Order {
	t.Helper()
	order, err := pf.store.CreateOrder(context.Background(), &models.Order{
		ID:            uuid.NewString(),
		Number:        "ORD-1720000000000-" + uuid.NewString()[:5],
		StudentID:     uuid.NewString(),
		RestaurantID:  pf.restaurantID,
		Status:        models.OrderStatusPlaced,
		PaymentStatus: models.PaymentStatusPending,
		Items: []models.OrderItem{
			{MenuItemID: uuid.NewString(), Name: "Margherita Pizza", Price: decimal.RequireFromString(total), Quantity: 1},
		},
		Subtotal:        decimal.RequireFromString(total),
		TotalAmount:     decimal.RequireFromString(total),
		DeliveryAddress: "Hostel Block A",
	})
	require.NoError(t, err)
	return order
}

func TestPaymentService_CreateIntent(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	res, err := pf.svc.CreateIntent(context.Background(), order.ID)
	require.NoError(t, err)

	assert.Equal(t, "pi_test", res.PaymentIntentID)
	assert.Equal(t, "pi_test_secret", res.ClientSecret)
	assert.True(t, res.PlatformFee.Equal(decimal.NewFromInt(38)), "fee = %s", res.PlatformFee)
	assert.True(t, res.RestaurantShare.Equal(decimal.NewFromInt(212)), "payout = %s", res.RestaurantShare)

	// the processor works in minor units
	require.NotNil(t, pf.processor.lastIntentReq)
	assert.Equal(t, int64(25000), pf.processor.lastIntentReq.Amount)
	assert.Equal(t, int64(3800), pf.processor.lastIntentReq.PlatformFee)
	assert.Equal(t, "acct_123", pf.processor.lastIntentReq.Destination)
	assert.Equal(t, "inr", pf.processor.lastIntentReq.Currency)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_test", stored.PaymentIntentID)
	assert.True(t, stored.PlatformFee.Equal(decimal.NewFromInt(38)))
	assert.True(t, stored.RestaurantShare.Equal(decimal.NewFromInt(212)))
}

func TestPaymentService_CreateIntent_DefaultCommission(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")

	// a restaurant created before commission rates were persisted
	zeroRateID := uuid.NewString()
	_, err := pf.store.CreateRestaurant(context.Background(), &models.Restaurant{
		ID:              zeroRateID,
		UserID:          pf.ownerID,
		Name:            "Legacy Canteen",
		StripeAccountID: "acct_123",
		IsActive:        true,
	})
	require.NoError(t, err)
	pf.restaurantID = zeroRateID

	order := pf.seedOrder(t, "1000")
	res, err := pf.svc.CreateIntent(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, res.PlatformFee.Equal(decimal.NewFromInt(150)), "fee = %s", res.PlatformFee)
}

func TestPaymentService_CreateIntent_NoConnectedAccount(t *testing.T) {
	pf := newPaymentFixture(t, "")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.CreateIntent(context.Background(), order.ID)
	assert.ErrorIs(t, err, models.ErrPaymentSetup)
}

func TestPaymentService_CreateIntent_AlreadyPaid(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")
	require.NoError(t, pf.store.MarkOrderPaid(context.Background(), order.ID, "pi_old", models.PaymentStatusPaid))

	_, err := pf.svc.CreateIntent(context.Background(), order.ID)
	assert.ErrorIs(t, err, models.ErrConflictData)
}

func TestPaymentService_CreateIntent_UnknownOrder(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")

	_, err := pf.svc.CreateIntent(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestPaymentService_CreateIntent_ProcessorFailureLeavesOrderUntouched(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	pf.processor.createIntentFn = func(ctx context.Context, req payment.CreateIntentRequest) (*payment.Intent, error) {
		return nil, fmt.Errorf("%w: stripe is down", models.ErrExternalService)
	}

	_, err := pf.svc.CreateIntent(context.Background(), order.ID)
	require.ErrorIs(t, err, models.ErrExternalService)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PaymentIntentID)
	assert.True(t, stored.PlatformFee.IsZero())
	assert.Equal(t, models.PaymentStatusPending, stored.PaymentStatus)
}

func TestPaymentService_Confirm(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	confirmed, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, "pi_123", confirmed.PaymentIntentID)
	// order status is independent of payment status
	assert.Equal(t, models.OrderStatusPlaced, confirmed.Status)
}

func TestPaymentService_Confirm_RetriedIsNoop(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)

	again, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, again.PaymentStatus)
	assert.Equal(t, "pi_123", again.PaymentIntentID)
}

func TestPaymentService_Confirm_SecondIntentConflicts(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)

	_, err = pf.svc.Confirm(context.Background(), order.ID, "pi_456", models.PaymentStatusPaid)
	assert.ErrorIs(t, err, models.ErrConflictData)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", stored.PaymentIntentID)
}

func TestPaymentService_Confirm_Failed(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	confirmed, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, confirmed.PaymentStatus)
}

func TestPaymentService_Confirm_FailedThenSucceeded(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	// first attempt is declined, the customer retries the same intent
	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)

	confirmed, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, "pi_123", confirmed.PaymentIntentID)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestPaymentService_Confirm_FailedWithDifferentIntentConflicts(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)

	_, err = pf.svc.Confirm(context.Background(), order.ID, "pi_456", models.PaymentStatusPaid)
	assert.ErrorIs(t, err, models.ErrConflictData)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, stored.PaymentStatus)
	assert.Equal(t, "pi_123", stored.PaymentIntentID)
}

func TestPaymentService_Confirm_PaidIsTerminal(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusPaid)
	require.NoError(t, err)

	// a late failure report for a captured payment must not unwind it
	_, err = pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	assert.ErrorIs(t, err, models.ErrConflictData)

	stored, err := pf.store.GetOrderByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.PaymentStatus)
}

func TestPaymentService_Confirm_RetriedFailureIsNoop(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)

	again, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, again.PaymentStatus)
}

func TestPaymentService_CreateIntentAfterFailureThenConfirm(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusFailed)
	require.NoError(t, err)

	// a fresh intent replaces the declined one and can finalize the order
	res, err := pf.svc.CreateIntent(context.Background(), order.ID)
	require.NoError(t, err)

	confirmed, err := pf.svc.Confirm(context.Background(), order.ID, res.PaymentIntentID, models.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, confirmed.PaymentStatus)
	assert.Equal(t, res.PaymentIntentID, confirmed.PaymentIntentID)
}

func TestPaymentService_Confirm_Validation(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")
	order := pf.seedOrder(t, "250")

	_, err := pf.svc.Confirm(context.Background(), order.ID, "", models.PaymentStatusPaid)
	assert.True(t, models.IsValidationError(err))

	_, err = pf.svc.Confirm(context.Background(), order.ID, "pi_123", models.PaymentStatusRefunded)
	assert.True(t, models.IsValidationError(err))

	_, err = pf.svc.Confirm(context.Background(), uuid.NewString(), "pi_123", models.PaymentStatusPaid)
	assert.ErrorIs(t, err, models.ErrDataNotFound)
}

func TestPaymentService_OnboardRestaurant(t *testing.T) {
	pf := newPaymentFixture(t, "")

	link, err := pf.svc.OnboardRestaurant(context.Background(), pf.restaurantID, "https://campuseats.test/refresh", "https://campuseats.test/return")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/setup/acct_test", link)

	restaurant, err := pf.store.GetRestaurantByID(context.Background(), pf.restaurantID)
	require.NoError(t, err)
	assert.Equal(t, "acct_test", restaurant.StripeAccountID)
	assert.Equal(t, models.AccountStatusPending, restaurant.AccountStatus)
}

func TestPaymentService_OnboardRestaurant_ExistingAccount(t *testing.T) {
	pf := newPaymentFixture(t, "acct_123")

	created := false
	pf.processor.createAccountFn = func(ctx context.Context, email string) (string, error) {
		created = true
		return "acct_new", nil
	}

	link, err := pf.svc.OnboardRestaurant(context.Background(), pf.restaurantID, "https://campuseats.test/refresh", "https://campuseats.test/return")
	require.NoError(t, err)
	assert.False(t, created, "an existing account must be reused")
	assert.Equal(t, "https://connect.stripe.com/setup/acct_123", link)
}
