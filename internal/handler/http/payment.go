package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type PaymentService interface {
	CreateIntent(ctx context.Context, orderID string) (*service.IntentResult, error)
	Confirm(ctx context.Context, orderID, intentID, finalStatus string) (*models.Order, error)
	OnboardRestaurant(ctx context.Context, restaurantID, refreshURL, returnURL string) (string, error)
}

// PaymentHandler represents HTTP handler for payment-related requests
type PaymentHandler struct {
	svc PaymentService
}

// NewPaymentHandler creates new PaymentHandler instance
func NewPaymentHandler(svc PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type intentResponse struct {
	PaymentIntentID string          `json:"payment_intent_id"`
	ClientSecret    string          `json:"client_secret"`
	PlatformFee     decimal.Decimal `json:"platform_fee"`
	RestaurantShare decimal.Decimal `json:"restaurant_share"`
}

type confirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id"`
	Status          string `json:"status"`
}

type connectAccountRequest struct {
	RefreshURL string `json:"refresh_url"`
	ReturnURL  string `json:"return_url"`
}

type connectAccountResponse struct {
	AccountLink string `json:"account_link"`
}

// CreatePaymentIntent creates a payment intent for an order with the platform
// fee split
// 200 — intent created;
// 401 — not authenticated;
// 404 — unknown order or restaurant;
// 409 — order already paid;
// 422 — restaurant has not completed payment onboarding;
// 502 — payment provider failure (retryable).
func (ph *PaymentHandler) CreatePaymentIntent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		result, err := ph.svc.CreateIntent(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, intentResponse{
			PaymentIntentID: result.PaymentIntentID,
			ClientSecret:    result.ClientSecret,
			PlatformFee:     result.PlatformFee,
			RestaurantShare: result.RestaurantShare,
		})
	}
}

// ConfirmPayment finalizes payment for an order
// 200 — finalized (or an identical retried confirmation);
// 400 — invalid request body;
// 401 — not authenticated;
// 404 — unknown order;
// 409 — order already finalized with a different intent;
// 500 — internal error.
func (ph *PaymentHandler) ConfirmPayment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req confirmPaymentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		status := req.Status
		if status == "" {
			status = models.PaymentStatusPaid
		}

		order, err := ph.svc.Confirm(r.Context(), chi.URLParam(r, "id"), req.PaymentIntentID, status)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderResponse(order))
	}
}

// CreateConnectAccount provisions a payment account for a restaurant and
// returns an onboarding link
// 200 — link created; 401 — not authenticated; 404 — unknown restaurant;
// 502 — payment provider failure.
func (ph *PaymentHandler) CreateConnectAccount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req connectAccountRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		link, err := ph.svc.OnboardRestaurant(r.Context(), chi.URLParam(r, "id"), req.RefreshURL, req.ReturnURL)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, connectAccountResponse{AccountLink: link})
	}
}
