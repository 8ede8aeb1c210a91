package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/stripe/stripe-go/v81"
	"go.uber.org/zap"
)

const maxWebhookBodyBytes = int64(65536)

// WebhookHandler processes Stripe events
type WebhookHandler struct {
	svc    PaymentService
	logger *zap.Logger
}

// NewWebhookHandler creates new WebhookHandler instance
func NewWebhookHandler(svc PaymentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, logger: logger}
}

// HandleEvent confirms payment when Stripe reports a succeeded payment
// intent. Confirmation is idempotent, so Stripe redeliveries are harmless.
func (wh *WebhookHandler) HandleEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)

		var event stripe.Event
		if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		switch event.Type {
		case "payment_intent.succeeded", "payment_intent.payment_failed":
			var intent stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
				http.Error(w, "bad request", http.StatusBadRequest)
				return
			}

			orderID := intent.Metadata["order_id"]
			if orderID == "" {
				wh.logger.Warn("webhook intent without order id", zap.String("intent", intent.ID))
				w.WriteHeader(http.StatusOK)
				return
			}

			status := models.PaymentStatusPaid
			if event.Type == "payment_intent.payment_failed" {
				status = models.PaymentStatusFailed
			}

			if _, err := wh.svc.Confirm(r.Context(), orderID, intent.ID, status); err != nil {
				// a conflicting confirmation means the order was finalized by
				// another path; acknowledge so Stripe stops redelivering
				if !errors.Is(err, models.ErrConflictData) {
					wh.logger.Error("webhook confirmation failed",
						zap.String("order_id", orderID),
						zap.String("intent", intent.ID),
						zap.Error(err))
					writeError(w, err)
					return
				}
				wh.logger.Info("webhook confirmation conflict ignored",
					zap.String("order_id", orderID),
					zap.String("intent", intent.ID))
			}

			w.WriteHeader(http.StatusOK)

		default:
			wh.logger.Debug("unhandled webhook event", zap.String("type", string(event.Type)))
			w.WriteHeader(http.StatusOK)
		}
	}
}
