package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type OrderService interface {
	Create(ctx context.Context, req service.CreateOrderRequest) (*models.Order, error)
	TransitionStatus(ctx context.Context, orderID, newStatus string, actor models.TokenPayload) (*models.Order, error)
	ListStudentOrders(ctx context.Context, studentID string) ([]models.Order, error)
	ListRestaurantOrders(ctx context.Context, restaurantID string) ([]models.Order, error)
}

// OrderHandler represents HTTP handler for order-related requests
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates new OrderHandler instance
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderItemRequest struct {
	MenuItemID string `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type createOrderRequest struct {
	RestaurantID    string                   `json:"restaurant_id"`
	Items           []createOrderItemRequest `json:"items"`
	DeliveryAddress string                   `json:"delivery_address"`
	Instructions    string                   `json:"instructions"`
	DeliveryFee     decimal.Decimal          `json:"delivery_fee"`
	Tax             decimal.Decimal          `json:"tax"`
	Discount        decimal.Decimal          `json:"discount"`
	TotalAmount     *decimal.Decimal         `json:"total_amount,omitempty"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderItemResponse struct {
	MenuItemID string          `json:"menu_item_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	Number          string              `json:"number"`
	StudentID       string              `json:"student_id"`
	RestaurantID    string              `json:"restaurant_id"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"payment_status"`
	Items           []orderItemResponse `json:"items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DeliveryFee     decimal.Decimal     `json:"delivery_fee"`
	Tax             decimal.Decimal     `json:"tax"`
	Discount        decimal.Decimal     `json:"discount"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	DeliveryAddress string              `json:"delivery_address"`
	Instructions    string              `json:"instructions,omitempty"`
	CreatedAt       string              `json:"created_at"`
	UpdatedAt       string              `json:"updated_at"`
}

func toOrderResponse(o *models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			MenuItemID: item.MenuItemID,
			Name:       item.Name,
			Price:      item.Price,
			Quantity:   item.Quantity,
		})
	}
	return orderResponse{
		ID:              o.ID,
		Number:          o.Number,
		StudentID:       o.StudentID,
		RestaurantID:    o.RestaurantID,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		Items:           items,
		Subtotal:        o.Subtotal,
		DeliveryFee:     o.DeliveryFee,
		Tax:             o.Tax,
		Discount:        o.Discount,
		TotalAmount:     o.TotalAmount,
		DeliveryAddress: o.DeliveryAddress,
		Instructions:    o.Instructions,
		CreatedAt:       o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       o.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateOrder places a new order for the authenticated student
// 201 — order placed;
// 400 — invalid input (unknown or unavailable item, total mismatch);
// 401 — not authenticated;
// 404 — unknown restaurant;
// 500 — internal error.
func (oh *OrderHandler) CreateOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createOrderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		items := make([]service.CreateOrderItem, 0, len(req.Items))
		for _, item := range req.Items {
			items = append(items, service.CreateOrderItem{MenuItemID: item.MenuItemID, Quantity: item.Quantity})
		}

		order, err := oh.svc.Create(r.Context(), service.CreateOrderRequest{
			StudentID:       payload.UserID,
			RestaurantID:    req.RestaurantID,
			Items:           items,
			DeliveryAddress: req.DeliveryAddress,
			Instructions:    req.Instructions,
			DeliveryFee:     req.DeliveryFee,
			Tax:             req.Tax,
			Discount:        req.Discount,
			TotalAmount:     req.TotalAmount,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toOrderResponse(order))
	}
}

// UpdateOrderStatus transitions an order to a new status
// 200 — transitioned (or an identical retried transition);
// 400 — invalid request body;
// 401 — not authenticated;
// 403 — caller may not transition this order;
// 404 — unknown order;
// 409 — transition not allowed, or lost a concurrent race;
// 500 — internal error.
func (oh *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, ok := getAuthPayload(r.Context(), authPayloadKey)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req updateStatusRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		order, err := oh.svc.TransitionStatus(r.Context(), chi.URLParam(r, "id"), req.Status, *payload)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toOrderResponse(order))
	}
}

// ListStudentOrders returns orders placed by a student
// 200 — list returned; 401 — not authenticated.
func (oh *OrderHandler) ListStudentOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListStudentOrders(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		oh.writeOrders(w, orders)
	}
}

// ListRestaurantOrders returns orders fulfilled by a restaurant
// 200 — list returned; 401 — not authenticated.
func (oh *OrderHandler) ListRestaurantOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		orders, err := oh.svc.ListRestaurantOrders(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		oh.writeOrders(w, orders)
	}
}

func (oh *OrderHandler) writeOrders(w http.ResponseWriter, orders []models.Order) {
	resp := make([]orderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	writeJSON(w, http.StatusOK, resp)
}
