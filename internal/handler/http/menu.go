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

type MenuService interface {
	ListForRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	Create(ctx context.Context, restaurantID string, in service.MenuItemInput) (*models.MenuItem, error)
	Update(ctx context.Context, id string, in service.MenuItemInput) (*models.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

// MenuHandler represents HTTP handler for menu-related requests
type MenuHandler struct {
	svc MenuService
}

// NewMenuHandler creates new MenuHandler instance
func NewMenuHandler(svc MenuService) *MenuHandler {
	return &MenuHandler{svc: svc}
}

type menuItemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"image_url"`
	Discount    int             `json:"discount"`
	IsAvailable bool            `json:"is_available"`
}

type menuItemResponse struct {
	ID           string          `json:"id"`
	RestaurantID string          `json:"restaurant_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	ImageURL     string          `json:"image_url"`
	Discount     int             `json:"discount"`
	IsAvailable  bool            `json:"is_available"`
}

func toMenuItemResponse(item *models.MenuItem) menuItemResponse {
	return menuItemResponse{
		ID:           item.ID,
		RestaurantID: item.RestaurantID,
		Name:         item.Name,
		Description:  item.Description,
		Price:        item.Price,
		Category:     item.Category,
		ImageURL:     item.ImageURL,
		Discount:     item.Discount,
		IsAvailable:  item.IsAvailable,
	}
}

func (mh *MenuHandler) toInput(req menuItemRequest) service.MenuItemInput {
	return service.MenuItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Discount:    req.Discount,
		IsAvailable: req.IsAvailable,
	}
}

// ListMenu returns the menu of a restaurant
// 200 — found; 404 — unknown restaurant.
func (mh *MenuHandler) ListMenu() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := mh.svc.ListForRestaurant(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]menuItemResponse, 0, len(items))
		for i := range items {
			resp = append(resp, toMenuItemResponse(&items[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// CreateMenuItem adds a menu item to a restaurant
// 201 — created; 400 — invalid input; 401 — not authenticated;
// 404 — unknown restaurant.
func (mh *MenuHandler) CreateMenuItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req menuItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		item, err := mh.svc.Create(r.Context(), chi.URLParam(r, "id"), mh.toInput(req))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMenuItemResponse(item))
	}
}

// UpdateMenuItem updates a menu item
// 200 — updated; 400 — invalid input; 401 — not authenticated;
// 404 — unknown item.
func (mh *MenuHandler) UpdateMenuItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req menuItemRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		item, err := mh.svc.Update(r.Context(), chi.URLParam(r, "id"), mh.toInput(req))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toMenuItemResponse(item))
	}
}

// DeleteMenuItem removes a menu item
// 204 — removed; 401 — not authenticated; 404 — unknown item.
func (mh *MenuHandler) DeleteMenuItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := mh.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
