package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
)

type RestaurantService interface {
	List(ctx context.Context) ([]models.Restaurant, error)
	Get(ctx context.Context, id string) (*models.Restaurant, error)
	Update(ctx context.Context, id string, upd service.RestaurantUpdate) (*models.Restaurant, error)
}

// RestaurantHandler represents HTTP handler for restaurant-related requests
type RestaurantHandler struct {
	svc RestaurantService
}

// NewRestaurantHandler creates new RestaurantHandler instance
func NewRestaurantHandler(svc RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{svc: svc}
}

type restaurantResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description"`
	Cuisine       string `json:"cuisine"`
	Rating        string `json:"rating"`
	DeliveryTime  string `json:"delivery_time"`
	PriceForTwo   int    `json:"price_for_two"`
	ImageURL      string `json:"image_url"`
	AccountStatus string `json:"account_status"`
	IsActive      bool   `json:"is_active"`
}

type restaurantUpdateRequest struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Cuisine      string `json:"cuisine"`
	DeliveryTime string `json:"delivery_time"`
	PriceForTwo  int    `json:"price_for_two"`
	ImageURL     string `json:"image_url"`
	IsActive     bool   `json:"is_active"`
}

func toRestaurantResponse(r *models.Restaurant) restaurantResponse {
	return restaurantResponse{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		Cuisine:       r.Cuisine,
		Rating:        r.Rating.String(),
		DeliveryTime:  r.DeliveryTime,
		PriceForTwo:   r.PriceForTwo,
		ImageURL:      r.ImageURL,
		AccountStatus: r.AccountStatus,
		IsActive:      r.IsActive,
	}
}

// ListRestaurants returns active restaurants
func (rh *RestaurantHandler) ListRestaurants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurants, err := rh.svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		resp := make([]restaurantResponse, 0, len(restaurants))
		for i := range restaurants {
			resp = append(resp, toRestaurantResponse(&restaurants[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// GetRestaurant returns one restaurant
// 200 — found; 404 — unknown restaurant.
func (rh *RestaurantHandler) GetRestaurant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		restaurant, err := rh.svc.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
	}
}

// UpdateRestaurant updates a restaurant profile
// 200 — updated; 400 — invalid input; 401 — not authenticated;
// 404 — unknown restaurant.
func (rh *RestaurantHandler) UpdateRestaurant() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := getAuthPayload(r.Context(), authPayloadKey); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req restaurantUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		restaurant, err := rh.svc.Update(r.Context(), chi.URLParam(r, "id"), service.RestaurantUpdate{
			Name:         req.Name,
			Description:  req.Description,
			Cuisine:      req.Cuisine,
			DeliveryTime: req.DeliveryTime,
			PriceForTwo:  req.PriceForTwo,
			ImageURL:     req.ImageURL,
			IsActive:     req.IsActive,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRestaurantResponse(restaurant))
	}
}
