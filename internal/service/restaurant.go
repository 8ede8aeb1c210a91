package service

import (
	"context"

	"github.com/campuseats/campuseats/internal/models"
)

// RestaurantRepository is interface for interacting with restaurant data
type RestaurantRepository interface {
	// GetRestaurantByID returns restaurant by id
	GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
	// ListRestaurants returns active restaurants
	ListRestaurants(ctx context.Context) ([]models.Restaurant, error)
	// UpdateRestaurant updates restaurant profile fields
	UpdateRestaurant(ctx context.Context, r *models.Restaurant) error
}

// RestaurantUpdate carries the mutable restaurant profile fields
type RestaurantUpdate struct {
	Name         string
	Description  string
	Cuisine      string
	DeliveryTime string
	PriceForTwo  int
	ImageURL     string
	IsActive     bool
}

// RestaurantService implements the restaurant directory
type RestaurantService struct {
	repo RestaurantRepository
}

// NewRestaurantService creates new RestaurantService instance
func NewRestaurantService(repo RestaurantRepository) *RestaurantService {
	return &RestaurantService{repo: repo}
}

// List returns active restaurants
func (rs *RestaurantService) List(ctx context.Context) ([]models.Restaurant, error) {
	return rs.repo.ListRestaurants(ctx)
}

// Get returns restaurant by id
func (rs *RestaurantService) Get(ctx context.Context, id string) (*models.Restaurant, error) {
	return rs.repo.GetRestaurantByID(ctx, id)
}

// Update applies profile changes to restaurant
func (rs *RestaurantService) Update(ctx context.Context, id string, upd RestaurantUpdate) (*models.Restaurant, error) {
	if upd.Name == "" {
		return nil, models.ValidationError{Field: "name", Message: "name is required"}
	}
	if upd.PriceForTwo < 0 {
		return nil, models.ValidationError{Field: "price_for_two", Message: "price for two must be non-negative"}
	}

	restaurant, err := rs.repo.GetRestaurantByID(ctx, id)
	if err != nil {
		return nil, err
	}

	restaurant.Name = upd.Name
	restaurant.Description = upd.Description
	restaurant.Cuisine = upd.Cuisine
	restaurant.DeliveryTime = upd.DeliveryTime
	restaurant.PriceForTwo = upd.PriceForTwo
	restaurant.ImageURL = upd.ImageURL
	restaurant.IsActive = upd.IsActive

	if err := rs.repo.UpdateRestaurant(ctx, restaurant); err != nil {
		return nil, err
	}

	return restaurant, nil
}
