package service

import (
	"context"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MenuRepository is interface for interacting with menu item data
type MenuRepository interface {
	// CreateMenuItem inserts new menu item
	CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	// GetMenuItemByID returns menu item by id
	GetMenuItemByID(ctx context.Context, id string) (*models.MenuItem, error)
	// GetMenuItemsByRestaurant returns all menu items of restaurant
	GetMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error)
	// UpdateMenuItem updates menu item
	UpdateMenuItem(ctx context.Context, item *models.MenuItem) error
	// DeleteMenuItem removes menu item
	DeleteMenuItem(ctx context.Context, id string) error
}

// MenuItemInput carries menu item fields for create and update
type MenuItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Discount    int
	IsAvailable bool
}

// MenuService implements restaurant menu management
type MenuService struct {
	repo        MenuRepository
	restaurants RestaurantReader
}

// NewMenuService creates new MenuService instance
func NewMenuService(repo MenuRepository, restaurants RestaurantReader) *MenuService {
	return &MenuService{repo: repo, restaurants: restaurants}
}

// ListForRestaurant returns all menu items of restaurant
func (ms *MenuService) ListForRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	if _, err := ms.restaurants.GetRestaurantByID(ctx, restaurantID); err != nil {
		return nil, err
	}
	return ms.repo.GetMenuItemsByRestaurant(ctx, restaurantID)
}

// Create adds a menu item to restaurant
func (ms *MenuService) Create(ctx context.Context, restaurantID string, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItem(in); err != nil {
		return nil, err
	}
	if _, err := ms.restaurants.GetRestaurantByID(ctx, restaurantID); err != nil {
		return nil, err
	}

	return ms.repo.CreateMenuItem(ctx, &models.MenuItem{
		ID:           uuid.NewString(),
		RestaurantID: restaurantID,
		Name:         in.Name,
		Description:  in.Description,
		Price:        in.Price,
		Category:     in.Category,
		ImageURL:     in.ImageURL,
		Discount:     in.Discount,
		IsAvailable:  in.IsAvailable,
	})
}

// Update applies changes to menu item
func (ms *MenuService) Update(ctx context.Context, id string, in MenuItemInput) (*models.MenuItem, error) {
	if err := validateMenuItem(in); err != nil {
		return nil, err
	}

	item, err := ms.repo.GetMenuItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item.Name = in.Name
	item.Description = in.Description
	item.Price = in.Price
	item.Category = in.Category
	item.ImageURL = in.ImageURL
	item.Discount = in.Discount
	item.IsAvailable = in.IsAvailable

	if err := ms.repo.UpdateMenuItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// Delete removes menu item
func (ms *MenuService) Delete(ctx context.Context, id string) error {
	return ms.repo.DeleteMenuItem(ctx, id)
}

func validateMenuItem(in MenuItemInput) error {
	if in.Name == "" {
		return models.ValidationError{Field: "name", Message: "name is required"}
	}
	if in.Price.IsNegative() {
		return models.ValidationError{Field: "price", Message: "price must be non-negative"}
	}
	if in.Discount < 0 || in.Discount > 100 {
		return models.ValidationError{Field: "discount", Message: "discount must be between 0 and 100"}
	}
	return nil
}
