package repository

import (
	"context"
	"errors"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertMenuItemQuery = `
						INSERT INTO menu_items (id, restaurant_id, name, description, price, category, image_url, discount, is_available)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	selectMenuItemByIDQuery = `
						SELECT id, restaurant_id, name, description, price, category, image_url, discount, is_available FROM menu_items
						WHERE id = $1
`
	selectMenuItemsByRestaurantQuery = `
						SELECT id, restaurant_id, name, description, price, category, image_url, discount, is_available FROM menu_items
						WHERE restaurant_id = $1
						ORDER BY category, name
`
	updateMenuItemQuery = `
						UPDATE menu_items
						SET name = $1, description = $2, price = $3, category = $4, image_url = $5, discount = $6, is_available = $7
						WHERE id = $8
`
	deleteMenuItemQuery = `
						DELETE FROM menu_items
						WHERE id = $1
`
)

// MenuRepository is postgres-backed menu item store
type MenuRepository struct {
	db *postgres.DB
}

// NewMenuRepository creates new MenuRepository instance
func NewMenuRepository(db *postgres.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// CreateMenuItem inserts new menu item
func (mr *MenuRepository) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	_, err := mr.db.Exec(ctx, insertMenuItemQuery,
		item.ID, item.RestaurantID, item.Name, item.Description, item.Price,
		item.Category, item.ImageURL, item.Discount, item.IsAvailable)
	if err != nil {
		return nil, err
	}

	return item, nil
}

// GetMenuItemByID returns menu item by id
func (mr *MenuRepository) GetMenuItemByID(ctx context.Context, id string) (*models.MenuItem, error) {
	item := models.MenuItem{}
	err := mr.db.QueryRow(ctx, selectMenuItemByIDQuery, id).Scan(
		&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
		&item.Category, &item.ImageURL, &item.Discount, &item.IsAvailable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &item, nil
}

// GetMenuItemsByRestaurant returns all menu items of restaurant
func (mr *MenuRepository) GetMenuItemsByRestaurant(ctx context.Context, restaurantID string) ([]models.MenuItem, error) {
	rows, err := mr.db.Query(ctx, selectMenuItemsByRestaurantQuery, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}

	for rows.Next() {
		item := models.MenuItem{}
		err = rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &item.Description, &item.Price,
			&item.Category, &item.ImageURL, &item.Discount, &item.IsAvailable)
		if err != nil {
			continue
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// UpdateMenuItem updates menu item
func (mr *MenuRepository) UpdateMenuItem(ctx context.Context, item *models.MenuItem) error {
	cmd, err := mr.db.Exec(ctx, updateMenuItemQuery,
		item.Name, item.Description, item.Price, item.Category, item.ImageURL,
		item.Discount, item.IsAvailable, item.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// DeleteMenuItem removes menu item
func (mr *MenuRepository) DeleteMenuItem(ctx context.Context, id string) error {
	cmd, err := mr.db.Exec(ctx, deleteMenuItemQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}
