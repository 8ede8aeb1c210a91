package repository

import (
	"context"
	"errors"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertRestaurantQuery = `
						INSERT INTO restaurants (id, user_id, name, description, cuisine, rating, delivery_time, price_for_two, image_url, commission_rate, stripe_account_id, account_status, is_active)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
`
	selectRestaurantColumns = `id, user_id, name, description, cuisine, rating, delivery_time, price_for_two, image_url, commission_rate, stripe_account_id, account_status, is_active`

	selectRestaurantByIDQuery = `
						SELECT ` + selectRestaurantColumns + ` FROM restaurants
						WHERE id = $1
`
	selectRestaurantByUserIDQuery = `
						SELECT ` + selectRestaurantColumns + ` FROM restaurants
						WHERE user_id = $1
`
	selectActiveRestaurantsQuery = `
						SELECT ` + selectRestaurantColumns + ` FROM restaurants
						WHERE is_active
						ORDER BY name
`
	updateRestaurantQuery = `
						UPDATE restaurants
						SET name = $1, description = $2, cuisine = $3, delivery_time = $4, price_for_two = $5, image_url = $6, is_active = $7
						WHERE id = $8
`
	updateRestaurantAccountQuery = `
						UPDATE restaurants
						SET stripe_account_id = $1, account_status = $2
						WHERE id = $3
`
)

// RestaurantRepository is postgres-backed restaurant store
type RestaurantRepository struct {
	db *postgres.DB
}

// NewRestaurantRepository creates new RestaurantRepository instance
func NewRestaurantRepository(db *postgres.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// CreateRestaurant inserts new restaurant
func (rr *RestaurantRepository) CreateRestaurant(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error) {
	_, err := rr.db.Exec(ctx, insertRestaurantQuery,
		r.ID, r.UserID, r.Name, r.Description, r.Cuisine, r.Rating, r.DeliveryTime,
		r.PriceForTwo, r.ImageURL, r.CommissionRate, r.StripeAccountID, r.AccountStatus, r.IsActive)
	if err != nil {
		if errCode := rr.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return r, nil
}

// GetRestaurantByID returns restaurant by id
func (rr *RestaurantRepository) GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error) {
	return rr.scanRestaurant(rr.db.QueryRow(ctx, selectRestaurantByIDQuery, id))
}

// GetRestaurantByUserID returns restaurant owned by user
func (rr *RestaurantRepository) GetRestaurantByUserID(ctx context.Context, userID string) (*models.Restaurant, error) {
	return rr.scanRestaurant(rr.db.QueryRow(ctx, selectRestaurantByUserIDQuery, userID))
}

// ListRestaurants returns active restaurants
func (rr *RestaurantRepository) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	rows, err := rr.db.Query(ctx, selectActiveRestaurantsQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	restaurants := []models.Restaurant{}

	for rows.Next() {
		r := models.Restaurant{}
		err = rows.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.Cuisine, &r.Rating,
			&r.DeliveryTime, &r.PriceForTwo, &r.ImageURL, &r.CommissionRate,
			&r.StripeAccountID, &r.AccountStatus, &r.IsActive)
		if err != nil {
			continue
		}
		restaurants = append(restaurants, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return restaurants, nil
}

// UpdateRestaurant updates restaurant profile fields
func (rr *RestaurantRepository) UpdateRestaurant(ctx context.Context, r *models.Restaurant) error {
	cmd, err := rr.db.Exec(ctx, updateRestaurantQuery,
		r.Name, r.Description, r.Cuisine, r.DeliveryTime, r.PriceForTwo, r.ImageURL, r.IsActive, r.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// SetStripeAccount stores the Stripe account id and onboarding status
func (rr *RestaurantRepository) SetStripeAccount(ctx context.Context, id, accountID, status string) error {
	cmd, err := rr.db.Exec(ctx, updateRestaurantAccountQuery, accountID, status, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

func (rr *RestaurantRepository) scanRestaurant(row pgx.Row) (*models.Restaurant, error) {
	r := models.Restaurant{}
	err := row.Scan(&r.ID, &r.UserID, &r.Name, &r.Description, &r.Cuisine, &r.Rating,
		&r.DeliveryTime, &r.PriceForTwo, &r.ImageURL, &r.CommissionRate,
		&r.StripeAccountID, &r.AccountStatus, &r.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	return &r, nil
}
