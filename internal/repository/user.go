package repository

import (
	"context"
	"errors"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const pgErrUniqueViolationCode = "23505"

const (
	insertUserQuery = `
						INSERT INTO users (id, email, password_hash, role, name, student_id, business_license, campus_location, vehicle_number, is_verified)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
						RETURNING created_at
`
	selectUserByEmailQuery = `
						SELECT id, email, password_hash, role, name, student_id, business_license, campus_location, vehicle_number, is_verified, created_at FROM users
						WHERE email = $1
`
	selectUserByIDQuery = `
						SELECT id, email, password_hash, role, name, student_id, business_license, campus_location, vehicle_number, is_verified, created_at FROM users
						WHERE id = $1
`
)

// UserRepository is postgres-backed user store
type UserRepository struct {
	db *postgres.DB
}

// NewUserRepository creates new UserRepository instance
func NewUserRepository(db *postgres.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts new user. Email uniqueness is enforced by the database
// as part of the insert itself.
func (ur *UserRepository) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	var studentID, license, location, vehicle *string
	if user.Student != nil {
		studentID = &user.Student.StudentID
	}
	if user.Restaurant != nil {
		license = &user.Restaurant.BusinessLicense
		location = &user.Restaurant.CampusLocation
	}
	if user.Delivery != nil {
		vehicle = &user.Delivery.VehicleNumber
	}

	err := ur.db.QueryRow(ctx, insertUserQuery,
		user.ID, user.Email, user.PasswordHash, user.Role, user.Name,
		studentID, license, location, vehicle, user.IsVerified,
	).Scan(&user.CreatedAt)
	if err != nil {
		if errCode := ur.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return user, nil
}

// GetUserByEmail returns user by email
func (ur *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return ur.scanUser(ur.db.QueryRow(ctx, selectUserByEmailQuery, email))
}

// GetUserByID returns user by id
func (ur *UserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return ur.scanUser(ur.db.QueryRow(ctx, selectUserByIDQuery, id))
}

func (ur *UserRepository) scanUser(row pgx.Row) (*models.User, error) {
	user := models.User{}
	var studentID, license, location, vehicle *string

	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.Name,
		&studentID, &license, &location, &vehicle, &user.IsVerified, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	switch user.Role {
	case models.RoleStudent:
		user.Student = &models.StudentProfile{}
		if studentID != nil {
			user.Student.StudentID = *studentID
		}
	case models.RoleRestaurant:
		user.Restaurant = &models.RestaurantProfile{}
		if license != nil {
			user.Restaurant.BusinessLicense = *license
		}
		if location != nil {
			user.Restaurant.CampusLocation = *location
		}
	case models.RoleDelivery:
		user.Delivery = &models.DeliveryProfile{}
		if vehicle != nil {
			user.Delivery.VehicleNumber = *vehicle
		}
	}

	return &user, nil
}
