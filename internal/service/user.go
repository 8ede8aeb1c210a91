package service

import (
	"context"
	"errors"
	"strings"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is interface for interacting with user-related data
type UserRepository interface {
	// CreateUser inserts new user
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	// GetUserByEmail returns user by email
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID returns user by id
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// RestaurantWriter creates the restaurant profile during restaurant signup
type RestaurantWriter interface {
	CreateRestaurant(ctx context.Context, r *models.Restaurant) (*models.Restaurant, error)
	GetRestaurantByUserID(ctx context.Context, userID string) (*models.Restaurant, error)
}

// StudentSignup is input for RegisterStudent
type StudentSignup struct {
	Email     string
	Password  string
	Name      string
	StudentID string
}

// RestaurantSignup is input for RegisterRestaurant
type RestaurantSignup struct {
	Email           string
	Password        string
	Name            string
	BusinessLicense string
	CampusLocation  string
	Cuisine         string
}

// UserService implements registration and authentication
type UserService struct {
	repo        UserRepository
	restaurants RestaurantWriter
}

// NewUserService creates new UserService instance
func NewUserService(repo UserRepository, restaurants RestaurantWriter) *UserService {
	return &UserService{repo: repo, restaurants: restaurants}
}

// RegisterStudent creates a student account
func (us *UserService) RegisterStudent(ctx context.Context, req StudentSignup) (*models.User, error) {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, err
	}
	if req.StudentID == "" {
		return nil, models.ValidationError{Field: "student_id", Message: "student id is required"}
	}
	if req.Name == "" {
		return nil, models.ValidationError{Field: "name", Message: "name is required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		Name:         req.Name,
		Student:      &models.StudentProfile{StudentID: req.StudentID},
	}

	return us.repo.CreateUser(ctx, user)
}

// RegisterRestaurant creates a restaurant-owner account along with its
// restaurant profile.
func (us *UserService) RegisterRestaurant(ctx context.Context, req RestaurantSignup) (*models.User, *models.Restaurant, error) {
	if err := validateCredentials(req.Email, req.Password); err != nil {
		return nil, nil, err
	}
	if req.BusinessLicense == "" {
		return nil, nil, models.ValidationError{Field: "business_license", Message: "business license is required"}
	}
	if req.CampusLocation == "" {
		return nil, nil, models.ValidationError{Field: "campus_location", Message: "campus location is required"}
	}
	if req.Name == "" {
		return nil, nil, models.ValidationError{Field: "name", Message: "name is required"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.RoleRestaurant,
		Name:         req.Name,
		Restaurant: &models.RestaurantProfile{
			BusinessLicense: req.BusinessLicense,
			CampusLocation:  req.CampusLocation,
		},
	}

	user, err = us.repo.CreateUser(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	cuisine := req.Cuisine
	if cuisine == "" {
		cuisine = "Various"
	}

	restaurant, err := us.restaurants.CreateRestaurant(ctx, &models.Restaurant{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		Name:           user.Name,
		Cuisine:        cuisine,
		CommissionRate: models.DefaultCommissionRate,
		AccountStatus:  models.AccountStatusPending,
		IsActive:       true,
	})
	if err != nil {
		return nil, nil, err
	}

	return user, restaurant, nil
}

// Login authenticates a user by email and password
func (us *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := us.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return nil, models.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	return user, nil
}

// GetRestaurantForUser returns the restaurant profile owned by user, if any
func (us *UserService) GetRestaurantForUser(ctx context.Context, userID string) (*models.Restaurant, error) {
	return us.restaurants.GetRestaurantByUserID(ctx, userID)
}

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return models.ValidationError{Field: "email", Message: "valid email is required"}
	}
	if len(password) < 6 {
		return models.ValidationError{Field: "password", Message: "password must be at least 6 characters"}
	}
	return nil
}
