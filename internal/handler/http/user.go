package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/service"
)

type UserService interface {
	RegisterStudent(ctx context.Context, req service.StudentSignup) (*models.User, error)
	RegisterRestaurant(ctx context.Context, req service.RestaurantSignup) (*models.User, *models.Restaurant, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	GetRestaurantForUser(ctx context.Context, userID string) (*models.Restaurant, error)
}

// UserHandler represents HTTP handler for auth-related requests
type UserHandler struct {
	svc   UserService
	token service.TokenService
}

// NewUserHandler creates new UserHandler instance
func NewUserHandler(svc UserService, token service.TokenService) *UserHandler {
	return &UserHandler{svc: svc, token: token}
}

type studentSignupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
}

type restaurantSignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	Name            string `json:"name"`
	BusinessLicense string `json:"business_license"`
	CampusLocation  string `json:"campus_location"`
	Cuisine         string `json:"cuisine"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}

type authResponse struct {
	Token      string              `json:"token"`
	User       userResponse        `json:"user"`
	Restaurant *restaurantResponse `json:"restaurant,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

// StudentSignup registers a student account
// 201 — account created;
// 400 — invalid input;
// 409 — email already registered;
// 500 — internal error.
func (uh *UserHandler) StudentSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req studentSignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, err := uh.svc.RegisterStudent(r.Context(), service.StudentSignup{
			Email:     req.Email,
			Password:  req.Password,
			Name:      req.Name,
			StudentID: req.StudentID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		token, err := uh.token.CreateToken(user)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user)})
	}
}

// RestaurantSignup registers a restaurant-owner account and its restaurant
// profile
// 201 — account created;
// 400 — invalid input;
// 409 — email already registered;
// 500 — internal error.
func (uh *UserHandler) RestaurantSignup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req restaurantSignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, restaurant, err := uh.svc.RegisterRestaurant(r.Context(), service.RestaurantSignup{
			Email:           req.Email,
			Password:        req.Password,
			Name:            req.Name,
			BusinessLicense: req.BusinessLicense,
			CampusLocation:  req.CampusLocation,
			Cuisine:         req.Cuisine,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		token, err := uh.token.CreateToken(user)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := toRestaurantResponse(restaurant)
		writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(user), Restaurant: &resp})
	}
}

// Login authenticates a user
// 200 — authenticated;
// 400 — invalid request body;
// 401 — invalid email or password;
// 500 — internal error.
func (uh *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		user, err := uh.svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}

		token, err := uh.token.CreateToken(user)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := authResponse{Token: token, User: toUserResponse(user)}
		if user.Role == models.RoleRestaurant {
			if restaurant, err := uh.svc.GetRestaurantForUser(r.Context(), user.ID); err == nil {
				rr := toRestaurantResponse(restaurant)
				resp.Restaurant = &rr
			}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}
