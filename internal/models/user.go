package models

import "time"

// user role
const (
	RoleStudent    = "student"
	RoleRestaurant = "restaurant"
	RoleDelivery   = "delivery"
)

// User is user entity. Role-specific profile data lives in the embedded
// variant structs; exactly one of them is set, keyed by Role.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Student      *StudentProfile
	Restaurant   *RestaurantProfile
	Delivery     *DeliveryProfile
	IsVerified   bool
	CreatedAt    time.Time
}

// StudentProfile carries student-only fields.
type StudentProfile struct {
	StudentID string
}

// RestaurantProfile carries restaurant-owner-only fields.
type RestaurantProfile struct {
	BusinessLicense string
	CampusLocation  string
}

// DeliveryProfile carries delivery-personnel-only fields.
type DeliveryProfile struct {
	VehicleNumber string
}

// TokenPayload is the authenticated identity carried in a bearer token.
type TokenPayload struct {
	UserID string
	Role   string
}
