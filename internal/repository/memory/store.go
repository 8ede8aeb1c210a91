// Package memory provides a map-backed store satisfying the same contracts
// as the postgres repositories. Used for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/campuseats/campuseats/internal/models"
)

// Store holds all entities in process memory. A single RWMutex guards every
// map, so uniqueness checks happen atomically with the insert.
type Store struct {
	mu          sync.RWMutex
	users       map[string]*models.User
	emails      map[string]string
	restaurants map[string]*models.Restaurant
	menuItems   map[string]*models.MenuItem
	orders      map[string]*models.Order
	orderNums   map[string]string
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*models.User),
		emails:      make(map[string]string),
		restaurants: make(map[string]*models.Restaurant),
		menuItems:   make(map[string]*models.MenuItem),
		orders:      make(map[string]*models.Order),
		orderNums:   make(map[string]string),
	}
}

// CreateUser inserts new user, rejecting duplicate emails.
func (s *Store) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.emails[user.Email]; exists {
		return nil, models.ErrConflictData
	}

	u := *user
	u.CreatedAt = time.Now().UTC()
	s.users[u.ID] = &u
	s.emails[u.Email] = u.ID

	out := u
	return &out, nil
}

// GetUserByEmail returns user by email.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	u := *s.users[id]
	return &u, nil
}

// GetUserByID returns user by id.
func (s *Store) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	out := *u
	return &out, nil
}

// CreateRestaurant inserts new restaurant.
func (s *Store) CreateRestaurant(_ context.Context, r *models.Restaurant) (*models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.restaurants[cp.ID] = &cp

	out := cp
	return &out, nil
}

// GetRestaurantByID returns restaurant by id.
func (s *Store) GetRestaurantByID(_ context.Context, id string) (*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.restaurants[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	out := *r
	return &out, nil
}

// GetRestaurantByUserID returns restaurant owned by user.
func (s *Store) GetRestaurantByUserID(_ context.Context, userID string) (*models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.restaurants {
		if r.UserID == userID {
			out := *r
			return &out, nil
		}
	}
	return nil, models.ErrDataNotFound
}

// ListRestaurants returns active restaurants sorted by name.
func (s *Store) ListRestaurants(_ context.Context) ([]models.Restaurant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	restaurants := []models.Restaurant{}
	for _, r := range s.restaurants {
		if r.IsActive {
			restaurants = append(restaurants, *r)
		}
	}
	sort.Slice(restaurants, func(i, j int) bool { return restaurants[i].Name < restaurants[j].Name })
	return restaurants, nil
}

// UpdateRestaurant updates restaurant profile fields.
func (s *Store) UpdateRestaurant(_ context.Context, r *models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.restaurants[r.ID]
	if !ok {
		return models.ErrDataNotFound
	}
	cur.Name = r.Name
	cur.Description = r.Description
	cur.Cuisine = r.Cuisine
	cur.DeliveryTime = r.DeliveryTime
	cur.PriceForTwo = r.PriceForTwo
	cur.ImageURL = r.ImageURL
	cur.IsActive = r.IsActive
	return nil
}

// SetStripeAccount stores the Stripe account id and onboarding status.
func (s *Store) SetStripeAccount(_ context.Context, id, accountID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.restaurants[id]
	if !ok {
		return models.ErrDataNotFound
	}
	r.StripeAccountID = accountID
	r.AccountStatus = status
	return nil
}

// CreateMenuItem inserts new menu item.
func (s *Store) CreateMenuItem(_ context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *item
	s.menuItems[cp.ID] = &cp

	out := cp
	return &out, nil
}

// GetMenuItemByID returns menu item by id.
func (s *Store) GetMenuItemByID(_ context.Context, id string) (*models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.menuItems[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	out := *item
	return &out, nil
}

// GetMenuItemsByRestaurant returns all menu items of restaurant.
func (s *Store) GetMenuItemsByRestaurant(_ context.Context, restaurantID string) ([]models.MenuItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := []models.MenuItem{}
	for _, item := range s.menuItems {
		if item.RestaurantID == restaurantID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// UpdateMenuItem updates menu item.
func (s *Store) UpdateMenuItem(_ context.Context, item *models.MenuItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.menuItems[item.ID]
	if !ok {
		return models.ErrDataNotFound
	}
	cur.Name = item.Name
	cur.Description = item.Description
	cur.Price = item.Price
	cur.Category = item.Category
	cur.ImageURL = item.ImageURL
	cur.Discount = item.Discount
	cur.IsAvailable = item.IsAvailable
	return nil
}

// DeleteMenuItem removes menu item.
func (s *Store) DeleteMenuItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.menuItems[id]; !ok {
		return models.ErrDataNotFound
	}
	delete(s.menuItems, id)
	return nil
}

// CreateOrder inserts new order, rejecting duplicate order numbers.
func (s *Store) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orderNums[order.Number]; exists {
		return nil, models.ErrConflictData
	}

	cp := *order
	cp.Items = append([]models.OrderItem(nil), order.Items...)
	now := time.Now().UTC()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	s.orders[cp.ID] = &cp
	s.orderNums[cp.Number] = cp.ID

	out := cp
	out.Items = append([]models.OrderItem(nil), cp.Items...)
	order.CreatedAt = now
	order.UpdatedAt = now
	return &out, nil
}

// GetOrderByID returns order by id.
func (s *Store) GetOrderByID(_ context.Context, id string) (*models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, models.ErrDataNotFound
	}
	out := *order
	out.Items = append([]models.OrderItem(nil), order.Items...)
	return &out, nil
}

// GetOrdersByStudent returns student orders, newest first.
func (s *Store) GetOrdersByStudent(_ context.Context, studentID string) ([]models.Order, error) {
	return s.listOrders(func(o *models.Order) bool { return o.StudentID == studentID })
}

// GetOrdersByRestaurant returns restaurant orders, newest first.
func (s *Store) GetOrdersByRestaurant(_ context.Context, restaurantID string) ([]models.Order, error) {
	return s.listOrders(func(o *models.Order) bool { return o.RestaurantID == restaurantID })
}

// UpdateOrderStatus moves order from status to newStatus under the write
// lock, so racing transitions cannot both win.
func (s *Store) UpdateOrderStatus(_ context.Context, id, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	if order.Status != from {
		return models.ErrConflictData
	}
	order.Status = to
	order.UpdatedAt = time.Now().UTC()
	return nil
}

// SetOrderSplit persists computed split amounts and the payment intent id.
func (s *Store) SetOrderSplit(_ context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[o.ID]
	if !ok {
		return models.ErrDataNotFound
	}
	order.PlatformFee = o.PlatformFee
	order.RestaurantShare = o.RestaurantShare
	order.PaymentIntentID = o.PaymentIntentID
	order.UpdatedAt = time.Now().UTC()
	return nil
}

// MarkOrderPaid finalizes payment status with at-most-once semantics.
// paid is terminal; a failed attempt may only be finalized again by the
// same payment intent.
func (s *Store) MarkOrderPaid(_ context.Context, id, intentID, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.ErrDataNotFound
	}
	retriable := order.PaymentStatus == models.PaymentStatusPending ||
		(order.PaymentStatus == models.PaymentStatusFailed && order.PaymentIntentID == intentID)
	if !retriable {
		return models.ErrConflictData
	}
	order.PaymentStatus = status
	order.PaymentIntentID = intentID
	order.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Store) listOrders(match func(*models.Order) bool) ([]models.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := []models.Order{}
	for _, o := range s.orders {
		if match(o) {
			cp := *o
			cp.Items = append([]models.OrderItem(nil), o.Items...)
			orders = append(orders, cp)
		}
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}
