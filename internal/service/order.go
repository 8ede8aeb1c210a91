package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// clients may round totals differently; disagreement beyond this is rejected
var totalTolerance = decimal.NewFromFloat(0.01)

const orderNumberCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// OrderRepository is interface for interacting with order-related data
type OrderRepository interface {
	// CreateOrder inserts new order
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	// GetOrderByID returns order by id
	GetOrderByID(ctx context.Context, id string) (*models.Order, error)
	// GetOrdersByStudent returns student orders, newest first
	GetOrdersByStudent(ctx context.Context, studentID string) ([]models.Order, error)
	// GetOrdersByRestaurant returns restaurant orders, newest first
	GetOrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error)
	// UpdateOrderStatus moves order between statuses with a CAS on the
	// current status
	UpdateOrderStatus(ctx context.Context, id, from, to string) error
}

// MenuReader resolves menu items referenced by an order
type MenuReader interface {
	GetMenuItemByID(ctx context.Context, id string) (*models.MenuItem, error)
}

// RestaurantReader resolves the restaurant an order is placed with and the
// restaurant owned by a transition caller
type RestaurantReader interface {
	GetRestaurantByID(ctx context.Context, id string) (*models.Restaurant, error)
	GetRestaurantByUserID(ctx context.Context, userID string) (*models.Restaurant, error)
}

// CreateOrderItem references a menu item in a create-order request
type CreateOrderItem struct {
	MenuItemID string
	Quantity   int
}

// CreateOrderRequest is input for OrderService.Create. TotalAmount is
// optional; when present it is cross-checked against the server-side total.
type CreateOrderRequest struct {
	StudentID       string
	RestaurantID    string
	Items           []CreateOrderItem
	DeliveryAddress string
	Instructions    string
	DeliveryFee     decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	TotalAmount     *decimal.Decimal
}

// OrderService implements the order lifecycle: creation with server-side
// total computation and status transitions against the allowed table.
type OrderService struct {
	repo        OrderRepository
	menu        MenuReader
	restaurants RestaurantReader
}

// NewOrderService creates new OrderService instance
func NewOrderService(repo OrderRepository, menu MenuReader, restaurants RestaurantReader) *OrderService {
	return &OrderService{
		repo:        repo,
		menu:        menu,
		restaurants: restaurants,
	}
}

// Create validates the request, snapshots menu items at their current listed
// prices, computes all monetary fields server-side and persists the order
// with status placed and payment status pending.
func (os *OrderService) Create(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, models.ValidationError{Field: "items", Message: "order must contain at least one item"}
	}
	if req.DeliveryAddress == "" {
		return nil, models.ValidationError{Field: "delivery_address", Message: "delivery address is required"}
	}
	if req.DeliveryFee.IsNegative() || req.Tax.IsNegative() || req.Discount.IsNegative() {
		return nil, models.ValidationError{Field: "total_amount", Message: "monetary fields must be non-negative"}
	}

	if _, err := os.restaurants.GetRestaurantByID(ctx, req.RestaurantID); err != nil {
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	subtotal := decimal.Zero

	for _, reqItem := range req.Items {
		if reqItem.Quantity <= 0 {
			return nil, models.ValidationError{Field: "items", Message: "item quantity must be positive"}
		}

		menuItem, err := os.menu.GetMenuItemByID(ctx, reqItem.MenuItemID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				return nil, models.ValidationError{Field: "items", Message: fmt.Sprintf("unknown menu item %s", reqItem.MenuItemID)}
			}
			return nil, err
		}
		if !menuItem.IsAvailable {
			return nil, models.ValidationError{Field: "items", Message: fmt.Sprintf("menu item %s is not available", menuItem.Name)}
		}
		if menuItem.RestaurantID != req.RestaurantID {
			return nil, models.ValidationError{Field: "items", Message: "all items must belong to the same restaurant"}
		}

		price := menuItem.EffectivePrice()
		items = append(items, models.OrderItem{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      price,
			Quantity:   reqItem.Quantity,
		})
		subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(reqItem.Quantity))))
	}

	total := subtotal.Add(req.DeliveryFee).Add(req.Tax).Sub(req.Discount)
	if total.IsNegative() {
		return nil, models.ValidationError{Field: "discount", Message: "discount exceeds order amount"}
	}

	// the server-side total is authoritative; a client-supplied one must
	// agree with it
	if req.TotalAmount != nil && req.TotalAmount.Sub(total).Abs().GreaterThan(totalTolerance) {
		return nil, models.ValidationError{
			Field:   "total_amount",
			Message: fmt.Sprintf("client total %s disagrees with computed total %s", req.TotalAmount, total),
		}
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		StudentID:       req.StudentID,
		RestaurantID:    req.RestaurantID,
		Status:          models.OrderStatusPlaced,
		PaymentStatus:   models.PaymentStatusPending,
		Items:           items,
		Subtotal:        subtotal,
		DeliveryFee:     req.DeliveryFee,
		Tax:             req.Tax,
		Discount:        req.Discount,
		TotalAmount:     total,
		DeliveryAddress: req.DeliveryAddress,
		Instructions:    req.Instructions,
	}

	// an order number collision is near-impossible but the store treats the
	// number as a hard unique constraint, so retry with a fresh one
	for attempt := 0; ; attempt++ {
		order.Number = newOrderNumber()
		created, err := os.repo.CreateOrder(ctx, order)
		if err != nil {
			if errors.Is(err, models.ErrConflictData) && attempt < 2 {
				continue
			}
			return nil, err
		}
		return created, nil
	}
}

// TransitionStatus moves the order to newStatus on behalf of actor. The
// owning restaurant may apply any table transition; the student who placed
// the order may only cancel it. Repeating an already-applied transition is a
// no-op success; an edge missing from the transition table is rejected; a
// lost race against a concurrent transition is a conflict.
func (os *OrderService) TransitionStatus(ctx context.Context, orderID, newStatus string, actor models.TokenPayload) (*models.Order, error) {
	order, err := os.repo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleStudent:
		if order.StudentID != actor.UserID || newStatus != models.OrderStatusCancelled {
			return nil, fmt.Errorf("%w: student may only cancel their own order", models.ErrPermissionDenied)
		}
	case models.RoleRestaurant:
		restaurant, err := os.restaurants.GetRestaurantByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, models.ErrDataNotFound) {
				return nil, fmt.Errorf("%w: user %s owns no restaurant", models.ErrPermissionDenied, actor.UserID)
			}
			return nil, err
		}
		if restaurant.ID != order.RestaurantID {
			return nil, fmt.Errorf("%w: order belongs to another restaurant", models.ErrPermissionDenied)
		}
	default:
		return nil, fmt.Errorf("%w: role %s may not change order status", models.ErrPermissionDenied, actor.Role)
	}

	// retried identical transition
	if order.Status == newStatus {
		return order, nil
	}

	if !models.CanTransition(order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", models.ErrInvalidTransition, order.Status, newStatus)
	}

	if err := os.repo.UpdateOrderStatus(ctx, orderID, order.Status, newStatus); err != nil {
		return nil, err
	}

	return os.repo.GetOrderByID(ctx, orderID)
}

// Get returns order by id
func (os *OrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return os.repo.GetOrderByID(ctx, orderID)
}

// ListStudentOrders returns orders placed by student
func (os *OrderService) ListStudentOrders(ctx context.Context, studentID string) ([]models.Order, error) {
	return os.repo.GetOrdersByStudent(ctx, studentID)
}

// ListRestaurantOrders returns orders fulfilled by restaurant
func (os *OrderService) ListRestaurantOrders(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return os.repo.GetOrdersByRestaurant(ctx, restaurantID)
}

// newOrderNumber generates a human-readable order number:
// ORD-<millisecond timestamp>-<5 uppercase random characters>
func newOrderNumber() string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = orderNumberCharset[rand.Intn(len(orderNumberCharset))]
	}
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), suffix)
}
