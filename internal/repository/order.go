package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/campuseats/campuseats/internal/models"
	"github.com/campuseats/campuseats/internal/repository/postgres"
	"github.com/jackc/pgx/v5"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (id, number, student_id, restaurant_id, status, payment_status, items, subtotal, delivery_fee, tax, discount, total_amount, delivery_address, instructions)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
						RETURNING created_at, updated_at
`
	selectOrderColumns = `id, number, student_id, restaurant_id, status, payment_status, items, subtotal, delivery_fee, tax, discount, total_amount, platform_fee, restaurant_share, payment_intent_id, delivery_address, instructions, created_at, updated_at`

	selectOrderByIDQuery = `
						SELECT ` + selectOrderColumns + ` FROM orders
						WHERE id = $1
`
	selectOrdersByStudentQuery = `
						SELECT ` + selectOrderColumns + ` FROM orders
						WHERE student_id = $1
						ORDER BY created_at DESC
`
	selectOrdersByRestaurantQuery = `
						SELECT ` + selectOrderColumns + ` FROM orders
						WHERE restaurant_id = $1
						ORDER BY created_at DESC
`
	// compare-and-swap on the current status so racing transitions cannot
	// both win
	updateOrderStatusQuery = `
						UPDATE orders
						SET status = $1, updated_at = now()
						WHERE id = $2 AND status = $3
`
	updateOrderSplitQuery = `
						UPDATE orders
						SET platform_fee = $1, restaurant_share = $2, payment_intent_id = $3, updated_at = now()
						WHERE id = $4
`
	// compare-and-swap on payment_status for at-most-once finalization.
	// paid is terminal; a failed attempt may only be finalized again by the
	// same payment intent (the processor retries a declined intent in place)
	markOrderPaidQuery = `
						UPDATE orders
						SET payment_status = $1, payment_intent_id = $2, updated_at = now()
						WHERE id = $3 AND (payment_status = 'pending'
							OR (payment_status = 'failed' AND payment_intent_id = $2))
`
)

// OrderRepository is postgres-backed order store
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order. Order number uniqueness is enforced by the
// database as part of the insert itself.
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return nil, err
	}

	err = or.db.QueryRow(ctx, insertOrderQuery,
		order.ID, order.Number, order.StudentID, order.RestaurantID,
		order.Status, order.PaymentStatus, items,
		order.Subtotal, order.DeliveryFee, order.Tax, order.Discount, order.TotalAmount,
		order.DeliveryAddress, order.Instructions,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errCode := or.db.ErrorCode(err); errCode == pgErrUniqueViolationCode {
			return nil, models.ErrConflictData
		}
		return nil, err
	}

	return order, nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return or.scanOrder(or.db.QueryRow(ctx, selectOrderByIDQuery, id))
}

// GetOrdersByStudent returns student orders, newest first
func (or *OrderRepository) GetOrdersByStudent(ctx context.Context, studentID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByStudentQuery, studentID)
}

// GetOrdersByRestaurant returns restaurant orders, newest first
func (or *OrderRepository) GetOrdersByRestaurant(ctx context.Context, restaurantID string) ([]models.Order, error) {
	return or.queryOrders(ctx, selectOrdersByRestaurantQuery, restaurantID)
}

// UpdateOrderStatus moves order from status to newStatus. Returns
// ErrDataNotFound if the order does not exist, ErrConflictData if it exists
// but its status is no longer the expected one.
func (or *OrderRepository) UpdateOrderStatus(ctx context.Context, id, from, to string) error {
	cmd, err := or.db.Exec(ctx, updateOrderStatusQuery, to, id, from)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		if _, err := or.GetOrderByID(ctx, id); err != nil {
			return err
		}
		return models.ErrConflictData
	}

	return nil
}

// SetOrderSplit persists computed split amounts and the payment intent id
func (or *OrderRepository) SetOrderSplit(ctx context.Context, order *models.Order) error {
	cmd, err := or.db.Exec(ctx, updateOrderSplitQuery,
		order.PlatformFee, order.RestaurantShare, order.PaymentIntentID, order.ID)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// MarkOrderPaid finalizes payment status with at-most-once semantics.
// Returns ErrConflictData if the order is already paid, or failed with a
// different payment intent.
func (or *OrderRepository) MarkOrderPaid(ctx context.Context, id, intentID, status string) error {
	cmd, err := or.db.Exec(ctx, markOrderPaidQuery, status, intentID, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		if _, err := or.GetOrderByID(ctx, id); err != nil {
			return err
		}
		return models.ErrConflictData
	}

	return nil
}

func (or *OrderRepository) queryOrders(ctx context.Context, query, key string) ([]models.Order, error) {
	rows, err := or.db.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		order, err := or.scanOrder(rows)
		if err != nil {
			continue
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (or *OrderRepository) scanOrder(row pgx.Row) (*models.Order, error) {
	order := models.Order{}
	var items []byte

	err := row.Scan(&order.ID, &order.Number, &order.StudentID, &order.RestaurantID,
		&order.Status, &order.PaymentStatus, &items,
		&order.Subtotal, &order.DeliveryFee, &order.Tax, &order.Discount, &order.TotalAmount,
		&order.PlatformFee, &order.RestaurantShare, &order.PaymentIntentID,
		&order.DeliveryAddress, &order.Instructions, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, err
	}

	return &order, nil
}
