package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const orderColumns = `id, customer_id, business_user_id, offer_detail_id, title, tier,
	       price, delivery_time_in_days, revisions, features, status, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new order record with its package snapshot.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (customer_id, business_user_id, offer_detail_id, title, tier,
		                    price, delivery_time_in_days, revisions, features, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		o.CustomerID, o.BusinessUserID, o.OfferDetailID, o.Title, o.Tier,
		o.Price, o.DeliveryTimeInDays, o.Revisions, o.Features, o.Status,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting order: %w", err)
	}

	return nil
}

// GetByID retrieves a single order by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	query := fmt.Sprintf(`SELECT %s FROM orders WHERE id = $1`, orderColumns)

	var o Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying order: %w", err)
	}
	return &o, nil
}

// ListByParticipant retrieves orders where the user is the customer or the
// business user, newest first.
func (r *PostgresRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM orders
		WHERE customer_id = $1 OR business_user_id = $1
		ORDER BY created_at DESC, id`, orderColumns)

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets the order's status and returns the updated record.
// The transition itself must already have been checked by the caller.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*Order, error) {
	query := fmt.Sprintf(`
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING %s`, orderColumns)

	var o Order
	if err := scanOrder(r.pool.QueryRow(ctx, query, status, id), &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	return &o, nil
}

// Delete permanently removes an order.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus counts a business user's orders in the given status.
func (r *PostgresRepository) CountByStatus(ctx context.Context, businessUserID uuid.UUID, status Status) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE business_user_id = $1 AND status = $2`,
		businessUserID, status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting orders: %w", err)
	}
	return count, nil
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(
		&o.ID, &o.CustomerID, &o.BusinessUserID, &o.OfferDetailID, &o.Title, &o.Tier,
		&o.Price, &o.DeliveryTimeInDays, &o.Revisions, &o.Features, &o.Status,
		&o.CreatedAt, &o.UpdatedAt,
	)
}
