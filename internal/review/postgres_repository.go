package review

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, business_user_id, reviewer_id, rating, description, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new review. The (business_user_id, reviewer_id) unique
// constraint maps to ErrDuplicateReview, which makes concurrent duplicate
// attempts race-safe without an application-level lock.
func (r *PostgresRepository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (business_user_id, reviewer_id, rating, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, rv.BusinessUserID, rv.ReviewerID, rv.Rating, rv.Description).
		Scan(&rv.ID, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateReview
		}
		return fmt.Errorf("inserting review: %w", err)
	}

	return nil
}

// GetByID retrieves a single review by its UUID.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	var rv Review
	if err := scanReview(r.pool.QueryRow(ctx, query, id), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying review: %w", err)
	}
	return &rv, nil
}

// List retrieves reviews matching the filter.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Review, error) {
	var conditions []string
	var args []any
	argIdx := 1

	if filter.BusinessUserID != nil {
		conditions = append(conditions, fmt.Sprintf("business_user_id = $%d", argIdx))
		args = append(args, *filter.BusinessUserID)
		argIdx++
	}
	if filter.ReviewerID != nil {
		conditions = append(conditions, fmt.Sprintf("reviewer_id = $%d", argIdx))
		args = append(args, *filter.ReviewerID)
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews %s ORDER BY %s`,
		reviewColumns, whereClause, reviewOrderClause(filter.Ordering))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var rv Review
		if err := scanReview(rows, &rv); err != nil {
			return nil, fmt.Errorf("scanning review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review rows: %w", err)
	}

	return reviews, nil
}

func reviewOrderClause(ordering string) string {
	switch ordering {
	case "updated_at":
		return "updated_at ASC, id"
	case "-updated_at":
		return "updated_at DESC, id"
	case "rating":
		return "rating ASC, id"
	case "-rating":
		return "rating DESC, id"
	default:
		return "created_at DESC, id"
	}
}

// Update applies non-nil patch fields and returns the updated record.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Review, error) {
	var sets []string
	var args []any
	argIdx := 1

	if patch.Rating != nil {
		sets = append(sets, fmt.Sprintf("rating = $%d", argIdx))
		args = append(args, *patch.Rating)
		argIdx++
	}
	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *patch.Description)
		argIdx++
	}

	if len(sets) == 0 {
		return r.GetByID(ctx, id)
	}

	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf(`
		UPDATE reviews SET %s
		WHERE id = $%d
		RETURNING %s`, strings.Join(sets, ", "), argIdx, reviewColumns)
	args = append(args, id)

	var rv Review
	if err := scanReview(r.pool.QueryRow(ctx, query, args...), &rv); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating review: %w", err)
	}
	return &rv, nil
}

// Delete permanently removes a review.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountAll returns the total number of reviews.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting reviews: %w", err)
	}
	return count, nil
}

// AverageRating returns the mean rating and count across all reviews.
func (r *PostgresRepository) AverageRating(ctx context.Context) (float64, int, error) {
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM reviews`).
		Scan(&avg, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("averaging ratings: %w", err)
	}
	return avg, count, nil
}

func scanReview(row pgx.Row, rv *Review) error {
	return row.Scan(
		&rv.ID, &rv.BusinessUserID, &rv.ReviewerID, &rv.Rating,
		&rv.Description, &rv.CreatedAt, &rv.UpdatedAt,
	)
}
