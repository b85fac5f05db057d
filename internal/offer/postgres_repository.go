package offer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

// Create inserts an offer and its detail set in a single transaction.
// Either every detail is persisted or none are.
func (r *PostgresRepository) Create(ctx context.Context, o *Offer) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
		INSERT INTO offers (owner_id, title, description)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`,
		o.OwnerID, o.Title, o.Description,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting offer: %w", err)
	}

	for i := range o.Details {
		d := &o.Details[i]
		d.OfferID = o.ID
		err = tx.QueryRow(ctx, `
			INSERT INTO offer_details (offer_id, tier, title, price, delivery_time_in_days, revisions, features)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			d.OfferID, d.Tier, d.Title, d.Price, d.DeliveryTimeInDays, d.Revisions, d.Features,
		).Scan(&d.ID)
		if err != nil {
			return fmt.Errorf("inserting offer detail: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing offer: %w", err)
	}
	return nil
}

// GetByID retrieves a single offer with its details and owner display fields.
func (r *PostgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Offer, error) {
	query := `
		SELECT o.id, o.owner_id, u.username, u.first_name, u.last_name,
		       o.title, o.description, o.created_at, o.updated_at
		FROM offers o
		JOIN users u ON u.id = o.owner_id
		WHERE o.id = $1`

	var o Offer
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OwnerID, &o.OwnerUsername, &o.OwnerFirst, &o.OwnerLast,
		&o.Title, &o.Description, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying offer: %w", err)
	}

	details, err := r.loadDetails(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Details = details[o.ID]

	return &o, nil
}

// List retrieves a paginated, filtered list of offers with their details.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var conditions []string
	var args []any
	argIdx := 1

	if filter.CreatorID != nil {
		conditions = append(conditions, fmt.Sprintf("o.owner_id = $%d", argIdx))
		args = append(args, *filter.CreatorID)
		argIdx++
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM offer_details d WHERE d.offer_id = o.id AND d.price >= $%d)", argIdx))
		args = append(args, *filter.MinPrice)
		argIdx++
	}
	if filter.MaxDeliveryTime != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM offer_details d WHERE d.offer_id = o.id AND d.delivery_time_in_days <= $%d)", argIdx))
		args = append(args, *filter.MaxDeliveryTime)
		argIdx++
	}
	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(o.title ILIKE $%d OR o.description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM offers o %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting offers: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit

	dataQuery := fmt.Sprintf(`
		SELECT o.id, o.owner_id, u.username, u.first_name, u.last_name,
		       o.title, o.description, o.created_at, o.updated_at
		FROM offers o
		JOIN users u ON u.id = o.owner_id
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`, whereClause, orderClause(filter.Ordering), argIdx, argIdx+1)

	args = append(args, filter.Limit, offset)

	rows, err := r.pool.Query(ctx, dataQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("listing offers: %w", err)
	}
	defer rows.Close()

	offers := []Offer{}
	var ids []uuid.UUID
	for rows.Next() {
		var o Offer
		err := rows.Scan(
			&o.ID, &o.OwnerID, &o.OwnerUsername, &o.OwnerFirst, &o.OwnerLast,
			&o.Title, &o.Description, &o.CreatedAt, &o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning offer row: %w", err)
		}
		offers = append(offers, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating offer rows: %w", err)
	}

	if len(ids) > 0 {
		details, err := r.loadDetails(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range offers {
			offers[i].Details = details[offers[i].ID]
		}
	}

	return &ListResult{
		Offers: offers,
		Total:  total,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}, nil
}

// orderClause maps an ordering parameter to a stable ORDER BY expression.
// min_price sorts by the derived package minimum; id breaks ties.
func orderClause(ordering string) string {
	const minPrice = "(SELECT MIN(d.price) FROM offer_details d WHERE d.offer_id = o.id)"

	switch ordering {
	case "updated_at":
		return "o.updated_at ASC, o.id"
	case "min_price":
		return minPrice + " ASC, o.id"
	case "-min_price":
		return minPrice + " DESC, o.id"
	default:
		return "o.updated_at DESC, o.id"
	}
}

// Update applies the patch inside a transaction. Patched details replace the
// existing entry with the same tier label in place, keeping its id.
func (r *PostgresRepository) Update(ctx context.Context, id uuid.UUID, patch Patch) (*Offer, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var sets []string
	var args []any
	argIdx := 1

	if patch.Title != nil {
		sets = append(sets, fmt.Sprintf("title = $%d", argIdx))
		args = append(args, *patch.Title)
		argIdx++
	}
	if patch.Description != nil {
		sets = append(sets, fmt.Sprintf("description = $%d", argIdx))
		args = append(args, *patch.Description)
		argIdx++
	}
	sets = append(sets, "updated_at = NOW()")

	query := fmt.Sprintf("UPDATE offers SET %s WHERE id = $%d", strings.Join(sets, ", "), argIdx)
	args = append(args, id)

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("updating offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	for _, d := range patch.Details {
		tag, err := tx.Exec(ctx, `
			UPDATE offer_details
			SET title = $1, price = $2, delivery_time_in_days = $3, revisions = $4, features = $5
			WHERE offer_id = $6 AND tier = $7`,
			d.Title, d.Price, d.DeliveryTimeInDays, d.Revisions, d.Features, id, d.Tier,
		)
		if err != nil {
			return nil, fmt.Errorf("updating offer detail: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, ErrDetailNotFound
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing offer update: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Delete removes an offer; its details go with it via ON DELETE CASCADE.
func (r *PostgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM offers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting offer: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetDetailByID retrieves a single offer detail for standalone reads.
func (r *PostgresRepository) GetDetailByID(ctx context.Context, id uuid.UUID) (*Detail, error) {
	var d Detail
	err := r.pool.QueryRow(ctx, `
		SELECT id, offer_id, tier, title, price, delivery_time_in_days, revisions, features
		FROM offer_details
		WHERE id = $1`, id,
	).Scan(&d.ID, &d.OfferID, &d.Tier, &d.Title, &d.Price, &d.DeliveryTimeInDays, &d.Revisions, &d.Features)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDetailNotFound
		}
		return nil, fmt.Errorf("querying offer detail: %w", err)
	}
	return &d, nil
}

// CountAll returns the total number of offers.
func (r *PostgresRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM offers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting offers: %w", err)
	}
	return count, nil
}

// loadDetails fetches the details for a set of offers, keyed by offer id
// and ordered basic < standard < premium.
func (r *PostgresRepository) loadDetails(ctx context.Context, offerIDs []uuid.UUID) (map[uuid.UUID][]Detail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, offer_id, tier, title, price, delivery_time_in_days, revisions, features
		FROM offer_details
		WHERE offer_id = ANY($1)
		ORDER BY CASE tier WHEN 'basic' THEN 1 WHEN 'standard' THEN 2 ELSE 3 END`, offerIDs)
	if err != nil {
		return nil, fmt.Errorf("loading offer details: %w", err)
	}
	defer rows.Close()

	details := make(map[uuid.UUID][]Detail, len(offerIDs))
	for rows.Next() {
		var d Detail
		err := rows.Scan(&d.ID, &d.OfferID, &d.Tier, &d.Title, &d.Price, &d.DeliveryTimeInDays, &d.Revisions, &d.Features)
		if err != nil {
			return nil, fmt.Errorf("scanning offer detail row: %w", err)
		}
		details[d.OfferID] = append(details[d.OfferID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating offer detail rows: %w", err)
	}

	return details, nil
}
