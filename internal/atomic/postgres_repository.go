package atomic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const recordColumns = `id, collection, reference, data, created_by, archived, created_at, updated_at`

// PostgresRepository implements Repository using pgxpool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository backed by the given connection pool.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &PostgresRepository{pool: pool}
}

func scanRecord(row pgx.Row) (*Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Collection, &r.Reference, &r.Data, &r.CreatedBy,
		&r.Archived, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func data(rec *Record) []byte {
	if len(rec.Data) == 0 {
		return []byte("{}")
	}
	return rec.Data
}

// Create inserts a new record and fills its generated fields.
func (r *PostgresRepository) Create(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO atomic_records (collection, reference, data, created_by)
		VALUES ($1, $2, $3::jsonb, $4)
		RETURNING id, archived, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query, rec.Collection, rec.Reference, string(data(rec)), rec.CreatedBy).
		Scan(&rec.ID, &rec.Archived, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// Get retrieves a non-archived record.
func (r *PostgresRepository) Get(ctx context.Context, collection string, id uuid.UUID) (*Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM atomic_records
		WHERE collection = $1 AND id = $2 AND archived = FALSE`

	rec, err := scanRecord(r.pool.QueryRow(ctx, query, collection, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying record: %w", err)
	}
	return rec, nil
}

// List returns matching records ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]Record, error) {
	query := `SELECT ` + recordColumns + `
		FROM atomic_records
		WHERE collection = $1 AND archived = FALSE
		  AND ($2 = '' OR reference = $2)
		ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query, filter.Collection, filter.Reference)
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating record rows: %w", err)
	}
	return records, nil
}

// Replace overwrites the reference and data of an existing record.
func (r *PostgresRepository) Replace(ctx context.Context, rec *Record) error {
	query := `
		UPDATE atomic_records
		SET reference = $3, data = $4::jsonb, updated_at = NOW()
		WHERE collection = $1 AND id = $2 AND archived = FALSE
		RETURNING ` + recordColumns

	updated, err := scanRecord(r.pool.QueryRow(ctx, query, rec.Collection, rec.ID, rec.Reference, string(data(rec))))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating record: %w", err)
	}
	*rec = *updated
	return nil
}

// Archive flags a record as archived.
func (r *PostgresRepository) Archive(ctx context.Context, collection string, id uuid.UUID) error {
	query := `
		UPDATE atomic_records
		SET archived = TRUE, updated_at = NOW()
		WHERE collection = $1 AND id = $2 AND archived = FALSE`

	result, err := r.pool.Exec(ctx, query, collection, id)
	if err != nil {
		return fmt.Errorf("archiving record: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
