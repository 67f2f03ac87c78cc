package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velvetree/listing-checkout/internal/metadata"
)

const (
	getFlagSQL = `SELECT EXISTS (
		SELECT 1 FROM entity_meta WHERE entity_id = $1 AND meta_key = $2)`

	// Set-once: the insert only happens while no row with this key exists
	// for the entity. Safe under per-entity write serialization; there is
	// no unique constraint because append-only keys share the table.
	setFlagOnceSQL = `INSERT INTO entity_meta (entity_id, meta_key, meta_value)
		SELECT $1, $2, 'yes'
		WHERE NOT EXISTS (
			SELECT 1 FROM entity_meta WHERE entity_id = $1 AND meta_key = $2)`

	appendValueSQL = `INSERT INTO entity_meta (entity_id, meta_key, meta_value)
		VALUES ($1, $2, $3)`

	valuesSQL = `SELECT meta_value FROM entity_meta
		WHERE entity_id = $1 AND meta_key = $2 ORDER BY id`
)

var _ metadata.Repository = (*MetadataRepository)(nil)

// MetadataRepository implements metadata.Repository backed by PostgreSQL.
type MetadataRepository struct {
	pool *pgxpool.Pool
}

// NewMetadataRepository returns a MetadataRepository that uses the given pool.
func NewMetadataRepository(pool *pgxpool.Pool) *MetadataRepository {
	return &MetadataRepository{pool: pool}
}

// GetFlag reports whether the flag key is present for the entity.
func (r *MetadataRepository) GetFlag(ctx context.Context, entityID, key string) (bool, error) {
	var present bool
	err := r.pool.QueryRow(ctx, getFlagSQL, entityID, key).Scan(&present)
	if err != nil {
		return false, fmt.Errorf("reading flag %q for %q: %w", key, entityID, err)
	}
	return present, nil
}

// SetFlagOnce writes the flag unless it already exists for the entity.
func (r *MetadataRepository) SetFlagOnce(ctx context.Context, entityID, key string) error {
	_, err := r.pool.Exec(ctx, setFlagOnceSQL, entityID, key)
	if err != nil {
		return fmt.Errorf("setting flag %q for %q: %w", key, entityID, err)
	}
	return nil
}

// AppendValue adds another non-unique value for key on the entity.
func (r *MetadataRepository) AppendValue(ctx context.Context, entityID, key, value string) error {
	_, err := r.pool.Exec(ctx, appendValueSQL, entityID, key, value)
	if err != nil {
		return fmt.Errorf("appending %q for %q: %w", key, entityID, err)
	}
	return nil
}

// Values returns all accumulated values for key on the entity.
func (r *MetadataRepository) Values(ctx context.Context, entityID, key string) ([]string, error) {
	rows, err := r.pool.Query(ctx, valuesSQL, entityID, key)
	if err != nil {
		return nil, fmt.Errorf("reading values of %q for %q: %w", key, entityID, err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (string, error) {
		var v string
		err := row.Scan(&v)
		return v, err
	})
}
