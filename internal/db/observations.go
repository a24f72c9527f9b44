package db

import (
	"context"
	"fmt"

	"github.com/jonathan/appycrew-ocr/internal/learning"
	"github.com/jonathan/appycrew-ocr/internal/types"
)

const observationsSchema = `
CREATE TABLE IF NOT EXISTS field_observations (
	id          UUID PRIMARY KEY,
	site        TEXT NOT NULL DEFAULT '',
	label       TEXT NOT NULL,
	field_key   TEXT NOT NULL,
	value       TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS field_observations_site_created_idx
	ON field_observations (site, created_at DESC);
`

// EnsureSchema creates the tables this package needs if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, observationsSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Record stores an accepted label/key pairing. Implements learning.Store.
func (db *DB) Record(ctx context.Context, obs learning.Observation) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO field_observations (id, site, label, field_key, value, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		obs.ID, obs.Site, obs.Label, string(obs.Key), obs.Value, obs.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record observation: %w", err)
	}
	return nil
}

// Recent returns a site's newest observations. An empty site returns every site's.
// Implements learning.Store.
func (db *DB) Recent(ctx context.Context, site string, limit int) ([]learning.Observation, error) {
	if limit <= 0 {
		limit = learning.DefaultCapacity
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, site, label, field_key, value, created_at
		 FROM field_observations
		 WHERE $1 = '' OR lower(site) = lower($1)
		 ORDER BY created_at DESC
		 LIMIT $2`,
		site, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []learning.Observation
	for rows.Next() {
		var o learning.Observation
		var key string
		if err := rows.Scan(&o.ID, &o.Site, &o.Label, &key, &o.Value, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.Key = types.Key(key)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}
	return out, nil
}

// Prune deletes all but the newest keep observations of a site.
func (db *DB) Prune(ctx context.Context, site string, keep int) (int64, error) {
	tag, err := db.pool.Exec(ctx,
		`DELETE FROM field_observations
		 WHERE site = $1 AND id NOT IN (
			SELECT id FROM field_observations WHERE site = $1 ORDER BY created_at DESC LIMIT $2
		 )`,
		site, keep,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune observations: %w", err)
	}
	return tag.RowsAffected(), nil
}

var _ learning.Store = (*DB)(nil)
