package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/patrickmn/go-cache"
)

// SchemaInspector answers column existence questions from
// information_schema. Answers are cached for ttl; failures are not cached.
type SchemaInspector struct {
	db    *sqlx.DB
	cache *cache.Cache
}

func NewSchemaInspector(db *sqlx.DB, ttl time.Duration) *SchemaInspector {
	return &SchemaInspector{
		db:    db,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (s *SchemaInspector) HasColumn(ctx context.Context, table, column string) (bool, error) {
	key := table + "." + column
	if v, ok := s.cache.Get(key); ok {
		return v.(bool), nil
	}

	var exists bool
	err := s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.columns
			WHERE table_schema = current_schema()
			  AND table_name = $1
			  AND column_name = $2
		)`, table, column)
	if err != nil {
		return false, fmt.Errorf("failed to inspect %s: %w", key, err)
	}

	s.cache.SetDefault(key, exists)
	return exists, nil
}
