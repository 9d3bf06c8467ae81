package postgres

import (
	"context"
	"slices"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

// MissingSchemas returns the requested schema names that do not exist in the
// connected database, in request order.
func (p *Adapter) MissingSchemas(ctx context.Context, schemas []string) ([]string, error) {
	query := p.qb.Select("nspname::text").
		From("pg_catalog.pg_namespace").
		Where(squirrel.Eq{"nspname": schemas})

	found, err := collect(ctx, p, query, func(rows pgx.Rows) (string, error) {
		var name string
		err := rows.Scan(&name)
		return name, err
	})
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, name := range schemas {
		if !slices.Contains(found, name) {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
