package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/Rana718/pgdiagram/internal/schema"
	"github.com/Rana718/pgdiagram/internal/types"
)

// Ordered column names of a constraint or index key, resolved from attnums.
const (
	conkeyColumns = `ARRAY(SELECT a.attname::text FROM unnest(con.conkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = con.conrelid AND a.attnum = k.attnum ORDER BY k.ord)`
	confkeyColumns = `ARRAY(SELECT a.attname::text FROM unnest(con.confkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = con.confrelid AND a.attnum = k.attnum ORDER BY k.ord)`
	indkeyColumns = `ARRAY(SELECT a.attname::text FROM unnest(i.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		JOIN pg_catalog.pg_attribute a ON a.attrelid = i.indrelid AND a.attnum = k.attnum ORDER BY k.ord)`
)

// PullSchema reads tables, columns and key constraints of the given schemas
// from the catalog and builds a Schema from them.
func (p *Adapter) PullSchema(ctx context.Context, schemas []string) (*types.Schema, []schema.Diagnostic, error) {
	columns, err := p.columnRows(ctx, schemas)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	constraints, err := p.constraintRows(ctx, schemas)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read constraints: %w", err)
	}

	indexes, err := p.uniqueIndexRows(ctx, schemas)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read unique indexes: %w", err)
	}

	s, diags := assemble(columns, constraints, indexes)
	return s, diags, nil
}

func (p *Adapter) columnRows(ctx context.Context, schemas []string) ([]columnRow, error) {
	query := p.qb.Select(
		"n.nspname::text",
		"c.relname::text",
		"a.attname::text",
		"pg_catalog.format_type(a.atttypid, a.atttypmod)",
		"a.attnotnull",
		"COALESCE(pg_catalog.pg_get_expr(d.adbin, d.adrelid), '')",
	).
		From("pg_catalog.pg_attribute a").
		Join("pg_catalog.pg_class c ON c.oid = a.attrelid").
		Join("pg_catalog.pg_namespace n ON n.oid = c.relnamespace").
		LeftJoin("pg_catalog.pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum").
		Where(squirrel.Eq{"c.relkind": []string{"r", "p"}}).
		Where(squirrel.Eq{"n.nspname": schemas}).
		Where(squirrel.Gt{"a.attnum": 0}).
		Where("NOT a.attisdropped").
		Where("NOT c.relispartition").
		OrderBy("n.nspname", "c.relname", "a.attnum")

	return collect(ctx, p, query, func(rows pgx.Rows) (columnRow, error) {
		var r columnRow
		err := rows.Scan(&r.Schema, &r.Table, &r.Name, &r.Type, &r.NotNull, &r.Default)
		return r, err
	})
}

func (p *Adapter) constraintRows(ctx context.Context, schemas []string) ([]constraintRow, error) {
	query := p.qb.Select(
		"con.conname::text",
		"con.contype::text",
		"n.nspname::text",
		"c.relname::text",
		conkeyColumns,
		"COALESCE(fn.nspname::text, '')",
		"COALESCE(fc.relname::text, '')",
		confkeyColumns,
		"con.confdeltype::text",
		"con.confupdtype::text",
	).
		From("pg_catalog.pg_constraint con").
		Join("pg_catalog.pg_class c ON c.oid = con.conrelid").
		Join("pg_catalog.pg_namespace n ON n.oid = c.relnamespace").
		LeftJoin("pg_catalog.pg_class fc ON fc.oid = con.confrelid").
		LeftJoin("pg_catalog.pg_namespace fn ON fn.oid = fc.relnamespace").
		Where(squirrel.Eq{"con.contype": []string{"p", "f", "u"}}).
		Where(squirrel.Eq{"n.nspname": schemas}).
		Where("NOT c.relispartition").
		OrderBy("n.nspname", "c.relname", "con.conname")

	return collect(ctx, p, query, func(rows pgx.Rows) (constraintRow, error) {
		var r constraintRow
		err := rows.Scan(&r.Name, &r.Type, &r.Schema, &r.Table, &r.Columns,
			&r.RefSchema, &r.RefTable, &r.RefColumns, &r.OnDelete, &r.OnUpdate)
		return r, err
	})
}

// uniqueIndexRows returns unique indexes that no constraint owns. Partial and
// expression indexes are left out, as on the DDL path.
func (p *Adapter) uniqueIndexRows(ctx context.Context, schemas []string) ([]indexRow, error) {
	query := p.qb.Select(
		"ic.relname::text",
		"n.nspname::text",
		"c.relname::text",
		indkeyColumns,
	).
		From("pg_catalog.pg_index i").
		Join("pg_catalog.pg_class ic ON ic.oid = i.indexrelid").
		Join("pg_catalog.pg_class c ON c.oid = i.indrelid").
		Join("pg_catalog.pg_namespace n ON n.oid = c.relnamespace").
		Where(squirrel.Eq{"i.indisunique": true, "i.indisprimary": false}).
		Where(squirrel.Eq{"i.indpred": nil, "i.indexprs": nil}).
		Where(squirrel.Eq{"n.nspname": schemas}).
		Where("NOT EXISTS (SELECT 1 FROM pg_catalog.pg_constraint con WHERE con.conindid = i.indexrelid)").
		Where("NOT c.relispartition").
		OrderBy("n.nspname", "c.relname", "ic.relname")

	return collect(ctx, p, query, func(rows pgx.Rows) (indexRow, error) {
		var r indexRow
		err := rows.Scan(&r.Name, &r.Schema, &r.Table, &r.Columns)
		return r, err
	})
}

func collect[T any](ctx context.Context, p *Adapter, query squirrel.SelectBuilder, scan func(pgx.Rows) (T, error)) ([]T, error) {
	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}
