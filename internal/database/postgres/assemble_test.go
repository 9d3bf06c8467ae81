package postgres

import (
	"reflect"
	"testing"

	"github.com/Rana718/pgdiagram/internal/types"
)

func TestAssemble(t *testing.T) {
	columns := []columnRow{
		{Schema: "public", Table: "orders", Name: "id", Type: "bigint", NotNull: true},
		{Schema: "public", Table: "orders", Name: "user_id", Type: "integer", NotNull: true},
		{Schema: "public", Table: "orders", Name: "total", Type: "numeric(12,2)", Default: "0"},
		{Schema: "public", Table: "users", Name: "id", Type: "integer", NotNull: true},
		{Schema: "public", Table: "users", Name: "email", Type: "character varying(255)", NotNull: true},
	}
	constraints := []constraintRow{
		{Name: "orders_pkey", Type: "p", Schema: "public", Table: "orders", Columns: []string{"id"}},
		{
			Name: "orders_user_id_fkey", Type: "f", Schema: "public", Table: "orders",
			Columns: []string{"user_id"}, RefSchema: "public", RefTable: "users", RefColumns: []string{"id"},
			OnDelete: "c", OnUpdate: "a",
		},
		{Name: "users_pkey", Type: "p", Schema: "public", Table: "users", Columns: []string{"id"}},
		{Name: "users_age_check", Type: "c", Schema: "public", Table: "users"},
	}
	indexes := []indexRow{
		{Name: "users_email_key", Schema: "public", Table: "users", Columns: []string{"email"}},
	}

	s, diags := assemble(columns, constraints, indexes)
	if len(diags) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", diags)
	}

	if s.Len() != 2 {
		t.Fatalf("Expected 2 tables, got %d", s.Len())
	}

	orders, _ := s.Table("public.orders")
	if len(orders.Columns) != 3 || orders.Columns[2].Nullable != true || orders.Columns[2].Default != "0" {
		t.Errorf("Unexpected orders columns %+v", orders.Columns)
	}

	fks := s.ResolvedForeignKeys()
	if len(fks) != 1 {
		t.Fatalf("Expected 1 resolved foreign key, got %+v", fks)
	}
	if fks[0].OnDelete != "CASCADE" || fks[0].OnUpdate != "" || fks[0].Source != types.SourceCatalog {
		t.Errorf("Unexpected foreign key %+v", fks[0])
	}

	users, _ := s.Table("public.users")
	if got := users.KeyMarkers("email"); !reflect.DeepEqual(got, []string{"UQ"}) {
		t.Errorf("Expected email to be UQ, got %v", got)
	}
	if len(users.Constraints) != 2 {
		t.Errorf("Expected check constraints to be skipped, got %+v", users.Constraints)
	}
}

func TestAssembleCrossSchemaReference(t *testing.T) {
	columns := []columnRow{
		{Schema: "auth", Table: "users", Name: "id", Type: "uuid", NotNull: true},
		{Schema: "public", Table: "users", Name: "id", Type: "integer", NotNull: true},
		{Schema: "public", Table: "posts", Name: "author", Type: "uuid"},
	}
	constraints := []constraintRow{
		{Name: "users_pkey", Type: "p", Schema: "auth", Table: "users", Columns: []string{"id"}},
		{
			Name: "posts_author_fkey", Type: "f", Schema: "public", Table: "posts",
			Columns: []string{"author"}, RefSchema: "auth", RefTable: "users", RefColumns: []string{"id"},
			OnDelete: "n", OnUpdate: "a",
		},
	}

	s, _ := assemble(columns, constraints, nil)

	var keys []string
	for _, table := range s.Tables() {
		keys = append(keys, table.Name.Key())
	}
	if !reflect.DeepEqual(keys, []string{"auth.users", "public.users", "public.posts"}) {
		t.Errorf("Expected same-named tables in different schemas to stay distinct, got %v", keys)
	}

	fks := s.ResolvedForeignKeys()
	if len(fks) != 1 || fks[0].RefTable.Key() != "auth.users" || fks[0].OnDelete != "SET NULL" {
		t.Errorf("Unexpected cross-schema foreign key %+v", fks)
	}
}

func TestAssembleReferenceOutsidePulledSchemas(t *testing.T) {
	columns := []columnRow{
		{Schema: "public", Table: "posts", Name: "author", Type: "uuid"},
	}
	constraints := []constraintRow{
		{
			Name: "posts_author_fkey", Type: "f", Schema: "public", Table: "posts",
			Columns: []string{"author"}, RefSchema: "auth", RefTable: "users", RefColumns: []string{"id"},
		},
	}

	s, diags := assemble(columns, constraints, nil)

	if len(s.UnresolvedForeignKeys()) != 1 {
		t.Errorf("Expected the foreign key to be unresolved, got %+v", s.UnresolvedForeignKeys())
	}
	if len(diags) != 1 {
		t.Errorf("Expected one diagnostic, got %v", diags)
	}
}
