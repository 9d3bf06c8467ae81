package schema

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Rana718/pgdiagram/internal/types"
)

func mustTable(t *testing.T, stmt string) types.Table {
	t.Helper()
	table, err := ExtractTable(stmt, "public")
	if err != nil {
		t.Fatalf("ExtractTable(%q) returned error: %v", stmt, err)
	}
	return table
}

func mustConstraints(t *testing.T, stmt string) []types.Constraint {
	t.Helper()
	constraints, err := ExtractConstraints(stmt, "public")
	if err != nil {
		t.Fatalf("ExtractConstraints(%q) returned error: %v", stmt, err)
	}
	return constraints
}

func TestBuilderOrderIndependence(t *testing.T) {
	users := mustTable(t, "CREATE TABLE users (id int PRIMARY KEY, email text)")
	orders := mustTable(t, "CREATE TABLE orders (id int, user_id int NOT NULL)")
	fk := mustConstraints(t, "ALTER TABLE orders ADD CONSTRAINT orders_user_fk FOREIGN KEY (user_id) REFERENCES users (id)")
	pk := mustConstraints(t, "ALTER TABLE orders ADD PRIMARY KEY (id)")

	before := NewBuilder()
	for _, c := range append(fk, pk...) {
		before.AddConstraint(c)
	}
	before.AddTable(users)
	before.AddTable(orders)

	after := NewBuilder()
	after.AddTable(users)
	after.AddTable(orders)
	for _, c := range append(fk, pk...) {
		after.AddConstraint(c)
	}

	s1, d1 := before.Build()
	s2, d2 := after.Build()

	if len(d1) != 0 || len(d2) != 0 {
		t.Fatalf("Expected no diagnostics, got %v and %v", d1, d2)
	}

	if !reflect.DeepEqual(s1.Tables(), s2.Tables()) {
		t.Errorf("Schemas differ by statement order:\n%+v\n%+v", s1.Tables(), s2.Tables())
	}

	if !s1.Frozen() {
		t.Error("Expected built schema to be frozen")
	}

	resolved := s1.ResolvedForeignKeys()
	if len(resolved) != 1 || resolved[0].Name != "orders_user_fk" {
		t.Errorf("Expected one resolved foreign key, got %+v", resolved)
	}
}

func TestBuilderUnresolvedForeignKey(t *testing.T) {
	b := NewBuilder()
	b.AddTable(mustTable(t, "CREATE TABLE orders (id int, customer_id int REFERENCES customers (id), user_id int)"))
	b.AddTable(mustTable(t, "CREATE TABLE users (id int)"))
	for _, c := range mustConstraints(t, "ALTER TABLE orders ADD FOREIGN KEY (user_id) REFERENCES users (uuid)") {
		b.AddConstraint(c)
	}

	s, diags := b.Build()

	if got := len(s.UnresolvedForeignKeys()); got != 2 {
		t.Errorf("Expected 2 unresolved foreign keys, got %d", got)
	}
	if got := len(s.ResolvedForeignKeys()); got != 0 {
		t.Errorf("Expected no resolved foreign keys, got %d", got)
	}

	warnings := Warnings(diags)
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %v", diags)
	}
	if !strings.Contains(warnings[0].Message, "public.customers not found") {
		t.Errorf("Unexpected warning %q", warnings[0].Message)
	}
	if !strings.Contains(warnings[1].Message, "uuid") {
		t.Errorf("Unexpected warning %q", warnings[1].Message)
	}
}

func TestBuilderDropsConstraintsOnUnknownTargets(t *testing.T) {
	b := NewBuilder()
	b.AddTable(mustTable(t, "CREATE TABLE users (id int)"))
	for _, stmt := range []string{
		"ALTER TABLE ghosts ADD PRIMARY KEY (id)",
		"ALTER TABLE users ADD UNIQUE (email)",
	} {
		for _, c := range mustConstraints(t, stmt) {
			b.AddConstraint(c)
		}
	}

	s, diags := b.Build()

	users, _ := s.Table("public.users")
	if len(users.Constraints) != 0 {
		t.Errorf("Expected no constraints on users, got %+v", users.Constraints)
	}

	if len(diags) != 2 {
		t.Fatalf("Expected 2 diagnostics, got %v", diags)
	}
	if !strings.Contains(diags[0].Message, "unknown table public.ghosts") {
		t.Errorf("Unexpected diagnostic %q", diags[0].Message)
	}
	if !strings.Contains(diags[1].Message, "unknown column(s) email") {
		t.Errorf("Unexpected diagnostic %q", diags[1].Message)
	}
}

func TestBuilderImplicitPrimaryKeyReference(t *testing.T) {
	b := NewBuilder()
	b.AddTable(mustTable(t, "CREATE TABLE line_items (order_id int, line int, PRIMARY KEY (order_id, line))"))
	b.AddTable(mustTable(t, `CREATE TABLE notes (
  id int,
  order_id int,
  line int,
  FOREIGN KEY (order_id, line) REFERENCES line_items
)`))

	s, diags := b.Build()
	if len(diags) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", diags)
	}

	fks := s.ResolvedForeignKeys()
	if len(fks) != 1 {
		t.Fatalf("Expected 1 resolved foreign key, got %+v", fks)
	}
	if !reflect.DeepEqual(fks[0].RefColumns, []string{"order_id", "line"}) {
		t.Errorf("Expected reference to the primary key, got %v", fks[0].RefColumns)
	}
}

func TestBuilderDuplicateTableAndPrimaryKey(t *testing.T) {
	b := NewBuilder()
	b.AddTable(mustTable(t, "CREATE TABLE users (id int PRIMARY KEY, email text)"))
	b.AddTable(mustTable(t, "CREATE TABLE users (id int, name text)"))
	for _, c := range mustConstraints(t, "ALTER TABLE users ADD CONSTRAINT users_pkey PRIMARY KEY (email)") {
		b.AddConstraint(c)
	}

	s, diags := b.Build()

	if s.Len() != 1 {
		t.Fatalf("Expected 1 table, got %d", s.Len())
	}

	users, _ := s.Table("public.users")
	names := make([]string, 0, len(users.Columns))
	for _, col := range users.Columns {
		names = append(names, col.Name)
	}
	if !reflect.DeepEqual(names, []string{"id", "email", "name"}) {
		t.Errorf("Expected merged columns, got %v", names)
	}

	if !reflect.DeepEqual(users.PrimaryKey(), []string{"id"}) {
		t.Errorf("Expected first primary key to win, got %v", users.PrimaryKey())
	}

	if len(Warnings(diags)) != 2 {
		t.Errorf("Expected duplicate table and primary key warnings, got %v", diags)
	}
}

func TestBuilderFrozenSchemaRejectsTables(t *testing.T) {
	s, _ := NewBuilder().Build()
	if err := s.Add(&types.Table{Name: types.QualifiedName{Schema: "public", Name: "late"}}); err != types.ErrFrozen {
		t.Errorf("Expected ErrFrozen, got %v", err)
	}
}
