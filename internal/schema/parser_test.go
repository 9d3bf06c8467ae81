package schema

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Rana718/pgdiagram/internal/types"
)

func TestParseForwardReference(t *testing.T) {
	input := `CREATE TABLE users (id int PRIMARY KEY, email text);
ALTER TABLE orders ADD CONSTRAINT orders_user_fk FOREIGN KEY (user_id) REFERENCES users (id);
CREATE TABLE orders (id int PRIMARY KEY, user_id int NOT NULL);`

	s, diags := Parse(input, "public")

	if len(Warnings(diags)) != 0 {
		t.Fatalf("Expected no warnings, got %v", diags)
	}

	if s.Len() != 2 {
		t.Fatalf("Expected 2 tables, got %d", s.Len())
	}

	fks := s.ResolvedForeignKeys()
	if len(fks) != 1 {
		t.Fatalf("Expected 1 resolved foreign key, got %+v", fks)
	}
	if fks[0].Table.Key() != "public.orders" || fks[0].RefTable.Key() != "public.users" {
		t.Errorf("Unexpected foreign key %s -> %s", fks[0].Table.Key(), fks[0].RefTable.Key())
	}
}

func TestParseNoTables(t *testing.T) {
	s, diags := Parse("SET client_encoding = 'UTF8'; CREATE SCHEMA app;", "public")

	if s.Len() != 0 {
		t.Errorf("Expected empty schema, got %d tables", s.Len())
	}

	warnings := Warnings(diags)
	if len(warnings) != 1 || warnings[0].Message != "no tables found" {
		t.Errorf("Expected a single 'no tables found' warning, got %v", diags)
	}

	if len(diags) != 3 {
		t.Errorf("Expected two ignored statements and one warning, got %v", diags)
	}
}

func TestParseSkipsMalformedTable(t *testing.T) {
	s, diags := Parse("CREATE TABLE broken (id int; CREATE TABLE ok (id int);", "public")

	if s.Len() != 1 {
		t.Fatalf("Expected the well-formed table to survive, got %d tables", s.Len())
	}
	if _, ok := s.Table("public.ok"); !ok {
		t.Error("Expected table public.ok")
	}

	warnings := Warnings(diags)
	if len(warnings) != 1 || warnings[0].Statement != 0 {
		t.Fatalf("Expected one warning for statement 0, got %v", diags)
	}
	if !strings.HasPrefix(warnings[0].String(), "warning: statement 1: skipped CREATE TABLE") {
		t.Errorf("Unexpected warning text %q", warnings[0].String())
	}
}

func TestParseDefaultSchema(t *testing.T) {
	s, _ := Parse("CREATE TABLE users (id int); CREATE TABLE audit.users (id int);", "app")

	var keys []string
	for _, table := range s.Tables() {
		keys = append(keys, table.Name.Key())
	}

	if !reflect.DeepEqual(keys, []string{"app.users", "audit.users"}) {
		t.Errorf("Unexpected table keys %v", keys)
	}
}

func TestParsePgDump(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "pg_dump.sql"))
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}

	s, diags := Parse(string(data), "public")

	var keys []string
	for _, table := range s.Tables() {
		keys = append(keys, table.Name.Key())
	}
	expected := []string{"public.users", "shop.orders", "shop.order_items", "public.products"}
	if !reflect.DeepEqual(keys, expected) {
		t.Fatalf("Expected tables %v, got %v", expected, keys)
	}

	if got := len(s.ResolvedForeignKeys()); got != 3 {
		t.Errorf("Expected 3 resolved foreign keys, got %d", got)
	}

	unresolved := s.UnresolvedForeignKeys()
	if len(unresolved) != 1 || unresolved[0].Name != "order_items_legacy_fkey" {
		t.Errorf("Expected the legacy foreign key to be unresolved, got %+v", unresolved)
	}

	warnings := Warnings(diags)
	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", warnings)
	}

	users, _ := s.Table("public.users")
	if got := users.KeyMarkers("id"); !reflect.DeepEqual(got, []string{"PK"}) {
		t.Errorf("Expected users.id to be PK, got %v", got)
	}
	if got := users.KeyMarkers("email"); !reflect.DeepEqual(got, []string{"UQ"}) {
		t.Errorf("Expected users.email to be UQ, got %v", got)
	}

	products, _ := s.Table("public.products")
	if got := products.KeyMarkers("sku"); got != nil {
		t.Errorf("Expression index should not mark sku, got %v", got)
	}

	items, _ := s.Table("shop.order_items")
	if got := items.KeyMarkers("order_id"); !reflect.DeepEqual(got, []string{"PK", "FK"}) {
		t.Errorf("Expected order_items.order_id to be PK FK, got %v", got)
	}

	orders, _ := s.Table("shop.orders")
	status, _ := orders.Column("status")
	if status.Default != "'new;pending'::text" || status.Nullable {
		t.Errorf("Unexpected status column %+v", status)
	}
}

func TestParseRestrictedDump(t *testing.T) {
	input := `\restrict Zq9f2
CREATE TABLE public.users (id integer NOT NULL, email text);
CREATE UNIQUE INDEX users_email_idx ON public.users USING btree (email);
ALTER TABLE ONLY public.users ADD CONSTRAINT users_email_key UNIQUE USING INDEX users_email_idx;
ALTER TABLE ONLY public.users ADD CONSTRAINT users_pkey PRIMARY KEY (id);
\unrestrict Zq9f2
`

	s, diags := Parse(input, "public")

	if len(Warnings(diags)) != 0 {
		t.Fatalf("Expected no warnings, got %v", diags)
	}

	users, ok := s.Table("public.users")
	if !ok {
		t.Fatal("Expected users table after a \\restrict line")
	}
	if !reflect.DeepEqual(users.PrimaryKey(), []string{"id"}) {
		t.Errorf("Expected primary key [id], got %v", users.PrimaryKey())
	}
	if !users.HasKey(types.Unique, "email") {
		t.Error("Expected email to stay unique through its index")
	}
}
