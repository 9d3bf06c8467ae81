package pull

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/Rana718/pgdiagram/internal/config"
	"github.com/Rana718/pgdiagram/internal/schema"
	"github.com/Rana718/pgdiagram/internal/types"
)

type fakeSource struct {
	ddl       string
	missing   []string
	requested []string
	pingErr   error
	closed    bool
}

func (f *fakeSource) Connect(ctx context.Context, url string) error { return nil }
func (f *fakeSource) Ping(ctx context.Context) error                { return f.pingErr }

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}

func (f *fakeSource) MissingSchemas(ctx context.Context, schemas []string) ([]string, error) {
	return f.missing, nil
}

func (f *fakeSource) PullSchema(ctx context.Context, schemas []string) (*types.Schema, []schema.Diagnostic, error) {
	f.requested = schemas
	s, _ := schema.Parse(f.ddl, "public")
	return s, nil, nil
}

func TestPullWritesDiagram(t *testing.T) {
	out := filepath.Join(t.TempDir(), "db.drawio")
	source := &fakeSource{
		ddl:     "CREATE TABLE users (id int PRIMARY KEY); CREATE TABLE posts (id int, author int REFERENCES users);",
		missing: []string{"audit"},
	}

	svc := NewServiceWithAdapter(config.Default(), source)
	result, err := svc.Pull(context.Background(), Options{OutputPath: out, Schemas: []string{"public", "audit"}})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	if !reflect.DeepEqual(source.requested, []string{"public", "audit"}) {
		t.Errorf("Expected requested schemas to be passed through, got %v", source.requested)
	}

	if result.Schema.Len() != 2 || len(result.Diagram.Edges) != 1 {
		t.Errorf("Expected 2 tables and 1 edge, got %d and %d", result.Schema.Len(), len(result.Diagram.Edges))
	}

	warnings := schema.Warnings(result.Diagnostics)
	if len(warnings) != 1 || warnings[0].Message != "schema audit does not exist" {
		t.Errorf("Expected a missing schema warning, got %v", result.Diagnostics)
	}

	written, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read output: %v", err)
	}
	if string(written) != string(result.Document) {
		t.Error("Written diagram differs from the result document")
	}

	svc.Close()
	if !source.closed {
		t.Error("Expected Close to close the adapter")
	}
}

func TestPullDefaultsToConfiguredSchemas(t *testing.T) {
	cfg := config.Default()
	cfg.Database.Schemas = []string{"app"}

	source := &fakeSource{}
	svc := NewServiceWithAdapter(cfg, source)

	result, err := svc.Pull(context.Background(), Options{OutputPath: filepath.Join(t.TempDir(), "db.drawio")})
	if err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	if !reflect.DeepEqual(source.requested, []string{"app"}) {
		t.Errorf("Expected configured schemas, got %v", source.requested)
	}

	warnings := schema.Warnings(result.Diagnostics)
	if len(warnings) != 1 || warnings[0].Message != "no tables found" {
		t.Errorf("Expected a 'no tables found' warning, got %v", result.Diagnostics)
	}
}

func TestPullBackup(t *testing.T) {
	out := filepath.Join(t.TempDir(), "db.drawio")
	if err := os.WriteFile(out, []byte("old"), 0644); err != nil {
		t.Fatalf("Failed to seed output: %v", err)
	}

	svc := NewServiceWithAdapter(config.Default(), &fakeSource{ddl: "CREATE TABLE t (id int);"})
	if _, err := svc.Pull(context.Background(), Options{OutputPath: out, Backup: true}); err != nil {
		t.Fatalf("Pull returned error: %v", err)
	}

	backup, err := os.ReadFile(out + ".backup")
	if err != nil {
		t.Fatalf("Expected a backup file: %v", err)
	}
	if string(backup) != "old" {
		t.Errorf("Backup content = %q, want %q", backup, "old")
	}
}

func TestPullUnreachableDatabase(t *testing.T) {
	out := filepath.Join(t.TempDir(), "db.drawio")
	pingErr := errors.New("connection refused")

	svc := NewServiceWithAdapter(config.Default(), &fakeSource{pingErr: pingErr})
	if _, err := svc.Pull(context.Background(), Options{OutputPath: out}); !errors.Is(err, pingErr) {
		t.Errorf("Expected ping error, got %v", err)
	}

	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Expected no output when the database is unreachable")
	}
}

func TestNewServiceRequiresURL(t *testing.T) {
	cfg := config.Default()
	cfg.Database.URLEnv = "PGDIAGRAM_TEST_UNSET_URL"
	t.Setenv("PGDIAGRAM_TEST_UNSET_URL", "")

	if _, err := NewService(context.Background(), cfg); err == nil {
		t.Error("Expected an error when the database URL is not set")
	}
}
