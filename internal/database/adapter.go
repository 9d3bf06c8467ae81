package database

import (
	"context"

	"github.com/Rana718/pgdiagram/internal/schema"
	"github.com/Rana718/pgdiagram/internal/types"
)

// SchemaSource reads a live database catalog into the diagram's schema model.
type SchemaSource interface {
	Connect(ctx context.Context, url string) error
	Close() error
	Ping(ctx context.Context) error

	MissingSchemas(ctx context.Context, schemas []string) ([]string, error)
	PullSchema(ctx context.Context, schemas []string) (*types.Schema, []schema.Diagnostic, error)
}
