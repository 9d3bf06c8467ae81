package pull

import (
	"context"
	"fmt"

	"github.com/Rana718/pgdiagram/internal/config"
	"github.com/Rana718/pgdiagram/internal/convert"
	"github.com/Rana718/pgdiagram/internal/database"
	"github.com/Rana718/pgdiagram/internal/schema"
)

type Options struct {
	Backup     bool
	OutputPath string
	Schemas    []string
}

type Service struct {
	config  *config.Config
	adapter database.SchemaSource
}

// NewService connects to the database named by the configured URL
// environment variable.
func NewService(ctx context.Context, cfg *config.Config) (*Service, error) {
	dbURL, err := cfg.GetDatabaseURL()
	if err != nil {
		return nil, fmt.Errorf("failed to get database URL: %w", err)
	}

	adapter, err := database.NewAdapter(dbURL)
	if err != nil {
		return nil, err
	}

	if err := adapter.Connect(ctx, dbURL); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return NewServiceWithAdapter(cfg, adapter), nil
}

func NewServiceWithAdapter(cfg *config.Config, adapter database.SchemaSource) *Service {
	return &Service{config: cfg, adapter: adapter}
}

func (s *Service) Close() {
	if s.adapter != nil {
		s.adapter.Close()
	}
}

// Pull introspects the configured schemas and writes the rendered diagram to
// opts.OutputPath. Schemas that do not exist are reported as warnings.
func (s *Service) Pull(ctx context.Context, opts Options) (*convert.Result, error) {
	if err := s.config.Validate(); err != nil {
		return nil, err
	}

	schemas := opts.Schemas
	if len(schemas) == 0 {
		schemas = s.config.Database.Schemas
	}

	if err := s.adapter.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	missing, err := s.adapter.MissingSchemas(ctx, schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to check schemas: %w", err)
	}

	pulled, diags, err := s.adapter.PullSchema(ctx, schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to pull database schema: %w", err)
	}

	for _, name := range missing {
		diags = append(diags, schema.Diagnostic{
			Severity:  schema.SeverityWarning,
			Statement: -1,
			Message:   fmt.Sprintf("schema %s does not exist", name),
		})
	}
	if pulled.Len() == 0 {
		diags = append(diags, schema.Diagnostic{
			Severity:  schema.SeverityWarning,
			Statement: -1,
			Message:   "no tables found",
		})
	}

	result, err := convert.Render(pulled, s.config)
	if err != nil {
		return nil, err
	}
	result.Diagnostics = diags

	if opts.Backup {
		if err := createBackup(opts.OutputPath); err != nil {
			return nil, fmt.Errorf("failed to back up %s: %w", opts.OutputPath, err)
		}
	}

	if err := convert.WriteDocument(opts.OutputPath, result.Document); err != nil {
		return nil, err
	}

	return result, nil
}
