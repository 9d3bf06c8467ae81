package database

import (
	"fmt"
	"net/url"

	"github.com/Rana718/pgdiagram/internal/database/postgres"
)

// NewAdapter picks a SchemaSource from the scheme of a connection URL.
func NewAdapter(dbURL string) (SchemaSource, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database URL: %w", err)
	}

	switch u.Scheme {
	case "postgresql", "postgres":
		return postgres.New(), nil
	default:
		return nil, fmt.Errorf("unsupported database scheme %q: only PostgreSQL is supported", u.Scheme)
	}
}
