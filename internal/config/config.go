package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	FileName  = "pgdiagram.config.json"
	EnvPrefix = "PGDIAGRAM"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	DefaultSchema string   `json:"default_schema" mapstructure:"default_schema"`
	DiagramName   string   `json:"diagram_name" mapstructure:"diagram_name"`
	Layout        Layout   `json:"layout" mapstructure:"layout"`
	Render        Render   `json:"render" mapstructure:"render"`
	Database      Database `json:"database" mapstructure:"database"`
}

// Layout holds the grid and entity geometry in pixels. ColumnsPerRow of 0
// picks a roughly square grid from the table count.
type Layout struct {
	ColumnsPerRow int  `json:"columns_per_row" mapstructure:"columns_per_row"`
	KeyWidth      int  `json:"key_width" mapstructure:"key_width"`
	NameWidth     int  `json:"name_width" mapstructure:"name_width"`
	TypeWidth     int  `json:"type_width" mapstructure:"type_width"`
	RowHeight     int  `json:"row_height" mapstructure:"row_height"`
	HeaderHeight  int  `json:"header_height" mapstructure:"header_height"`
	OriginX       int  `json:"origin_x" mapstructure:"origin_x"`
	OriginY       int  `json:"origin_y" mapstructure:"origin_y"`
	GapX          int  `json:"gap_x" mapstructure:"gap_x"`
	GapY          int  `json:"gap_y" mapstructure:"gap_y"`
	DedupeEdges   bool `json:"dedupe_edges" mapstructure:"dedupe_edges"`
}

func (l Layout) TableWidth() int {
	return l.KeyWidth + l.NameWidth + l.TypeWidth
}

type Render struct {
	PrimaryKeysFirst bool `json:"primary_keys_first" mapstructure:"primary_keys_first"`
	Cardinality      bool `json:"cardinality" mapstructure:"cardinality"`
}

type Database struct {
	URLEnv  string   `json:"url_env" mapstructure:"url_env"`
	Schemas []string `json:"schemas" mapstructure:"schemas"`
}

var defaults = map[string]any{
	"default_schema":            "public",
	"diagram_name":              "Database Schema",
	"layout.columns_per_row":    3,
	"layout.key_width":          40,
	"layout.name_width":         150,
	"layout.type_width":         110,
	"layout.row_height":         30,
	"layout.header_height":      30,
	"layout.origin_x":           40,
	"layout.origin_y":           40,
	"layout.gap_x":              40,
	"layout.gap_y":              50,
	"layout.dedupe_edges":       false,
	"render.primary_keys_first": false,
	"render.cardinality":        true,
	"database.url_env":          "DATABASE_URL",
	"database.schemas":          []string{"public"},
}

// SetDefaults registers every key with its default value. Values already set
// explicitly or read from a config file take precedence.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Default returns the configuration used when no file or overrides exist.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("config defaults do not unmarshal: %v", err))
	}
	return &cfg
}

func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.DefaultSchema = strings.TrimSpace(cfg.DefaultSchema)
	if cfg.DefaultSchema == "" {
		cfg.DefaultSchema = "public"
	}
	if len(cfg.Database.Schemas) == 0 {
		cfg.Database.Schemas = []string{cfg.DefaultSchema}
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	l := c.Layout
	if l.ColumnsPerRow < 0 {
		return fmt.Errorf("%w: layout.columns_per_row must be >= 0, got %d", ErrInvalid, l.ColumnsPerRow)
	}

	dims := []struct {
		key   string
		value int
	}{
		{"layout.key_width", l.KeyWidth},
		{"layout.name_width", l.NameWidth},
		{"layout.type_width", l.TypeWidth},
		{"layout.row_height", l.RowHeight},
		{"layout.header_height", l.HeaderHeight},
	}
	for _, d := range dims {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, d.key, d.value)
		}
	}

	if l.GapX < 0 || l.GapY < 0 {
		return fmt.Errorf("%w: layout gaps cannot be negative", ErrInvalid)
	}

	if c.DiagramName == "" {
		return fmt.Errorf("%w: diagram_name cannot be empty", ErrInvalid)
	}

	return nil
}

func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// WriteDefault writes the default configuration to path. It refuses to
// overwrite an existing file.
func WriteDefault(path string) error {
	v := viper.New()
	SetDefaults(v)
	if err := v.SafeWriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
