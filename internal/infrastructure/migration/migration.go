package migration

import (
	"context"
	"fmt"

	"resume-builder/internal/logger"

	"github.com/jackc/pgconn"
)

type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// Migration represents a database migration
type Migration struct {
	Name string
	SQL  string
}

// Migrations are applied in order; every statement is idempotent.
var Migrations = []Migration{
	{
		Name: "create_preview_renders",
		SQL: `
		CREATE TABLE IF NOT EXISTS preview_renders (
			id UUID PRIMARY KEY,
			template TEXT NOT NULL DEFAULT '',
			format TEXT NOT NULL,
			outcome TEXT NOT NULL,
			error_kind TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`,
	},
	{
		Name: "add_resolved_template_to_preview_renders",
		SQL: `
		ALTER TABLE preview_renders
		ADD COLUMN IF NOT EXISTS resolved_template TEXT NOT NULL DEFAULT '';
	`,
	},
	{
		Name: "add_cache_hit_to_preview_renders",
		SQL: `
		ALTER TABLE preview_renders
		ADD COLUMN IF NOT EXISTS cache_hit BOOLEAN NOT NULL DEFAULT false;
	`,
	},
	{
		Name: "index_preview_renders_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS preview_renders_created_at_idx ON preview_renders (created_at DESC);`,
	},
}

// RunMigrations executes all migrations on startup.
func RunMigrations(ctx context.Context, db Execer, log logger.Logger) error {
	log.Info("starting database migrations", nil)

	for _, m := range Migrations {
		if _, err := db.Exec(ctx, m.SQL); err != nil {
			log.WithError(err).Error("migration failed", map[string]interface{}{"name": m.Name})
			return fmt.Errorf("migration %s: %w", m.Name, err)
		}
		log.Info("migration completed", map[string]interface{}{"name": m.Name})
	}

	log.Info("all migrations completed", nil)
	return nil
}
