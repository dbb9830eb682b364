package repository

import (
	"context"

	"resume-builder/internal/domain"

	"github.com/jackc/pgconn"
)

// Execer is the part of *pgxpool.Pool the repository uses.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
}

// RendersRepo records served previews. With a nil pool every call is a
// no-op so the service runs without a database.
type RendersRepo struct {
	db Execer
}

func NewRendersRepo(db Execer) *RendersRepo {
	return &RendersRepo{db: db}
}

func (r *RendersRepo) Enabled() bool { return r != nil && r.db != nil }

func (r *RendersRepo) Save(ctx context.Context, p *domain.PreviewRender) error {
	if !r.Enabled() {
		return nil
	}

	_, err := r.db.Exec(ctx, `INSERT INTO preview_renders (id, template, resolved_template, format, outcome, error_kind, cache_hit, duration_ms, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET resolved_template = EXCLUDED.resolved_template, outcome = EXCLUDED.outcome, error_kind = EXCLUDED.error_kind, cache_hit = EXCLUDED.cache_hit, duration_ms = EXCLUDED.duration_ms`,
		p.ID, p.Template, p.Resolved, p.Format, p.Outcome, p.ErrorKind, p.CacheHit, p.DurationMS, p.CreatedAt)
	return err
}
