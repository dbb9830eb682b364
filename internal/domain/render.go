package domain

import (
	"time"

	"github.com/google/uuid"
)

// Render outcomes.
const (
	OutcomeReady   = "ready"
	OutcomeError   = "error"
	OutcomeLoading = "loading"
)

// PreviewRender is one served preview request. It never carries resume
// content, only what was asked for and how it ended.
type PreviewRender struct {
	ID         uuid.UUID `json:"id"`
	Template   string    `json:"template"`
	Resolved   string    `json:"resolved_template,omitempty"`
	Format     string    `json:"format"`
	Outcome    string    `json:"outcome"`
	ErrorKind  string    `json:"error_kind,omitempty"`
	CacheHit   bool      `json:"cache_hit"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewPreviewRender starts a record for a request received at now.
func NewPreviewRender(template, format string, now time.Time) *PreviewRender {
	return &PreviewRender{
		ID:        uuid.New(),
		Template:  template,
		Format:    format,
		Outcome:   OutcomeLoading,
		CreatedAt: now,
	}
}

// Finish stamps the outcome and elapsed time.
func (r *PreviewRender) Finish(outcome, errorKind string, now time.Time) {
	r.Outcome = outcome
	r.ErrorKind = errorKind
	r.DurationMS = now.Sub(r.CreatedAt).Milliseconds()
}
