package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestPreviewRender_Lifecycle(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := NewPreviewRender("modern", "pdf", start)

	assert.NotEqual(t, uuid.Nil, r.ID)
	assert.Equal(t, OutcomeLoading, r.Outcome)
	assert.Equal(t, start, r.CreatedAt)

	r.Finish(OutcomeError, "invalid_payload", start.Add(1500*time.Millisecond))
	assert.Equal(t, OutcomeError, r.Outcome)
	assert.Equal(t, "invalid_payload", r.ErrorKind)
	assert.Equal(t, int64(1500), r.DurationMS)
}

func TestNewPreviewRender_UniqueIDs(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, NewPreviewRender("base", "html", now).ID, NewPreviewRender("base", "html", now).ID)
}
