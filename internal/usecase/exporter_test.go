package usecase

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	mu      sync.Mutex
	outputs [][]byte
	errs    []error
	calls   int
	lastDoc string
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	f.calls++
	f.lastDoc = html
	var err error
	if i < len(f.errs) {
		err = f.errs[i]
	}
	var out []byte
	if i < len(f.outputs) {
		out = f.outputs[i]
	}
	return out, err
}

type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	err  error
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, false, c.err
	}
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, pdf []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.data[key] = pdf
	return nil
}

func resolveAda(t *testing.T, template string) Result {
	t.Helper()
	res, err := createTestResolver(t).Resolve(Params{Template: template, Data: url.QueryEscape(adaPayload)})
	require.NoError(t, err)
	return res
}

func TestExporter_HTML(t *testing.T) {
	e := NewExporter(nil, logger.NewTestLogger(t), nil)
	out, err := e.HTML(resolveAda(t, "modern"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "layout-modern")
	assert.Contains(t, string(out), "Ada")
}

func TestExporter_PDF_RetriesThenSucceeds(t *testing.T) {
	r := &fakeRenderer{
		errs:    []error{errors.New("chrome crashed"), nil, nil},
		outputs: [][]byte{nil, []byte("<html>not a pdf"), []byte("%PDF-1.7 ok")},
	}
	m := metrics.New(prometheus.NewRegistry())
	e := NewExporter(r, logger.NewTestLogger(t), m, WithRetry(3, time.Millisecond))

	pdf, hit, err := e.PDF(context.Background(), resolveAda(t, "base"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "%PDF-1.7 ok", string(pdf))
	assert.Equal(t, 3, r.calls)
	assert.True(t, strings.Contains(r.lastDoc, "layout-base"))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.PDFAttempts.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PDFAttempts.WithLabelValues("ok")))
}

func TestExporter_PDF_GivesUp(t *testing.T) {
	boom := errors.New("boom")
	r := &fakeRenderer{errs: []error{boom, boom}}
	e := NewExporter(r, logger.NewTestLogger(t), nil, WithRetry(2, time.Millisecond))

	_, _, err := e.PDF(context.Background(), resolveAda(t, "base"))
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "after 2 attempts")
}

func TestExporter_PDF_InvalidOutput(t *testing.T) {
	r := &fakeRenderer{outputs: [][]byte{[]byte("nope")}}
	e := NewExporter(r, logger.NewTestLogger(t), nil, WithRetry(1, 0))

	_, _, err := e.PDF(context.Background(), resolveAda(t, "base"))
	assert.ErrorIs(t, err, ErrInvalidPDF)
}

func TestExporter_PDF_ContextCancelledDuringBackoff(t *testing.T) {
	r := &fakeRenderer{errs: []error{errors.New("boom"), errors.New("boom")}}
	e := NewExporter(r, logger.NewTestLogger(t), nil, WithRetry(2, time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, _, err := e.PDF(ctx, resolveAda(t, "base"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, r.calls)
}

func TestExporter_PDF_UsesCache(t *testing.T) {
	r := &fakeRenderer{outputs: [][]byte{[]byte("%PDF first"), []byte("%PDF second")}}
	cache := newMemCache()
	e := NewExporter(r, logger.NewTestLogger(t), nil, WithCache(cache), WithRetry(1, 0))
	res := resolveAda(t, "minimal")

	first, hit, err := e.PDF(context.Background(), res)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := e.PDF(context.Background(), res)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, r.calls)

	// a different layout is a different document
	_, hit, err = e.PDF(context.Background(), resolveAda(t, "modern"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, r.calls)
}

func TestExporter_PDF_CacheFailureIsNotFatal(t *testing.T) {
	r := &fakeRenderer{outputs: [][]byte{[]byte("%PDF ok")}}
	cache := newMemCache()
	cache.err = errors.New("redis down")
	e := NewExporter(r, logger.NewTestLogger(t), nil, WithCache(cache), WithRetry(1, 0))

	pdf, hit, err := e.PDF(context.Background(), resolveAda(t, "base"))
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "%PDF ok", string(pdf))
}

func TestExporter_RetryDelayIsCapped(t *testing.T) {
	tests := []struct {
		name    string
		backoff time.Duration
		attempt int
		want    time.Duration
	}{
		{name: "first retry", backoff: time.Second, attempt: 0, want: time.Second},
		{name: "doubles", backoff: time.Second, attempt: 3, want: 8 * time.Second},
		{name: "capped", backoff: time.Second, attempt: 5, want: maxBackoff},
		{name: "large attempt does not overflow", backoff: time.Second, attempt: 40, want: maxBackoff},
		{name: "huge base", backoff: time.Hour, attempt: 1, want: maxBackoff},
		{name: "no backoff", backoff: 0, attempt: 20, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewExporter(nil, logger.NewNoOpLogger(), nil, WithRetry(50, tt.backoff))
			assert.Equal(t, tt.want, e.retryDelay(tt.attempt))
		})
	}
}

func TestExporter_PDF_NoRenderer(t *testing.T) {
	e := NewExporter(nil, logger.NewTestLogger(t), nil)
	_, _, err := e.PDF(context.Background(), resolveAda(t, "base"))
	assert.Error(t, err)
}

func TestCacheKey_Stable(t *testing.T) {
	a, err := CacheKey(resolveAda(t, "base"))
	require.NoError(t, err)
	b, err := CacheKey(resolveAda(t, "base"))
	require.NoError(t, err)
	c, err := CacheKey(resolveAda(t, "modern"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "preview:pdf:"))
}
