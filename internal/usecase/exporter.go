package usecase

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
)

type Renderer interface {
	RenderHTMLToPDF(ctx context.Context, html string) ([]byte, error)
}

// PDFCache stores rendered documents by content key.
type PDFCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, pdf []byte) error
}

var ErrInvalidPDF = errors.New("invalid PDF output")

// maxBackoff caps the wait between two PDF render attempts.
const maxBackoff = 30 * time.Second

// Exporter turns a resolved preview into a standalone HTML or PDF document.
type Exporter struct {
	renderer Renderer
	cache    PDFCache
	attempts int
	backoff  time.Duration
	log      logger.Logger
	metrics  *metrics.Metrics
}

type ExporterOption func(*Exporter)

// WithCache enables PDF caching. A nil cache leaves caching off.
func WithCache(c PDFCache) ExporterOption {
	return func(e *Exporter) { e.cache = c }
}

// WithRetry sets the number of render attempts and the base backoff, which
// doubles after every failed attempt.
func WithRetry(attempts int, backoff time.Duration) ExporterOption {
	return func(e *Exporter) {
		if attempts > 0 {
			e.attempts = attempts
		}
		e.backoff = backoff
	}
}

func NewExporter(r Renderer, log logger.Logger, m *metrics.Metrics, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		renderer: r,
		attempts: 3,
		backoff:  time.Second,
		log:      log,
		metrics:  m,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// HTML renders res read-only.
func (e *Exporter) HTML(res Result) ([]byte, error) {
	started := time.Now()
	var buf bytes.Buffer
	if err := res.Template.Render(&buf, res.Data, true); err != nil {
		return nil, err
	}
	e.metrics.ObserveRender("html", started)
	return buf.Bytes(), nil
}

// PDF renders res to an A4 PDF. The bool reports a cache hit.
func (e *Exporter) PDF(ctx context.Context, res Result) ([]byte, bool, error) {
	if e.renderer == nil {
		return nil, false, errors.New("pdf renderer not configured")
	}
	started := time.Now()

	key, err := CacheKey(res)
	if err != nil {
		return nil, false, err
	}

	if e.cache != nil {
		pdf, ok, err := e.cache.Get(ctx, key)
		switch {
		case err != nil:
			e.log.WithError(err).Warn("pdf cache lookup failed", map[string]interface{}{"key": key})
		case ok:
			e.metrics.ObserveCache(true)
			return pdf, true, nil
		default:
			e.metrics.ObserveCache(false)
		}
	}

	html, err := e.HTML(res)
	if err != nil {
		return nil, false, err
	}

	var pdf []byte
	var renderErr error
	for i := 0; i < e.attempts; i++ {
		pdf, renderErr = e.renderer.RenderHTMLToPDF(ctx, string(html))
		if renderErr == nil && !bytes.HasPrefix(pdf, []byte("%PDF")) {
			renderErr = fmt.Errorf("%w (len=%d)", ErrInvalidPDF, len(pdf))
		}
		e.metrics.ObservePDFAttempt(renderErr)
		if renderErr == nil {
			break
		}
		e.log.WithError(renderErr).Warn("pdf render attempt failed", map[string]interface{}{"attempt": i + 1})

		if i < e.attempts-1 {
			select {
			case <-time.After(e.retryDelay(i)):
			case <-ctx.Done():
				return nil, false, ctx.Err()
			}
		}
	}
	if renderErr != nil {
		return nil, false, fmt.Errorf("rendering failed after %d attempts: %w", e.attempts, renderErr)
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, pdf); err != nil {
			e.log.WithError(err).Warn("pdf cache store failed", map[string]interface{}{"key": key})
		}
	}
	e.metrics.ObserveRender("pdf", started)
	return pdf, false, nil
}

// retryDelay is the wait after the failed attempt with index i: the base
// backoff doubled i times, capped at maxBackoff.
func (e *Exporter) retryDelay(i int) time.Duration {
	if e.backoff <= 0 {
		return 0
	}
	if i >= 32 || e.backoff > maxBackoff>>i {
		return maxBackoff
	}
	return e.backoff << i
}

// CacheKey identifies the document res renders to.
func CacheKey(res Result) (string, error) {
	raw, err := json.Marshal(res.Data)
	if err != nil {
		return "", err
	}
	h := sha256.New()
	h.Write([]byte(res.Template.Key()))
	h.Write([]byte{0})
	h.Write(raw)
	return "preview:pdf:" + hex.EncodeToString(h.Sum(nil)), nil
}
