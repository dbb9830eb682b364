package http

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"resume-builder/internal/domain"
	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
	"resume-builder/internal/model"
	"resume-builder/internal/usecase"

	"github.com/gofiber/fiber/v2"
)

// History records served previews.
type History interface {
	Save(ctx context.Context, r *domain.PreviewRender) error
}

type Handler struct {
	resolver       *usecase.Resolver
	exporter       *usecase.Exporter
	history        History
	log            logger.Logger
	metrics        *metrics.Metrics
	resolveTimeout time.Duration

	// source turns request parameters into the surface's ParamSource.
	source func(usecase.Params) usecase.ParamSource
}

func NewHandler(r *usecase.Resolver, e *usecase.Exporter, h History, log logger.Logger, m *metrics.Metrics, resolveTimeout time.Duration) *Handler {
	if resolveTimeout <= 0 {
		resolveTimeout = 5 * time.Second
	}
	return &Handler{
		resolver:       r,
		exporter:       e,
		history:        h,
		log:            log,
		metrics:        m,
		resolveTimeout: resolveTimeout,
		source:         func(p usecase.Params) usecase.ParamSource { return usecase.StaticParams(p) },
	}
}

// previewParams copies the entry parameters out of the request; fasthttp
// reuses its buffers once the handler returns.
func previewParams(c *fiber.Ctx) usecase.Params {
	return usecase.Params{
		Template: strings.Clone(c.Query("template")),
		Data:     rawQueryParam(string(c.Request().URI().QueryString()), "data"),
	}
}

// navigate runs one preview surface until it settles or the resolve timeout
// elapses. The returned release func must be called once the snapshot has
// been used: it waits for a settled surface and abandons one that timed out.
func (h *Handler) navigate(c *fiber.Ctx, p usecase.Params) (usecase.Snapshot, *usecase.Surface, func()) {
	s := usecase.NewSurface(h.resolver, h.log, h.metrics)
	ctx, cancel := context.WithTimeout(c.UserContext(), h.resolveTimeout)
	defer cancel()

	select {
	case <-s.Navigate(ctx, h.source(p)):
		return s.Snapshot(), s, s.Close
	case <-ctx.Done():
		snap := s.Snapshot()
		if snap.State == usecase.StateLoading {
			h.log.Warn("preview still loading after resolve timeout", map[string]interface{}{
				"template": p.Template,
				"timeout":  h.resolveTimeout.String(),
			})
		}
		return snap, s, s.Cancel
	}
}

// Preview serves the rendered resume as an HTML document.
func (h *Handler) Preview(c *fiber.Ctx) error {
	p := previewParams(c)
	rec := domain.NewPreviewRender(p.Template, "html", time.Now())
	snap, s, release := h.navigate(c, p)
	defer release()

	var buf bytes.Buffer
	status := fiber.StatusOK
	switch snap.State {
	case usecase.StateReady:
		rec.Resolved = snap.Result.Template.Key()
		out, err := h.exporter.HTML(snap.Result)
		if err != nil {
			h.log.WithError(err).Error("render preview", map[string]interface{}{"template": rec.Resolved})
			h.finish(c, rec, domain.OutcomeError, "render")
			return fiber.NewError(fiber.StatusInternalServerError, "render failed")
		}
		buf.Write(out)
		h.finish(c, rec, domain.OutcomeReady, "")
	case usecase.StateError:
		status = fiber.StatusBadRequest
		if err := s.RenderSnapshot(&buf, snap); err != nil {
			return err
		}
		h.finish(c, rec, domain.OutcomeError, snap.Reason.String())
	default:
		status = fiber.StatusServiceUnavailable
		if err := s.RenderSnapshot(&buf, snap); err != nil {
			return err
		}
		h.finish(c, rec, domain.OutcomeLoading, "")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Status(status).Send(buf.Bytes())
}

// PreviewPDF serves the rendered resume as an A4 PDF.
func (h *Handler) PreviewPDF(c *fiber.Ctx) error {
	p := previewParams(c)
	rec := domain.NewPreviewRender(p.Template, "pdf", time.Now())
	snap, _, release := h.navigate(c, p)
	defer release()

	switch snap.State {
	case usecase.StateError:
		h.finish(c, rec, domain.OutcomeError, snap.Reason.String())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": snap.Reason.Message(),
			"kind":  snap.Reason.String(),
		})
	case usecase.StateLoading:
		h.finish(c, rec, domain.OutcomeLoading, "")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "preview is still loading"})
	}

	rec.Resolved = snap.Result.Template.Key()
	pdf, hit, err := h.exporter.PDF(c.UserContext(), snap.Result)
	rec.CacheHit = hit
	if err != nil {
		h.log.WithError(err).Error("pdf export failed", map[string]interface{}{"template": rec.Resolved})
		h.finish(c, rec, domain.OutcomeError, "render")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "pdf rendering failed"})
	}
	h.finish(c, rec, domain.OutcomeReady, "")

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="resume-`+rec.Resolved+`.pdf"`)
	return c.Status(fiber.StatusOK).Send(pdf)
}

type templateInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Default bool   `json:"default"`
}

// Templates lists the known layouts.
func (h *Handler) Templates(c *fiber.Ctx) error {
	reg := h.resolver.Registry()
	list := reg.List()
	out := make([]templateInfo, 0, len(list))
	for _, t := range list {
		out = append(out, templateInfo{ID: t.Key(), Name: t.Name(), Default: t == reg.Lookup("")})
	}
	return c.JSON(fiber.Map{"templates": out})
}

// Schema serves the JSON schema preview payloads are checked against.
func (h *Handler) Schema(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "application/schema+json")
	return c.Send(model.Schema())
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// finish records the request best-effort.
func (h *Handler) finish(c *fiber.Ctx, rec *domain.PreviewRender, outcome, kind string) {
	rec.Finish(outcome, kind, time.Now())
	if h.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()
	if err := h.history.Save(ctx, rec); err != nil {
		h.log.WithError(err).Warn("failed to save preview render", map[string]interface{}{"id": rec.ID.String()})
	}
}

// rawQueryParam returns the still-encoded value of key from a raw query
// string. The resolver does the URL decoding itself.
func rawQueryParam(rawQuery, key string) string {
	for rawQuery != "" {
		var pair string
		pair, rawQuery, _ = strings.Cut(rawQuery, "&")
		k, v, _ := strings.Cut(pair, "=")
		if dk, err := url.QueryUnescape(k); err == nil && dk == key {
			return strings.Clone(v)
		}
	}
	return ""
}
