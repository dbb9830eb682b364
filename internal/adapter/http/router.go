package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	ReadTimeout time.Duration
	// ReadBufferSize bounds the request line, which carries the whole
	// resume. Zero keeps fiber's 4 KiB default.
	ReadBufferSize int
	// MetricsPath is left unmounted when empty or Gatherer is nil.
	MetricsPath string
	Gatherer    prometheus.Gatherer
}

// NewRouter builds the fiber app serving the preview endpoints.
func NewRouter(h *Handler, opts RouterOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "resume-builder",
		ReadTimeout:           opts.ReadTimeout,
		ReadBufferSize:        opts.ReadBufferSize,
		DisableStartupMessage: true,
	})
	app.Use(recover.New())

	app.Get("/healthz", h.Health)
	app.Get("/templates", h.Templates)
	app.Get("/schema", h.Schema)
	app.Get("/preview", h.Preview)
	app.Get("/preview.pdf", h.PreviewPDF)

	if opts.MetricsPath != "" && opts.Gatherer != nil {
		app.Get(opts.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
	return app
}
