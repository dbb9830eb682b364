package usecase

import (
	"fmt"
	"net/url"

	"resume-builder/internal/logger"
	"resume-builder/internal/metrics"
	"resume-builder/internal/model"
	"resume-builder/internal/templates"
)

// Params are the raw entry parameters of a preview. Data is still URL
// encoded. An empty value counts as absent.
type Params struct {
	Template string
	Data     string
}

// Result is a render-ready pair.
type Result struct {
	Template *templates.Template
	Data     model.ResumeData
}

// Resolver turns Params into a Result. It holds no mutable state, so one
// Resolver may serve any number of goroutines.
type Resolver struct {
	registry *templates.Registry
	log      logger.Logger
	metrics  *metrics.Metrics
}

func NewResolver(reg *templates.Registry, log logger.Logger, m *metrics.Metrics) *Resolver {
	return &Resolver{registry: reg, log: log, metrics: m}
}

func (r *Resolver) Registry() *templates.Registry { return r.registry }

// Resolve decodes p.Data and picks the layout named by p.Template, falling
// back to the default layout for unknown names.
func (r *Resolver) Resolve(p Params) (Result, error) {
	if p.Template == "" || p.Data == "" {
		err := &ResolveError{Kind: MissingParameter, Err: missingErr(p)}
		r.fail(p, err)
		return Result{}, err
	}

	decoded, err := url.QueryUnescape(p.Data)
	if err != nil {
		rerr := &ResolveError{Kind: InvalidPayload, Err: fmt.Errorf("url decode: %w", err)}
		r.fail(p, rerr)
		return Result{}, rerr
	}

	data, err := model.Decode([]byte(decoded))
	if err != nil {
		rerr := &ResolveError{Kind: InvalidPayload, Err: err}
		r.fail(p, rerr)
		return Result{}, rerr
	}

	tpl := r.registry.Lookup(p.Template)
	if tpl.Key() != p.Template {
		r.log.Debug("unknown template, using default", map[string]interface{}{
			"requested": p.Template,
			"template":  tpl.Key(),
		})
	}
	r.metrics.ObserveResolution("ready", tpl.Key())
	return Result{Template: tpl, Data: data}, nil
}

func (r *Resolver) fail(p Params, err *ResolveError) {
	r.metrics.ObserveResolution(err.Kind.String(), "")
	r.log.WithError(err).Warn("preview resolution failed", map[string]interface{}{
		"kind":         err.Kind.String(),
		"template":     p.Template,
		"data_present": p.Data != "",
	})
}

func missingErr(p Params) error {
	switch {
	case p.Template == "" && p.Data == "":
		return fmt.Errorf("template and data are absent")
	case p.Template == "":
		return fmt.Errorf("template is absent")
	default:
		return fmt.Errorf("data is absent")
	}
}
