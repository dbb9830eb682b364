package main

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"resume-builder/internal/config"
	"resume-builder/internal/logger"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	infra "resume-builder/pkg/infrastructure"

	"github.com/spf13/cobra"
)

var (
	renderTemplate string
	renderDataFile string
	renderOut      string
	renderPDF      bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render one preview from a JSON file",
	Example: `  resume-builder render --template modern --data-file resume.json --out resume.html
  resume-builder render --data-file resume.json --pdf --out resume.pdf`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "base", "layout key (base, minimal, modern)")
	renderCmd.Flags().StringVarP(&renderDataFile, "data-file", "d", "", "resume JSON document")
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "-", "output file, - for stdout")
	renderCmd.Flags().BoolVar(&renderPDF, "pdf", false, "render to PDF instead of HTML")
	_ = renderCmd.MarkFlagRequired("data-file")
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	log, err := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	raw, err := os.ReadFile(renderDataFile)
	if err != nil {
		return fmt.Errorf("read data file: %w", err)
	}

	reg, err := templates.NewRegistry()
	if err != nil {
		return err
	}
	res, err := usecase.NewResolver(reg, log, nil).Resolve(usecase.Params{
		Template: renderTemplate,
		Data:     url.QueryEscape(string(raw)),
	})
	if err != nil {
		var rerr *usecase.ResolveError
		if errors.As(err, &rerr) {
			return fmt.Errorf("%s: %w", rerr.Kind.Message(), err)
		}
		return err
	}

	var out []byte
	if renderPDF {
		renderer := infra.NewChromedpRenderer(cfg.Renderer.ChromePath, cfg.Renderer.Timeout)
		exporter := usecase.NewExporter(renderer, log, nil, usecase.WithRetry(cfg.Renderer.Attempts, 0))
		out, _, err = exporter.PDF(cmd.Context(), res)
	} else {
		out, err = usecase.NewExporter(nil, log, nil).HTML(res)
	}
	if err != nil {
		return err
	}

	if renderOut == "" || renderOut == "-" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(renderOut, out, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	log.Info("wrote preview", map[string]interface{}{"path": renderOut, "template": res.Template.Key(), "bytes": len(out)})
	return nil
}
