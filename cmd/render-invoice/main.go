// Command render-invoice renders a document request file to PDF, PNG or XLSX
// without the HTTP service or its database.
//
//	render-invoice -in request.json -format pdf -out ./out
//	render-invoice -in - -format preview < request.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-layout/internal/config"
	"github.com/garyjia/invoice-layout/internal/container"
	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
	"github.com/garyjia/invoice-layout/internal/storage"
	"github.com/garyjia/invoice-layout/pkg/utils"
)

type options struct {
	configPath string
	in         string
	out        string
	format     string
	design     string
	accent     string
	verbose    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "optional YAML configuration (fonts, designs, currencies)")
	flag.StringVar(&opts.in, "in", "-", "document request JSON file, - for stdin")
	flag.StringVar(&opts.out, "out", ".", "output directory")
	flag.StringVar(&opts.format, "format", "pdf", "pdf, png, xlsx or preview")
	flag.StringVar(&opts.design, "design", "", "design id, overrides the request")
	flag.StringVar(&opts.accent, "accent", "", "accent color, overrides the request")
	flag.BoolVar(&opts.verbose, "v", false, "verbose logging")
	flag.Parse()

	logger, err := utils.NewCLILogger(opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("Render failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdin io.Reader, stdout io.Writer, logger *zap.Logger) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	req, err := readRequest(opts.in, stdin)
	if err != nil {
		return err
	}
	if opts.design != "" {
		req.DesignID = opts.design
	}
	if opts.accent != "" {
		req.AccentOverride = &opts.accent
	}
	// Local logos resolve beside the request file unless configured.
	if cfg.Logo.BaseDir == "" && opts.in != "-" {
		cfg.Logo.BaseDir = filepath.Dir(opts.in)
	}

	engine, err := container.ProvideEngine(cfg, logger)
	if err != nil {
		return err
	}

	m := engine.Builder.BuildRequest(req)
	logoReport := diag.NewReport()
	m = engine.Logos.Attach(ctx, m, logoReport)
	m.Issues = append(m.Issues, logoReport.Items()...)

	art, err := engine.Assembler.AssembleArtifact(ctx, m, engine.Resolver.Resolve(req.DesignID, req.Accent()))
	if err != nil {
		return err
	}

	format := strings.ToLower(opts.format)
	if format == "preview" {
		views := make([]any, len(art.Pages))
		for i, p := range art.Pages {
			views[i] = p.View()
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"content_hash": art.Hash(),
			"page_count":   len(art.Pages),
			"pages":        views,
		})
	}

	encoder, err := engine.Encoders.Get(format)
	if err != nil {
		return fmt.Errorf("%w: %q", err, format)
	}

	parts, err := encoder.Encode(ctx, art)
	if err != nil {
		return err
	}

	out := storage.NewLocalFileStorage(opts.out, logger)
	for _, p := range parts {
		path := filepath.Join(opts.out, p.Name)
		if err := out.SaveFile(path, p.Data, storage.FileTypeFor(format)); err != nil {
			return err
		}
		fmt.Fprintln(stdout, path)
	}

	logger.Info("Rendered document",
		zap.String("invoice_number", m.Number),
		zap.String("design_id", art.Theme.ID),
		zap.Int("page_count", len(art.Pages)),
		zap.Int("diagnostics", art.Report.Len()))
	return nil
}

func readRequest(path string, stdin io.Reader) (entity.DocumentRequest, error) {
	var req entity.DocumentRequest

	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to decode request: %w", err)
	}
	return req, nil
}
