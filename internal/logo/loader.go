// Package logo fetches and normalizes business logo images.
package logo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/garyjia/invoice-layout/internal/diag"
	"github.com/garyjia/invoice-layout/internal/document"
	"github.com/garyjia/invoice-layout/internal/surface"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

const component = "logo"

// DefaultMaxPixels bounds the decoded size of a logo.
const DefaultMaxPixels = 4096 * 4096

var (
	// ErrLocalDisabled is returned for file references when no base directory is configured
	ErrLocalDisabled = errors.New("local logo files are disabled")
	// ErrOutsideBaseDir is returned for file references that leave the base directory
	ErrOutsideBaseDir = errors.New("logo path is outside the logo directory")
	// ErrFileUnavailable is returned when a logo file inside the base directory cannot be read
	ErrFileUnavailable = errors.New("logo file unavailable")
	// ErrHostNotAllowed is returned for URLs whose host is not in the allow list
	ErrHostNotAllowed = errors.New("logo host not allowed")
	// ErrTooManyPixels is returned for images larger than the pixel budget
	ErrTooManyPixels = errors.New("logo exceeds pixel budget")
)

// Config holds logo loading limits. Local files are read only below BaseDir;
// an empty BaseDir disables them. An empty AllowedHosts accepts any host.
type Config struct {
	FetchTimeout time.Duration
	MaxBytes     int64
	MaxPixels    int64
	BaseDir      string
	AllowedHosts []string
}

// Loader reads logos from local files, http(s) URLs and data URIs. PNG and
// JPEG data is kept as is; GIF and WebP are re-encoded as PNG.
type Loader struct {
	client    *http.Client
	maxBytes  int64
	maxPixels int64
	baseDir   string
	hosts     map[string]struct{}
	logger    *zap.Logger
}

// NewLoader creates a logo loader.
func NewLoader(cfg Config, logger *zap.Logger) *Loader {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 10 * time.Second
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 2 << 20
	}
	if cfg.MaxPixels <= 0 {
		cfg.MaxPixels = DefaultMaxPixels
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	var hosts map[string]struct{}
	if len(cfg.AllowedHosts) > 0 {
		hosts = make(map[string]struct{}, len(cfg.AllowedHosts))
		for _, h := range cfg.AllowedHosts {
			hosts[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
		}
	}

	baseDir := cfg.BaseDir
	if baseDir != "" {
		if abs, err := filepath.Abs(baseDir); err == nil {
			baseDir = abs
		}
	}

	return &Loader{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		maxBytes:  cfg.MaxBytes,
		maxPixels: cfg.MaxPixels,
		baseDir:   baseDir,
		hosts:     hosts,
		logger:    logger,
	}
}

// Load fetches and decodes the image at ref. Every failure wraps
// diag.ErrImageLoad.
func (l *Loader) Load(ctx context.Context, ref string) (*surface.Image, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: empty reference", diag.ErrImageLoad)
	}

	data, err := l.read(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", diag.ErrImageLoad, err)
	}
	img, err := Normalize(data, l.maxPixels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", diag.ErrImageLoad, err)
	}
	return img, nil
}

// Attach loads the model's logo and returns a copy of the model carrying it.
// When there is no logo URL, or loading fails, the model is returned as is and
// the renderer draws the initial badge; failures are recorded in report.
func (l *Loader) Attach(ctx context.Context, m *document.Model, report *diag.Report) *document.Model {
	if m == nil || m.Business.LogoURL == "" || m.Business.Logo != nil {
		return m
	}
	img, err := l.Load(ctx, m.Business.LogoURL)
	if err != nil {
		report.Add(diag.ErrImageLoad, component, err.Error())
		l.logger.Warn("Logo unavailable, drawing badge",
			zap.String("logo_url", m.Business.LogoURL),
			zap.Error(err))
		return m
	}
	return m.WithLogo(img)
}

func (l *Loader) read(ctx context.Context, ref string) ([]byte, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		return decodeDataURI(ref)
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref)
	default:
		return l.readFile(strings.TrimPrefix(ref, "file://"))
	}
}

func (l *Loader) fetch(ctx context.Context, ref string) ([]byte, error) {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("malformed logo url")
	}
	if l.hosts != nil {
		if _, ok := l.hosts[strings.ToLower(u.Hostname())]; !ok {
			return nil, ErrHostNotAllowed
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch logo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return l.limited(resp.Body)
}

func (l *Loader) readFile(ref string) ([]byte, error) {
	path, err := l.localPath(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		l.logger.Debug("Logo file unreadable", zap.String("path", path), zap.Error(err))
		return nil, ErrFileUnavailable
	}
	defer f.Close()

	if info, err := f.Stat(); err != nil || !info.Mode().IsRegular() {
		return nil, ErrFileUnavailable
	}
	return l.limited(f)
}

// localPath resolves ref below the base directory. Symlinks are followed
// before the containment check.
func (l *Loader) localPath(ref string) (string, error) {
	if l.baseDir == "" {
		return "", ErrLocalDisabled
	}

	path := filepath.Clean(ref)
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	if !within(l.baseDir, path) {
		return "", ErrOutsideBaseDir
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		l.logger.Debug("Logo file unreadable", zap.String("path", path), zap.Error(err))
		return "", ErrFileUnavailable
	}
	base, err := filepath.EvalSymlinks(l.baseDir)
	if err != nil {
		return "", ErrFileUnavailable
	}
	if !within(base, resolved) {
		return "", ErrOutsideBaseDir
	}
	return resolved, nil
}

func within(base, path string) bool {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) && !filepath.IsAbs(rel)
}

func (l *Loader) limited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read logo: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("logo exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}

func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("malformed data uri")
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data uri: %w", err)
	}
	return data, nil
}

// Normalize decodes data and returns it as a PNG or JPEG surface image.
// Images declaring more than maxPixels pixels are rejected from their header,
// before any pixel buffer is allocated.
func Normalize(data []byte, maxPixels int64) (*surface.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("image has no pixels")
	}
	if maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}

	switch format {
	case "png", "jpeg":
		// Decode fully so truncated files are rejected here and not by an encoder.
		if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", format, err)
		}
		img := surface.NewImage(format, cfg.Width, cfg.Height, data)
		return &img, nil
	default:
		src, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", format, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, src); err != nil {
			return nil, fmt.Errorf("failed to re-encode %s: %w", format, err)
		}
		img := surface.NewImage("png", cfg.Width, cfg.Height, buf.Bytes())
		return &img, nil
	}
}
