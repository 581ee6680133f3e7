package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const request = `{
	"invoice": {
		"invoice_number": "INV-100",
		"invoice_date": "2024-07-01T00:00:00Z",
		"currency": "GBP",
		"items": [
			{"quantity": 2, "name": "Consulting", "unit_price": "150.00"},
			{"quantity": 1, "name": "Travel", "unit_price": "42.10"}
		]
	},
	"business": {"name": "Acme Ltd"},
	"client": {"name": "Globex"}
}`

func TestRun_PDF(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	out := t.TempDir()

	var stdout bytes.Buffer
	err := run(context.Background(), options{in: "-", out: out, format: "pdf", design: "modern"},
		strings.NewReader(request), &stdout, zap.NewNop())
	require.NoError(t, err)

	path := filepath.Join(out, "document.pdf")
	assert.Equal(t, path+"\n", stdout.String())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRun_Preview(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	var stdout bytes.Buffer
	err := run(context.Background(), options{in: "-", format: "preview", accent: "#FF0000"},
		strings.NewReader(request), &stdout, zap.NewNop())
	require.NoError(t, err)

	var got struct {
		ContentHash string            `json:"content_hash"`
		PageCount   int               `json:"page_count"`
		Pages       []json.RawMessage `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	assert.Equal(t, 1, got.PageCount)
	assert.Len(t, got.Pages, 1)
	assert.NotEmpty(t, got.ContentHash)
}

func TestRun_Errors(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	ctx := context.Background()

	err := run(ctx, options{in: "-", format: "docx", out: t.TempDir()}, strings.NewReader(request), &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)

	err = run(ctx, options{in: "-", format: "pdf"}, strings.NewReader("{"), &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)

	err = run(ctx, options{in: filepath.Join(t.TempDir(), "missing.json"), format: "pdf"}, nil, &bytes.Buffer{}, zap.NewNop())
	assert.Error(t, err)
}

func TestRun_LogoBesideRequestFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()

	var logo bytes.Buffer
	require.NoError(t, png.Encode(&logo, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), logo.Bytes(), 0o644))

	withLogo := strings.Replace(request, `"business": {"name": "Acme Ltd"}`,
		`"business": {"name": "Acme Ltd", "logo_url": "logo.png"}`, 1)
	in := filepath.Join(dir, "request.json")
	require.NoError(t, os.WriteFile(in, []byte(withLogo), 0o644))

	var stdout bytes.Buffer
	require.NoError(t, run(context.Background(), options{in: in, format: "preview"}, nil, &stdout, zap.NewNop()))

	var got struct {
		Pages []struct {
			Images map[string]json.RawMessage `json:"images"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
	require.Len(t, got.Pages, 1)
	assert.Len(t, got.Pages[0].Images, 1)
}
