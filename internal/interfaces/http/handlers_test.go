package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/garyjia/invoice-layout/internal/application/service"
	"github.com/garyjia/invoice-layout/internal/container"
	"github.com/garyjia/invoice-layout/internal/domain/entity"
)

// MockDocumentService is a mock implementation of service.DocumentService
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Designs() []service.DesignSummary {
	return m.Called().Get(0).([]service.DesignSummary)
}

func (m *MockDocumentService) Formats() []string {
	return m.Called().Get(0).([]string)
}

func (m *MockDocumentService) Preview(ctx context.Context, req entity.DocumentRequest) (*service.PreviewResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PreviewResult), args.Error(1)
}

func (m *MockDocumentService) Export(ctx context.Context, req entity.DocumentRequest, format string) (*service.ExportResult, error) {
	args := m.Called(ctx, req, format)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}

func (m *MockDocumentService) GetExport(ctx context.Context, id string) (*entity.ExportRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExportRecord), args.Error(1)
}

func (m *MockDocumentService) ListExports(ctx context.Context, invoiceNumber string, limit int) ([]*entity.ExportRecord, error) {
	args := m.Called(ctx, invoiceNumber, limit)
	return args.Get(0).([]*entity.ExportRecord), args.Error(1)
}

func (m *MockDocumentService) OpenExportPart(ctx context.Context, id string, page int) (*service.ExportPart, error) {
	args := m.Called(ctx, id, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportPart), args.Error(1)
}

func setupRouter(svc service.DocumentService) *gin.Engine {
	cfg := DefaultServerConfig()
	cfg.Mode = gin.TestMode
	return NewServer(cfg, svc, nil, zap.NewNop()).Router()
}

func perform(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

const validBody = `{
	"invoice": {"invoice_number": "INV-7", "currency": "EUR", "items": [{"quantity": 1, "name": "Widget", "unit_price": "9.50"}]},
	"business": {"name": "Acme", "email": "billing@acme.test"},
	"client": {"name": "Globex"},
	"design_id": "modern"
}`

func TestHealthCheck(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Formats").Return([]string{"pdf"})

	w := perform(setupRouter(svc), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

type staticHealth struct{ status *container.HealthStatus }

func (s staticHealth) Health() *container.HealthStatus { return s.status }

func TestHealthCheck_Unhealthy(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Formats").Return([]string{"pdf"})
	health := staticHealth{&container.HealthStatus{
		Overall:    false,
		Components: map[string]container.ComponentHealth{"database": {Message: "ping failed"}},
	}}
	cfg := DefaultServerConfig()
	cfg.Mode = gin.TestMode
	r := NewServer(cfg, svc, health, zap.NewNop()).Router()

	w := perform(r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ping failed")
}

func TestListDesigns(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Designs").Return([]service.DesignSummary{{ID: "classic", Name: "Classic"}})

	w := perform(setupRouter(svc), http.MethodGet, "/api/v1/designs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":"classic"`)
}

func TestPreviewDocument(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Preview", mock.Anything, mock.MatchedBy(func(req entity.DocumentRequest) bool {
		return req.DesignID == "modern" && len(req.Invoice.Items) == 1 && req.Invoice.Items[0].UnitPrice.String() == "9.5"
	})).Return(&service.PreviewResult{PageCount: 1, DesignID: "modern"}, nil)

	w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/preview", []byte(validBody))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"page_count":1`)
	svc.AssertExpectations(t)
}

func TestPreviewDocument_Validation(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{"malformed json", "/api/v1/documents/preview", `{"invoice":`},
		{"bad email", "/api/v1/documents/preview", `{"business": {"email": "not-an-email"}}`},
		{"bad currency", "/api/v1/documents/preview", `{"invoice": {"currency": "EURO"}}`},
		{"bad design id", "/api/v1/documents/preview", `{"design_id": "../etc"}`},
		{"strict negative quantity", "/api/v1/documents/preview?strict=true", `{"invoice": {"items": [{"quantity": -1, "name": "x", "unit_price": 1}]}}`},
		{"strict negative total", "/api/v1/documents/preview?strict=true", `{"invoice": {"total_amount": "-3"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDocumentService)
			w := perform(setupRouter(svc), http.MethodPost, tt.path, []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)
			svc.AssertNotCalled(t, "Preview", mock.Anything, mock.Anything)
		})
	}
}

func TestPreviewDocument_LenientNegativeQuantity(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("Preview", mock.Anything, mock.Anything).Return(&service.PreviewResult{PageCount: 1}, nil)

	body := `{"invoice": {"items": [{"quantity": -1, "name": "x", "unit_price": 1}]}}`
	w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/preview", []byte(body))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestExportDocument(t *testing.T) {
	rec := &entity.ExportRecord{ID: "r1", Format: "png", Parts: []string{"page-1.png"}}

	t.Run("created", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("Export", mock.Anything, mock.Anything, "png").Return(&service.ExportResult{Record: rec}, nil)

		w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/export?format=PNG", []byte(validBody))
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"r1"`)
	})

	t.Run("reused", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("Export", mock.Anything, mock.Anything, "pdf").Return(&service.ExportResult{Record: rec, Reused: true}, nil)

		w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/export", []byte(validBody))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown format", func(t *testing.T) {
		svc := new(MockDocumentService)
		w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/export?format=docx", []byte(validBody))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Export", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("canceled", func(t *testing.T) {
		svc := new(MockDocumentService)
		svc.On("Export", mock.Anything, mock.Anything, "xlsx").Return(nil, context.Canceled)

		w := perform(setupRouter(svc), http.MethodPost, "/api/v1/documents/export?format=xlsx", []byte(validBody))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestGetExport(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("GetExport", mock.Anything, "r1").Return(&entity.ExportRecord{ID: "r1"}, nil)
	svc.On("GetExport", mock.Anything, "nope").Return(nil, service.ErrExportNotFound)
	r := setupRouter(svc)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/api/v1/exports/r1", nil).Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/api/v1/exports/nope", nil).Code)
}

func TestListExports(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("ListExports", mock.Anything, "INV-7", 20).Return([]*entity.ExportRecord(nil), nil)
	r := setupRouter(svc)

	w := perform(r, http.MethodGet, "/api/v1/exports?invoice_number=INV-7", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/v1/exports", nil).Code)
}

func TestDownloadExport(t *testing.T) {
	svc := new(MockDocumentService)
	svc.On("OpenExportPart", mock.Anything, "r1", 2).
		Return(&service.ExportPart{Name: "page-2.png", ContentType: "image/png", Data: []byte("png")}, nil)
	svc.On("OpenExportPart", mock.Anything, "r1", 9).Return(nil, service.ErrPartNotFound)
	r := setupRouter(svc)

	w := perform(r, http.MethodGet, "/api/v1/exports/r1/download?page=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "page-2.png")
	assert.Equal(t, "png", w.Body.String())

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/api/v1/exports/r1/download?page=9", nil).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/api/v1/exports/r1/download?page=x", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	w := perform(setupRouter(new(MockDocumentService)), http.MethodOptions, "/api/v1/documents/preview", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
