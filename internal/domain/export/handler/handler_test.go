package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/po-export/internal/domain/export/service"
	"github.com/FACorreiaa/po-export/internal/domain/extract"
	"github.com/FACorreiaa/po-export/internal/domain/parser"
	"github.com/FACorreiaa/po-export/internal/domain/vendor"
	"github.com/FACorreiaa/po-export/pkg/storage"
)

const orderDoc = `ACME CORP  SO123  2025-01-15  ITEM001  3  19.99
ACME CORP  SO123  2025-01-15  ITEM002  1  5.00`

const storeMapCSV = "name,store_id\nACME CORP,S07\n"

type stubHealth struct{ ok bool }

func (s stubHealth) Available() bool { return s.ok }

func newTestRouter(t *testing.T, extractor extract.Extractor, healthy bool) http.Handler {
	t.Helper()
	return newTestRouterWithLimit(t, extractor, healthy, 32<<20)
}

func newTestRouterWithLimit(t *testing.T, extractor extract.Extractor, healthy bool, maxUpload int64) http.Handler {
	t.Helper()

	registry, err := vendor.LoadDefault()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewExportService(extractor, registry, parser.NewRegistry(), 75, nil, logger)

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	h := New(svc, store, stubHealth{ok: healthy}, maxUpload, logger)

	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func multipartBody(t *testing.T, pdfs map[string][]byte, storeMap string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, data := range pdfs {
		part, err := w.CreateFormFile("pdf", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}

	if storeMap != "" {
		part, err := w.CreateFormFile("store_map", "stores.csv")
		require.NoError(t, err)
		_, err = io.WriteString(part, storeMap)
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestCreateExport(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	body, contentType := multipartBody(t, map[string][]byte{"order.pdf": []byte("%PDF-")}, storeMapCSV)
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "order.csv")
	assert.NotEmpty(t, rec.Header().Get("X-Export-Id"))

	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "store_id,name,sales_id,order_date,item_id,quantity,price", lines[0])
	assert.Equal(t, "S07,ACME CORP,SO123,2025-01-15,ITEM001,3,19.99", lines[1])
}

func TestCreateExport_WithoutStoreMap(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	body, contentType := multipartBody(t, map[string][]byte{"order.pdf": []byte("%PDF-")}, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimRight(rec.Body.String(), "\n"), "\n")
	assert.True(t, strings.HasPrefix(lines[1], ",ACME CORP,"), "store_id column must be empty: %s", lines[1])
}

func TestCreateExport_NoFiles(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	body, contentType := multipartBody(t, nil, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateExport_MalformedMultipart(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	req := httptest.NewRequest(http.MethodPost, "/v1/exports", strings.NewReader("this is not multipart"))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=missing")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, "small but broken bodies are a client error, not an oversize one")
}

func TestCreateExport_UploadTooLarge(t *testing.T) {
	router := newTestRouterWithLimit(t, &extract.MockExtractor{Text: orderDoc}, true, 64)

	body, contentType := multipartBody(t, map[string][]byte{"order.pdf": bytes.Repeat([]byte("x"), 1024)}, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCreateExport_ExtractionFailure(t *testing.T) {
	extractErr := &extract.ExtractionError{Stage: "validate", Err: extract.ErrNotPDF}
	router := newTestRouter(t, &extract.MockExtractor{Err: extractErr}, true)

	body, contentType := multipartBody(t, map[string][]byte{"bad.pdf": []byte("junk")}, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "bad.pdf")
}

func TestCreateExport_BadStoreMap(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	body, contentType := multipartBody(t, map[string][]byte{"order.pdf": []byte("%PDF-")}, "name,store_id\n")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDownloadExport(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	body, contentType := multipartBody(t, map[string][]byte{"order.pdf": []byte("%PDF-")}, "")
	req := httptest.NewRequest(http.MethodPost, "/v1/exports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	exportID := rec.Header().Get("X-Export-Id")
	require.NotEmpty(t, exportID)

	dlReq := httptest.NewRequest(http.MethodGet, "/v1/exports/"+exportID, nil)
	dlRec := httptest.NewRecorder()
	router.ServeHTTP(dlRec, dlReq)

	require.Equal(t, http.StatusOK, dlRec.Code)
	assert.Equal(t, rec.Body.String(), dlRec.Body.String(), "re-download must return the same CSV")
}

func TestDownloadExport_NotFound(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/exports/6ba7b810-9dad-11d1-80b4-00c04fd430c8", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownloadExport_InvalidID(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	req := httptest.NewRequest(http.MethodGet, "/v1/exports/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, true)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealth_Degraded(t *testing.T) {
	router := newTestRouter(t, &extract.MockExtractor{Text: orderDoc}, false)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
