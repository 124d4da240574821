package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/arcadeworks/arcade-ops/internal/config"
	"github.com/arcadeworks/arcade-ops/internal/database"
	"github.com/arcadeworks/arcade-ops/internal/tpt"
)

// newTestService builds a Service against a throwaway SQLite database
// and temp directories, with weather and assistant left unconfigured.
func newTestService(t *testing.T) (*Service, *chi.Mux) {
	t.Helper()

	tmp := t.TempDir()
	db, err := database.Open("", filepath.Join(tmp, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.EnsureSchema())

	cfg := &config.Config{}
	cfg.TPT.ReportsDir = filepath.Join(tmp, "reports")
	cfg.TPT.UploadDir = filepath.Join(tmp, "uploads")
	cfg.TPT.RetentionDays = 90

	pipeline := tpt.NewPipeline(tpt.NewFileSink(cfg.TPT.ReportsDir), nil)
	history := tpt.NewHistory(db)

	s := NewService(db, pipeline, history, nil, nil, cfg)
	return s, s.Routes()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// multipartUpload builds a multipart request body with one file part and
// optional form fields.
func multipartUpload(t *testing.T, filename, content string, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.Copy(part, strings.NewReader(content))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}
