package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/staffdesk/cvimport/internal/config"
	"github.com/staffdesk/cvimport/internal/importer"
)

// nullStore satisfies the importer storage interfaces with canned
// answers so the handler tests exercise the HTTP layer only.
type nullStore struct {
	created int
}

func (s *nullStore) FindByReferenceCode(context.Context, string) (*importer.ExistingCandidate, error) {
	return nil, nil
}
func (s *nullStore) FindByPassport(context.Context, string) (*importer.ExistingCandidate, error) {
	return nil, nil
}
func (s *nullStore) FindByFullName(context.Context, string) (*importer.ExistingCandidate, error) {
	return nil, nil
}
func (s *nullStore) Create(context.Context, *importer.Candidate, int64, string) (int64, error) {
	s.created++
	return int64(s.created), nil
}
func (s *nullStore) Update(context.Context, int64, *importer.Candidate, int64) error { return nil }
func (s *nullStore) GetReconcileState(context.Context, int64) (*importer.ReconcileState, error) {
	return &importer.ReconcileState{Status: importer.StatusNew}, nil
}

type nullPipeline struct{}

func (nullPipeline) DeactivateAssignments(context.Context, int64, int64, string) (int64, error) {
	return 0, nil
}
func (nullPipeline) LogActivity(context.Context, importer.ActivityEntry) error { return nil }

type nullImages struct{}

func (nullImages) Resolve(_ context.Context, url string) (string, error) { return url, nil }

type nullNotifier struct{}

func (nullNotifier) NotifyImport(context.Context, importer.ImportSummary) error { return nil }

func testServer(t *testing.T, store *nullStore) *Server {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Assets.Dir = t.TempDir()
	cfg.Assets.PublicPrefix = "/uploads/images"
	cfg.Rate.Enabled = false

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := importer.NewResolver(store, log)
	reconciler := importer.NewReconciler(resolver, log)
	executor := importer.NewExecutor(store, nullPipeline{}, nullImages{}, nullNotifier{}, log)

	return NewServer(cfg, reconciler, executor, nil)
}

func multipartUpload(t *testing.T, filename string, content []byte, action string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(content)
	if action != "" {
		w.WriteField("action", action)
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func TestHandleImport_RequiresActor(t *testing.T) {
	srv := testServer(t, &nullStore{})
	body, contentType := multipartUpload(t, "a.csv", []byte("Name\nJane\n"), "")

	for _, header := range []string{"", "abc", "0", "-3"} {
		req := httptest.NewRequest(http.MethodPost, "/api/candidates/import", bytes.NewReader(body.Bytes()))
		req.Header.Set("Content-Type", contentType)
		if header != "" {
			req.Header.Set("X-User-ID", header)
		}
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("X-User-ID %q: status = %d, want 401", header, rec.Code)
		}
	}
}

func TestHandleImport_RejectsUnknownExtension(t *testing.T) {
	srv := testServer(t, &nullStore{})
	body, contentType := multipartUpload(t, "cv.pdf", []byte("%PDF"), "")

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImport_RejectsBadAction(t *testing.T) {
	srv := testServer(t, &nullStore{})
	body, contentType := multipartUpload(t, "a.csv", []byte("Name\nJane\n"), "dryrun")

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleImport_AnalyzeDoesNotWrite(t *testing.T) {
	store := &nullStore{}
	srv := testServer(t, store)

	csv := []byte("الاسم الكامل,رقم الجواز\nFatima Noor,P1\nAmina Yusuf,P2\n")
	body, contentType := multipartUpload(t, "batch.csv", csv, "")

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.created != 0 {
		t.Errorf("analyze created %d rows, want 0", store.created)
	}

	var resp struct {
		TotalRows  int `json:"totalRows"`
		NewRecords int `json:"newRecords"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.TotalRows != 2 || resp.NewRecords != 2 {
		t.Errorf("response = %+v", resp)
	}
}

func TestHandleImport_ExecuteCommits(t *testing.T) {
	store := &nullStore{}
	srv := testServer(t, store)

	csv := []byte("الاسم الكامل,رقم الجواز\nFatima Noor,P1\n")
	body, contentType := multipartUpload(t, "batch.csv", csv, "execute")

	req := httptest.NewRequest(http.MethodPost, "/api/candidates/import", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if store.created != 1 {
		t.Errorf("execute created %d rows, want 1", store.created)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, &nullStore{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestHandleHealth_DatabaseDown(t *testing.T) {
	store := &nullStore{}
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = time.Minute
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Assets.Dir = t.TempDir()
	cfg.Assets.PublicPrefix = "/uploads/images"

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	resolver := importer.NewResolver(store, log)
	reconciler := importer.NewReconciler(resolver, log)
	executor := importer.NewExecutor(store, nullPipeline{}, nullImages{}, nullNotifier{}, log)
	srv := NewServer(cfg, reconciler, executor, func(context.Context) error {
		return errors.New("pool closed")
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestSanitizeErrorMessage(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain message", "plain message"},
		{"first line\nsecond line", "first line"},
		{"connect to postgres://u:p@host failed", "internal error"},
		{"dial tcp 10.0.0.1:5432: timeout", "internal error"},
	}
	for _, tt := range tests {
		if got := sanitizeErrorMessage(tt.in); got != tt.want {
			t.Errorf("sanitizeErrorMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
