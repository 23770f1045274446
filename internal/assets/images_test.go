package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolve_StoresImage(t *testing.T) {
	payload := []byte("\xff\xd8\xffnot really a jpeg but close enough")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg; charset=binary")
		w.Write(payload)
	}))
	defer srv.Close()

	dir := t.TempDir()
	r := NewImageResolver(dir, "/uploads/images", 5*time.Second)

	got, err := r.Resolve(context.Background(), srv.URL+"/photo.jpg")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !strings.HasPrefix(got, "/uploads/images/") || !strings.HasSuffix(got, ".jpg") {
		t.Errorf("public path = %q", got)
	}

	stored, err := os.ReadFile(filepath.Join(dir, filepath.Base(got)))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(stored) != string(payload) {
		t.Error("stored bytes differ from the response body")
	}
}

func TestResolve_RejectsNonImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>not found page pretending to be a photo</html>"))
	}))
	defer srv.Close()

	r := NewImageResolver(t.TempDir(), "/uploads/images", 5*time.Second)
	if _, err := r.Resolve(context.Background(), srv.URL); err == nil {
		t.Fatal("expected an error for a non-image response")
	}
}

func TestResolve_RejectsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	r := NewImageResolver(t.TempDir(), "/uploads/images", 5*time.Second)
	if _, err := r.Resolve(context.Background(), srv.URL); err == nil {
		t.Fatal("expected an error for a 404")
	}
}

func TestResolve_RejectsBadScheme(t *testing.T) {
	r := NewImageResolver(t.TempDir(), "/uploads/images", 5*time.Second)
	for _, u := range []string{"ftp://host/a.jpg", "file:///etc/passwd", "not a url at all%"} {
		if _, err := r.Resolve(context.Background(), u); err == nil {
			t.Errorf("Resolve(%q) succeeded, want error", u)
		}
	}
}
