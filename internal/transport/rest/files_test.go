package rest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"loanlook/internal/clients"

	"github.com/go-chi/chi/v5"
)

func TestServeFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := clients.NewLocalStorage(dir, "/files", "")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ab12_report.xlsx"), []byte("xlsx"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	r := chi.NewRouter()
	r.Get("/files/{file}", ServeFiles(store))

	tests := []struct {
		path string
		code int
	}{
		{"/files/ab12_report.xlsx", http.StatusOK},
		{"/files/missing.xlsx", http.StatusNotFound},
		{"/files/..", http.StatusNotFound},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != tt.code {
			t.Errorf("%s: expected %d, got %d", tt.path, tt.code, w.Code)
		}
		if tt.code == http.StatusOK {
			if got := w.Header().Get("Content-Disposition"); got != `attachment; filename="report.xlsx"` {
				t.Errorf("unexpected disposition %q", got)
			}
			if w.Body.String() != "xlsx" {
				t.Errorf("unexpected body %q", w.Body.String())
			}
		}
	}
}

func TestHealth(t *testing.T) {
	w := httptest.NewRecorder()
	Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}
