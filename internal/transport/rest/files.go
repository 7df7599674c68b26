package rest

import (
	"fmt"
	"net/http"
	"os"

	"loanlook/internal/clients"

	"github.com/go-chi/chi/v5"
)

type FileLocator interface {
	Path(name string) (string, error)
}

// ServeFiles serves exported files as attachments named without their
// storage prefix.
func ServeFiles(files FileLocator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := chi.URLParam(r, "file")
		path, err := files.Path(file)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", clients.OriginalName(file)))
		http.ServeFile(w, r, path)
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	Success(w, "ok", nil)
}
