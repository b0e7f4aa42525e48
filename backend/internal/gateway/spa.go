package gateway

import (
	"net/http"
	"os"
	"path"
	"path/filepath"

	"marklist/backend/internal/gateway/util"
	"marklist/backend/internal/shared"
)

// SPAHandler serves the frontend from dir. Paths that do not name a file
// fall back to index.html so client-side routes survive a reload.
func SPAHandler(dir string) http.HandlerFunc {
	files := http.FileServer(http.Dir(dir))
	index := filepath.Join(dir, "index.html")

	return func(w http.ResponseWriter, r *http.Request) {
		upath := path.Clean("/" + r.URL.Path)
		if info, err := os.Stat(filepath.Join(dir, filepath.FromSlash(upath))); err == nil && !info.IsDir() {
			files.ServeHTTP(w, r)
			return
		}

		if _, err := os.Stat(index); err != nil {
			util.WriteJSONError(w, http.StatusNotFound, shared.KindNotFound, "Frontend not found")
			return
		}
		http.ServeFile(w, r, index)
	}
}
