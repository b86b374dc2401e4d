package shared

import (
	"embed"
	"net/http"
)

// ServeEmbedded writes an embedded file with the given content type, or 404
// when the file is missing.
func ServeEmbedded(w http.ResponseWriter, embeddedFileSystem embed.FS, path, contentType string) {
	b, err := embeddedFileSystem.ReadFile(path)
	if err != nil {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(b)
}
