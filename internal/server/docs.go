package server

import (
	"errors"
	"log"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/i2i-labs/tobi-backend/internal/blobstore"
)

// handleDocument serves one corpus object. With link signing enabled the
// request must carry a token whose embedded key matches the path.
func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.URL.EscapedPath(), "/docs/")
	key, err := url.PathUnescape(raw)
	if err != nil || key == "" {
		http.Error(w, "bad document key", http.StatusBadRequest)
		return
	}

	if s.links.Signed() {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusForbidden)
			return
		}
		granted, err := s.links.Verify(token)
		if err != nil || granted != key {
			http.Error(w, "invalid token", http.StatusForbidden)
			return
		}
	}

	data, etag, err := s.corpus.Get(key)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			http.Error(w, "document not found", http.StatusNotFound)
			return
		}
		log.Printf("server: reading document %s: %v", key, err)
		http.Error(w, "document unavailable", http.StatusInternalServerError)
		return
	}

	ctype := mime.TypeByExtension(path.Ext(key))
	if ctype == "" {
		ctype = http.DetectContentType(data)
	}
	w.Header().Set("Content-Type", ctype)
	w.Header().Set("ETag", `"`+etag+`"`)
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.Write(data)
}
