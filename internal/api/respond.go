package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/eternals/internal/ranking"
	"github.com/dgallion1/eternals/internal/sheet"
)

// writeJSON encodes v before writing the status, so an unencodable value
// becomes a 500 rather than an empty 200.
func writeJSON(w http.ResponseWriter, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		code = http.StatusInternalServerError
		body, _ = json.Marshal(map[string]string{"error": "encode response: " + err.Error()})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(append(body, '\n'))
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// errorStatus maps domain errors onto HTTP status codes.
func errorStatus(err error) int {
	var (
		missing *sheet.MissingColumnsError
		dup     *ranking.DuplicateRankError
		dupItem *ranking.DuplicateItemError
		invalid *ranking.InvalidRankError
	)
	switch {
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity
	case errors.As(err, &dup), errors.As(err, &dupItem), errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, sheet.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	}
	return http.StatusBadRequest
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

// parseForm limits the body and parses a multipart upload. Callers must
// call r.MultipartForm.RemoveAll when err is nil.
func (s *Server) parseForm(w http.ResponseWriter, r *http.Request, files int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*files+1024*1024) // extra 1MB for form overhead
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return fmt.Errorf("invalid multipart form: %w", err)
	}
	return nil
}

// errTooLarge marks uploads over MaxUploadBytes.
var errTooLarge = errors.New("file exceeds max size")

func (s *Server) readPart(fh *multipart.FileHeader) (string, []byte, error) {
	filename := sanitizeFilename(fh.Filename)
	f, err := fh.Open()
	if err != nil {
		return filename, nil, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, fmt.Errorf("%w (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}
	return filename, data, nil
}

// readFile reads the named multipart file field.
func (s *Server) readFile(r *http.Request, field string) (string, []byte, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File[field]) == 0 {
		return "", nil, fmt.Errorf("%s is required", field)
	}
	return s.readPart(r.MultipartForm.File[field][0])
}

// uploadError writes the response for a failed readFile/readPart.
func uploadError(w http.ResponseWriter, err error) {
	if errors.Is(err, errTooLarge) {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return
	}
	jsonError(w, err.Error(), http.StatusBadRequest)
}
