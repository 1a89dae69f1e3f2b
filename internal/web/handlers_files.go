package web

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/ventes/internal/application"
	"github.com/JonMunkholm/ventes/internal/core"
	"github.com/JonMunkholm/ventes/internal/exporter"
	"github.com/JonMunkholm/ventes/internal/importer"
	"github.com/JonMunkholm/ventes/internal/logging"
)

// multipartOverhead is allowed on top of the file size limit for the form
// boundaries and part headers.
const multipartOverhead = 1 << 20

// ImportResponse is the body of POST /api/import.
type ImportResponse struct {
	application.ImportOutcome
	Code string `json:"code,omitempty"`
}

// handleImport parses the multipart "file" field and stores the accepted rows.
// Row problems come back in the body; only a file that yields nothing is an
// error (422), and it still carries the row errors.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(w, r, fmt.Errorf("%w: limit %d bytes", importer.ErrFileTooLarge, maxSize))
			return
		}
		fail(w, r, badRequest("body", "invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		fail(w, r, errNoFile)
		return
	}
	defer file.Close()

	logging.FromContext(r.Context()).Debug("import received", "file", header.Filename, "size", header.Size)

	out, err := s.service.Import(r.Context(), file, header.Filename)
	switch {
	case errors.Is(err, core.ErrNothingToImport):
		writeJSONStatus(w, r, http.StatusUnprocessableEntity, ImportResponse{
			ImportOutcome: out,
			Code:          core.MapError(err).Code,
		})
	case err != nil:
		fail(w, r, err)
	default:
		writeJSON(w, r, ImportResponse{ImportOutcome: out})
	}
}

// handleExport streams the filtered view as an attachment.
// Query: format=xls|print|xlsx plus the list filters and sort.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	format, err := exporter.ParseFormat(q.Get("format"))
	if err != nil {
		fail(w, r, err)
		return
	}
	filters, err := parseFilters(q)
	if err != nil {
		fail(w, r, err)
		return
	}
	col, dir, err := parseSort(q)
	if err != nil {
		fail(w, r, err)
		return
	}

	// Rendered in memory so an empty selection can still answer with JSON.
	var buf bytes.Buffer
	filename, err := s.service.Export(r.Context(), &buf, application.ExportRequest{
		Format:  format,
		Filters: filters,
		Sort:    col,
		Dir:     dir,
	})
	if err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export write failed", "error", err)
	}
}
