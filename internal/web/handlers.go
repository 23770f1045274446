package web

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/staffdesk/cvimport/internal/importer"
	"github.com/staffdesk/cvimport/internal/logging"
)

// importResponse is the body of POST /api/candidates/import. The
// outcome is embedded so analyze and execute share one shape; the
// execution fields appear only when an execute run hit row errors.
type importResponse struct {
	*importer.BatchOutcome
	ExecutionErrors []string `json:"executionErrors,omitempty"`
	Warning         string   `json:"warning,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, r, map[string]string{"status": "ok"})
}

// handleImport accepts a multipart spreadsheet upload and either
// previews it (action=analyze, the default) or commits it
// (action=execute). The acting user arrives in the X-User-ID header.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logging.FromContext(ctx)

	actorID, err := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	if err != nil || actorID <= 0 {
		writeError(w, r, http.StatusUnauthorized, "missing or invalid X-User-ID header")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "missing file upload: "+err.Error())
		return
	}
	defer file.Close()

	action := strings.ToLower(strings.TrimSpace(r.FormValue("action")))
	if action == "" {
		action = "analyze"
	}
	if action != "analyze" && action != "execute" {
		writeError(w, r, http.StatusBadRequest, "action must be analyze or execute")
		return
	}

	switch ext := strings.ToLower(filepath.Ext(header.Filename)); ext {
	case ".xlsx", ".xls", ".csv":
	default:
		writeError(w, r, http.StatusBadRequest, "unsupported file type, expected .xlsx, .xls or .csv")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	rows, err := importer.DecodeRows(data, header.Filename)
	if err != nil {
		switch {
		case errors.Is(err, importer.ErrEmptyFile),
			errors.Is(err, importer.ErrNoRows),
			errors.Is(err, importer.ErrUnsupportedFormat):
			writeError(w, r, http.StatusBadRequest, err.Error())
		default:
			writeError(w, r, http.StatusBadRequest, "decode spreadsheet: "+err.Error())
		}
		return
	}

	log.Info("import received",
		"file", header.Filename, "action", action, "rows", len(rows), "actor", actorID)

	outcome := s.reconciler.Reconcile(ctx, rows)

	resp := importResponse{BatchOutcome: outcome}
	if action == "execute" {
		execErrs := s.executor.Execute(ctx, outcome, importer.ExecuteOptions{
			FileName: header.Filename,
			ActorID:  actorID,
		})
		if len(execErrs) > 0 {
			resp.ExecutionErrors = execErrs
			resp.Warning = "some rows were committed, others failed"
		}
	}

	writeJSON(w, r, resp)
}
