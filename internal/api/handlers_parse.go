package api

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/eternals/internal/admission"
	"github.com/dgallion1/eternals/internal/export"
	"github.com/dgallion1/eternals/internal/parser"
	"github.com/dgallion1/eternals/internal/pipeline"
	"github.com/dgallion1/eternals/internal/report"
	"github.com/go-chi/chi/v5"
)

// parseOptions starts from the configured defaults and applies the
// optional mode, precondition and buffering form values.
func (s *Server) parseOptions(r *http.Request) (admission.Options, error) {
	opts, err := s.cfg.ParseOptions()
	if err != nil {
		return opts, err
	}
	if v := r.FormValue("mode"); v != "" {
		if opts.Mode, err = admission.ParseMode(v); err != nil {
			return opts, err
		}
	}
	if v := r.FormValue("precondition"); v != "" {
		if opts.Precondition, err = admission.ParsePrecondition(v); err != nil {
			return opts, err
		}
	}
	if v := r.FormValue("buffering"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid buffering value %q", v)
		}
		opts.Buffering = b
	}
	return opts, nil
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.parseOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filename, data, err := s.readFile(r, "file")
	if err != nil {
		uploadError(w, err)
		return
	}
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	job := pipeline.NewJob(filename, data, opts)
	job.Title = r.FormValue("title")
	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":   job.ID,
		"status":   pipeline.StatusQueued,
		"poll_url": fmt.Sprintf("/api/parse/%s/status", job.ID),
	})
}

func (s *Server) handleBatchParse(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 10); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	opts, err := s.parseOptions(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.readPart(fh)
		if err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		if !parser.IsSupportedExtension(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		job := pipeline.NewJob(filename, data, opts)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{"filename": filename, "error": err.Error()})
			continue
		}
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/parse/%s/status", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

// jobFromURL resolves the jobID URL parameter. With needResult set it also
// requires the job to have finished parsing.
func (s *Server) jobFromURL(w http.ResponseWriter, r *http.Request, needResult bool) (*pipeline.Job, bool) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return nil, false
	}
	if needResult && job.Result() == nil {
		snap := job.Snapshot()
		if snap.Status == pipeline.StatusFailed {
			jsonError(w, "job failed: "+strings.Join(snap.Progress.Errors, "; "), http.StatusUnprocessableEntity)
			return nil, false
		}
		jsonError(w, "job not finished: "+string(snap.Status), http.StatusConflict)
		return nil, false
	}
	return job, true
}

func (s *Server) handleParseStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r, false)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleParseTable(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r, true)
	if !ok {
		return
	}
	tbl := job.Result().Table

	format := r.URL.Query().Get("format")
	if format == "" || strings.EqualFold(format, "json") {
		writeJSON(w, http.StatusOK, map[string]any{
			"columns": tbl.Header(),
			"records": tbl.Records,
			"count":   tbl.Len(),
		})
		return
	}

	f, err := export.ParseFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	snap := job.Snapshot()
	name := strings.TrimSuffix(snap.Filename, filepath.Ext(snap.Filename))

	// Encode fully before writing headers so a failure can still be reported.
	var buf bytes.Buffer
	if err := export.Write(&buf, f, name, tbl.Header(), tbl.Rows()); err != nil {
		s.log.Error("export failed", "job_id", job.ID, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(f)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleParseReport(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r, true)
	if !ok {
		return
	}
	snap := job.Snapshot()
	var buf bytes.Buffer
	err := report.HTML(&buf, report.Summary{
		Title:   snap.Title,
		Options: snap.Options,
		Pages:   job.Pages(),
		Result:  job.Result(),
	})
	if err != nil {
		s.log.Error("report failed", "job_id", job.ID, "error", err)
		jsonError(w, "report failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleParseSkips(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobFromURL(w, r, true)
	if !ok {
		return
	}
	res := job.Result()
	writeJSON(w, http.StatusOK, map[string]any{
		"skips": res.Skips,
		"stats": res.Stats,
	})
}
