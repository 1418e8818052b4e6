package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dgallion1/eternals/internal/compare"
	"github.com/dgallion1/eternals/internal/export"
	"github.com/dgallion1/eternals/internal/fees"
	"github.com/dgallion1/eternals/internal/ranking"
	"github.com/dgallion1/eternals/internal/sheet"
)

// loadMaster reads the configured master sheet, writing the error response
// itself on failure.
func (s *Server) loadMaster(w http.ResponseWriter) (*sheet.Table, bool) {
	tbl, err := sheet.LoadFile(s.cfg.MasterFile, s.cfg.MasterSheet)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			jsonError(w, "master file not found", http.StatusNotFound)
			return nil, false
		}
		s.log.Error("load master failed", "file", s.cfg.MasterFile, "error", err)
		jsonError(w, "failed to load master file", http.StatusInternalServerError)
		return nil, false
	}
	return tbl, true
}

// uploadedSheet loads a sheet from a multipart file field.
func (s *Server) uploadedSheet(w http.ResponseWriter, r *http.Request, field string) (*sheet.Table, bool) {
	filename, data, err := s.readFile(r, field)
	if err != nil {
		uploadError(w, err)
		return nil, false
	}
	if !sheet.IsSupported(filename) {
		jsonError(w, fmt.Sprintf("%s: %s: %s", field, sheet.ErrUnsupportedFormat, filename), http.StatusUnsupportedMediaType)
		return nil, false
	}
	tbl, err := sheet.Load(bytes.NewReader(data), filename, r.FormValue(field+"_sheet"))
	if err != nil {
		jsonError(w, fmt.Sprintf("%s: %s", field, err), errorStatus(err))
		return nil, false
	}
	return tbl, true
}

// writeTable answers with JSON, or with a CSV/XLSX download when the
// format query parameter asks for one.
func (s *Server) writeTable(w http.ResponseWriter, r *http.Request, tbl *sheet.Table) {
	format := r.URL.Query().Get("format")
	if format == "" || strings.EqualFold(format, "json") {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":    tbl.Name,
			"headers": tbl.Headers,
			"rows":    tbl.Rows,
			"count":   tbl.Len(),
		})
		return
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, f, tbl.Name, tbl.Headers, tbl.Rows); err != nil {
		s.log.Error("export failed", "table", tbl.Name, "error", err)
		jsonError(w, "export failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sanitizeFilename(tbl.Name)+"."+string(f)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleMaster(w http.ResponseWriter, r *http.Request) {
	tbl, ok := s.loadMaster(w)
	if !ok {
		return
	}
	s.writeTable(w, r, tbl)
}

func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	var req ranking.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	master, ok := s.loadMaster(w)
	if !ok {
		return
	}
	out, err := ranking.Shortlist(master, req)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	s.writeTable(w, r, out)
}

func (s *Server) handleShortlistUpload(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	stateCol, programCol := r.FormValue("state_column"), r.FormValue("program_column")
	if stateCol == "" || programCol == "" {
		jsonError(w, "state_column and program_column are required", http.StatusBadRequest)
		return
	}
	ranks, ok := s.uploadedSheet(w, r, "ranks")
	if !ok {
		return
	}
	states, programs, err := ranking.FromSheet(ranks)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}

	master, ok := s.loadMaster(w)
	if !ok {
		return
	}
	out, err := ranking.Shortlist(master, ranking.Request{
		StateColumn:   stateCol,
		ProgramColumn: programCol,
		StateRanks:    states,
		ProgramRanks:  programs,
	})
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	s.writeTable(w, r, out)
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 2); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	key1, key2 := r.FormValue("key1"), r.FormValue("key2")
	if key1 == "" || key2 == "" {
		jsonError(w, "key1 and key2 are required", http.StatusBadRequest)
		return
	}
	left, ok := s.uploadedSheet(w, r, "left")
	if !ok {
		return
	}
	right, ok := s.uploadedSheet(w, r, "right")
	if !ok {
		return
	}

	res, err := compare.Diff(left, right, key1, key2)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleFees(w http.ResponseWriter, r *http.Request) {
	if err := s.parseForm(w, r, 1); err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	groupCol, feeCol := r.FormValue("group_column"), r.FormValue("fee_column")
	if groupCol == "" || feeCol == "" {
		jsonError(w, "group_column and fee_column are required", http.StatusBadRequest)
		return
	}
	tbl, ok := s.uploadedSheet(w, r, "file")
	if !ok {
		return
	}

	chart, err := fees.Average(tbl, groupCol, feeCol)
	if err != nil {
		jsonError(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, chart)
}
