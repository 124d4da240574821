package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/arcadeworks/arcade-ops/internal/tpt"
)

const maxUploadBytes = 32 << 20 // 32MB

// saveUpload copies the uploaded file to a uniquely named temp file under
// the upload dir. The caller owns cleanup.
func (s *Service) saveUpload(r *http.Request) (path, originalName string, err error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", "", err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	dir := s.cfg.TPT.UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", err
	}
	path = filepath.Join(dir, uuid.New().String()+filepath.Ext(header.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, io.LimitReader(file, maxUploadBytes)); err != nil {
		os.Remove(path)
		return "", "", err
	}
	return path, header.Filename, nil
}

// fileTypeFor resolves the declared file type, falling back to the
// upload's extension.
func fileTypeFor(declared, filename string) string {
	if declared != "" {
		return declared
	}
	if strings.EqualFold(filepath.Ext(filename), ".csv") {
		return tpt.FileTypeCSV
	}
	return tpt.FileTypeExcel
}

// HandleTPTCalculate runs the full report pipeline on an uploaded
// spreadsheet. The response is either the complete report or
// {"error": ...}, never both and never a partial report.
func (s *Service) HandleTPTCalculate(w http.ResponseWriter, r *http.Request) {
	path, originalName, err := s.saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer os.Remove(path)

	low, errLow := strconv.ParseFloat(r.FormValue("lowest_tpt_threshold"), 64)
	high, errHigh := strconv.ParseFloat(r.FormValue("highest_tpt_threshold"), 64)
	if errLow != nil || errHigh != nil {
		writeError(w, http.StatusBadRequest, "thresholds must be numeric")
		return
	}

	req := tpt.Request{
		FilePath:              path,
		FileType:              fileTypeFor(r.FormValue("file_type"), originalName),
		LowThreshold:          low,
		HighThreshold:         high,
		IncludeExclusionGroup: r.FormValue("include_birthday_blaster") == "true",
		OriginalFileName:      originalName,
		ForcedHeaderRow:       parseHeaderRow(r.FormValue("header_row")),
	}
	if cm := r.FormValue("column_map"); cm != "" {
		var userMap map[string]string
		if err := json.Unmarshal([]byte(cm), &userMap); err == nil {
			req.UserColumnMap = userMap
		}
	}

	report, snapshotPath, err := s.pipeline.Calculate(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if s.history != nil {
		if err := s.history.Record(report, snapshotPath); err != nil {
			log.Printf("[api] report index write failed (ignored): %v", err)
		}
	}

	writeJSON(w, http.StatusOK, report)
}

// HandleTPTPreview runs column detection only, for the "Detect Columns"
// flow that lets the user correct bindings before calculating.
func (s *Service) HandleTPTPreview(w http.ResponseWriter, r *http.Request) {
	path, originalName, err := s.saveUpload(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer os.Remove(path)

	preview, err := s.pipeline.Preview(path,
		fileTypeFor(r.FormValue("file_type"), originalName),
		parseHeaderRow(r.FormValue("header_row")))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// HandleTPTHistory lists recent indexed reports, newest first.
func (s *Service) HandleTPTHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.history.Recent(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []tpt.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"reports": entries})
}

// HandleTPTPrune deletes indexed reports (and their snapshots) older
// than the retention window.
func (s *Service) HandleTPTPrune(w http.ResponseWriter, r *http.Request) {
	days := s.cfg.TPT.RetentionDays
	if v := r.URL.Query().Get("days"); v != "" {
		if d, err := strconv.Atoi(v); err == nil {
			days = d
		}
	}
	removed, err := s.history.Prune(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": removed})
}

func parseHeaderRow(v string) *int {
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}
