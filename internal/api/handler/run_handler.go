package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"compensaciones-losa/internal/config"
	"compensaciones-losa/internal/model"
	"compensaciones-losa/internal/pipeline"
	"compensaciones-losa/internal/store"
	"compensaciones-losa/pkg/utils"
)

// previewLimit bounds the number of rows echoed back in the upload response.
const previewLimit = 50

// RunHandler serves the compensation-run endpoints.
type RunHandler struct {
	cfg    *config.Config
	output *utils.OutputManager
}

// NewRunHandler creates a run handler backed by the given config.
func NewRunHandler(cfg *config.Config) *RunHandler {
	return &RunHandler{
		cfg:    cfg,
		output: utils.NewOutputManager(cfg.OutputDir),
	}
}

// CreateRun executes a compensation run over an uploaded CSV
// @Summary Create a compensation run
// @Description Upload a trip CSV with filter settings, run the pipeline synchronously and get back the run summary with artifact download URLs
// @Tags runs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Trip CSV upload"
// @Param from_date formData string false "Inclusive range start (YYYY-MM-DD, defaults to the earliest parsed date)"
// @Param to_date formData string false "Inclusive range end (YYYY-MM-DD, defaults to the latest parsed date)"
// @Param payment_status formData string false "Paid or Unpaid (defaults to the server default)"
// @Param drop_zero_amount formData boolean false "Exclude zero-reimbursement rows"
// @Param variant formData string false "standard or cabify"
// @Param format formData string false "csv, xlsx or both"
// @Success 200 {object} map[string]interface{} "Run summary"
// @Failure 400 {object} map[string]interface{} "Invalid upload or settings"
// @Failure 422 {object} map[string]interface{} "Run halted by a user-correctable condition"
// @Router /runs [post]
func (h *RunHandler) CreateRun(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid multipart upload: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("failed to read upload %q: %w", header.Filename, err))
		return
	}

	cfg, err := h.runConfigFromForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID := uuid.New().String()
	if err := store.SaveRun(runID, cfg); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to save run"))
		return
	}
	store.UpdateRunStatus(runID, model.RunStatusRunning)

	// The pipeline runs synchronously: one upload, one run, one response.
	ds, stats, err := pipeline.Run(raw, cfg)
	if err != nil {
		store.UpdateRunStatus(runID, model.RunStatusFailed)
		store.SaveRunError(runID, err, pipeline.IsUserError(err))
		status := http.StatusBadRequest
		if pipeline.IsUserError(err) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]interface{}{
			"run_id": runID,
			"status": model.RunStatusFailed,
			"error":  err.Error(),
		})
		return
	}

	artifacts, err := h.writeArtifacts(runID, ds, cfg)
	if err != nil {
		store.UpdateRunStatus(runID, model.RunStatusFailed)
		store.SaveRunError(runID, err, false)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to write artifacts: %w", err))
		return
	}

	store.UpdateRunCounts(runID, stats.RowsIngested, stats.RowsExported)
	store.UpdateRunStatus(runID, model.RunStatusCompleted)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id":    runID,
		"status":    model.RunStatusCompleted,
		"stats":     stats,
		"artifacts": artifacts,
		"preview":   previewRows(ds),
		"createdAt": time.Now().UTC(),
	})
}

// runConfigFromForm assembles a RunConfig from the upload form fields,
// falling back to the server defaults for anything omitted.
func (h *RunHandler) runConfigFromForm(r *http.Request) (model.RunConfig, error) {
	cfg := model.RunConfig{
		PaymentStatus:    h.cfg.DefaultPaymentStatus,
		DropZeroAmount:   h.cfg.DefaultDropZero,
		Variant:          h.cfg.DefaultVariant,
		Format:           model.FormatCSV,
		AlternateShading: true,
		ConditionalFills: true,
	}

	if v := r.FormValue("variant"); v != "" {
		variant, err := model.ParseVariant(v)
		if err != nil {
			return cfg, err
		}
		cfg.Variant = variant
	}
	if v := r.FormValue("payment_status"); v != "" {
		status, err := model.ParsePaymentStatus(v)
		if err != nil {
			return cfg, err
		}
		cfg.PaymentStatus = status
	}
	if v := r.FormValue("drop_zero_amount"); v != "" {
		drop, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("drop_zero_amount must be a boolean, got %q", v)
		}
		cfg.DropZeroAmount = drop
	}
	if v := r.FormValue("format"); v != "" {
		format, ok := model.ParseExportFormat(v)
		if !ok {
			return cfg, fmt.Errorf("format must be csv, xlsx or both, got %q", v)
		}
		cfg.Format = format
	}

	var err error
	if cfg.FromDate, err = parseFormDate(r, "from_date"); err != nil {
		return cfg, err
	}
	if cfg.ToDate, err = parseFormDate(r, "to_date"); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func parseFormDate(r *http.Request, field string) (*time.Time, error) {
	v := r.FormValue(field)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("%s must be YYYY-MM-DD, got %q", field, v)
	}
	return &t, nil
}

// writeArtifacts renders the configured export formats to the run's output
// directory and records them in the store.
func (h *RunHandler) writeArtifacts(runID string, ds *model.Dataset, cfg model.RunConfig) ([]map[string]interface{}, error) {
	var artifacts []map[string]interface{}

	write := func(fileName string, render func(f *os.File) error) error {
		path, err := h.output.ArtifactPath(runID, fileName)
		if err != nil {
			return err
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", fileName, err)
		}
		if err := render(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}

		size, _ := h.output.FileSize(path)
		if err := store.SaveRunFile(runID, fileName, path, h.output.FileType(fileName), size); err != nil {
			return err
		}
		artifacts = append(artifacts, map[string]interface{}{
			"file_name":    fileName,
			"file_type":    h.output.FileType(fileName),
			"file_size":    size,
			"download_url": h.output.DownloadURL(runID, fileName),
		})
		return nil
	}

	if cfg.Format == model.FormatCSV || cfg.Format == model.FormatBoth {
		err := write(model.CSVFilename, func(f *os.File) error {
			return pipeline.WriteCSV(f, ds)
		})
		if err != nil {
			return nil, err
		}
	}
	if cfg.Format == model.FormatXLSX || cfg.Format == model.FormatBoth {
		err := write(cfg.Variant.WorkbookFilename(), func(f *os.File) error {
			return pipeline.WriteWorkbook(f, ds, pipeline.WorkbookOptions{
				AlternateShading: cfg.AlternateShading,
				ConditionalFills: cfg.ConditionalFills,
			})
		})
		if err != nil {
			return nil, err
		}
	}
	return artifacts, nil
}

// previewRows renders a bounded slice of the dataset for the response body.
func previewRows(ds *model.Dataset) map[string]interface{} {
	limit := previewLimit
	if ds.Len() < limit {
		limit = ds.Len()
	}
	rows := make([][]string, 0, limit)
	for _, rec := range ds.Records[:limit] {
		rows = append(rows, pipeline.RowValues(rec, ds.Variant))
	}
	return map[string]interface{}{
		"columns":   ds.Columns(),
		"rows":      rows,
		"total":     ds.Len(),
		"truncated": ds.Len() > limit,
	}
}

// ListRuns retrieves all compensation runs
// @Summary List runs
// @Description Get all runs with their status and row counts, newest first
// @Tags runs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of runs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs [get]
func (h *RunHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := store.ListRuns()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to fetch runs"))
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// GetRun retrieves one compensation run
// @Summary Get run
// @Description Retrieve the config, status and row counts of a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run details"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Router /runs/{id} [get]
func (h *RunHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	run, err := store.GetRun(runID)
	if err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("run not found"))
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// GetRunErrors retrieves the errors recorded for a run
// @Summary Get run errors
// @Description Retrieve the errors that halted or were recorded during a run
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run errors"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/errors [get]
func (h *RunHandler) GetRunErrors(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	errs, err := store.GetRunErrors(runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to retrieve errors"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"errors": errs,
		"count":  len(errs),
	})
}

// GetRunFiles retrieves the artifacts recorded for a run
// @Summary Get run artifacts
// @Description Retrieve the downloadable artifacts a run produced
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run artifacts"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id}/files [get]
func (h *RunHandler) GetRunFiles(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	files, err := store.GetRunFiles(runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to retrieve files"))
		return
	}
	for _, f := range files {
		if name, ok := f["file_name"].(string); ok {
			f["download_url"] = h.output.DownloadURL(runID, name)
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"run_id": runID,
		"files":  files,
		"count":  len(files),
	})
}

// DeleteRun deletes a run and its artifacts
// @Summary Delete run
// @Description Delete a run, its tracked errors and its artifact files
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} map[string]interface{} "Run deleted"
// @Failure 404 {object} map[string]interface{} "Run not found"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /runs/{id} [delete]
func (h *RunHandler) DeleteRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["id"]
	if _, err := store.GetRun(runID); err != nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("run not found"))
		return
	}

	files, _ := store.GetRunFiles(runID)
	for _, f := range files {
		if path, ok := f["file_path"].(string); ok {
			os.Remove(path)
		}
	}
	os.RemoveAll(filepath.Join(h.cfg.OutputDir, runID))

	if err := store.DeleteRun(runID); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("failed to delete run"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Run and artifacts deleted",
		"run_id":        runID,
		"files_deleted": len(files),
	})
}

// DownloadArtifact serves a run artifact for download
// @Summary Download artifact
// @Description Download one of a run's exported files
// @Tags files
// @Produce application/octet-stream
// @Param runID path string true "Run ID"
// @Param filename path string true "Artifact file name"
// @Success 200 {file} file "File download"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{runID}/{filename} [get]
func (h *RunHandler) DownloadArtifact(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	runID, fileName := vars["runID"], vars["filename"]

	path, err := h.output.ArtifactPath(runID, fileName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		writeError(w, http.StatusNotFound, fmt.Errorf("file not found"))
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]interface{}{"error": err.Error()})
}
