package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"compensaciones-losa/internal/api"
	"compensaciones-losa/internal/config"
	"compensaciones-losa/internal/model"
	"compensaciones-losa/internal/store"
)

func testServer(t *testing.T) http.Handler {
	t.Helper()
	require.NoError(t, store.InitDB(filepath.Join(t.TempDir(), "test.db")))
	cfg := &config.Config{
		OutputDir:            t.TempDir(),
		DefaultPaymentStatus: model.Paid,
		DefaultVariant:       model.VariantStandard,
		MaxUploadBytes:       1 << 20,
	}
	return api.NewRouter(cfg)
}

func uploadRequest(t *testing.T, csv string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "trips.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testCSV() string {
	var b strings.Builder
	b.WriteString(strings.Join(model.VariantStandard.RequiredColumns(), ","))
	b.WriteString("\n")
	b.WriteString("2024-01-01,30-45,finished,r-1,app,55,Ana Perez,+5691111111\n")
	b.WriteString("2024-01-20,30-45,finished,r-2,app,20,Luis Soto,+5692222222\n")
	return b.String()
}

func TestCreateRunAndDownload(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, testCSV(), map[string]string{
		"payment_status": "Unpaid",
		"format":         "both",
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RunStatusCompleted, resp["status"])
	runID := resp["run_id"].(string)
	require.NotEmpty(t, runID)

	artifacts := resp["artifacts"].([]interface{})
	require.Len(t, artifacts, 2)

	// Both artifacts download through the API.
	for _, a := range artifacts {
		url := a.(map[string]interface{})["download_url"].(string)
		dl := httptest.NewRecorder()
		srv.ServeHTTP(dl, httptest.NewRequest(http.MethodGet, url, nil))
		assert.Equal(t, http.StatusOK, dl.Code, url)
		assert.NotZero(t, dl.Body.Len())
		assert.Contains(t, dl.Header().Get("Content-Disposition"), "attachment")
	}

	// The run shows up in the listing and detail endpoints.
	list := httptest.NewRecorder()
	srv.ServeHTTP(list, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	require.Equal(t, http.StatusOK, list.Code)
	var runs []map[string]interface{}
	require.NoError(t, json.Unmarshal(list.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0]["id"])

	detail := httptest.NewRecorder()
	srv.ServeHTTP(detail, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+runID, nil))
	assert.Equal(t, http.StatusOK, detail.Code)
}

func TestCreateRunUserErrorReturns422(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, testCSV(), map[string]string{
		"from_date": "2024-02-01",
		"to_date":   "2024-01-01",
	}))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["error"], "invalid date range")

	// The failure is recorded against the run.
	runID := resp["run_id"].(string)
	errRec := httptest.NewRecorder()
	srv.ServeHTTP(errRec, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/v1/runs/%s/errors", runID), nil))
	require.Equal(t, http.StatusOK, errRec.Code)
	var errResp map[string]interface{}
	require.NoError(t, json.Unmarshal(errRec.Body.Bytes(), &errResp))
	assert.Equal(t, float64(1), errResp["count"])
}

func TestCreateRunMissingColumns(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "wrong,header\n1,2\n", nil))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing required columns")
}

func TestCreateRunBadFormValue(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, testCSV(), map[string]string{
		"payment_status": "Maybe",
	}))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid payment status")
}

func TestDeleteRunRemovesArtifacts(t *testing.T) {
	srv := testServer(t)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, testCSV(), nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	runID := resp["run_id"].(string)

	del := httptest.NewRecorder()
	srv.ServeHTTP(del, httptest.NewRequest(http.MethodDelete, "/api/v1/runs/"+runID, nil))
	require.Equal(t, http.StatusOK, del.Code)

	gone := httptest.NewRecorder()
	srv.ServeHTTP(gone, httptest.NewRequest(http.MethodGet, "/api/v1/runs/"+runID, nil))
	assert.Equal(t, http.StatusNotFound, gone.Code)

	dl := httptest.NewRecorder()
	srv.ServeHTTP(dl, httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/download/%s/%s", runID, model.CSVFilename), nil))
	assert.Equal(t, http.StatusNotFound, dl.Code)
}
