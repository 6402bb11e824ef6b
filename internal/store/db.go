package store

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"compensaciones-losa/internal/model"
)

var db *sql.DB

// InitDB opens the sqlite database and creates the tracking tables. Only
// run metadata and artifact records live here; uploaded datasets are never
// persisted.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	runTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		config TEXT,
		variant TEXT,
		status TEXT,
		rows_ingested INTEGER DEFAULT 0,
		rows_exported INTEGER DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);
	`
	errorTable := `
	CREATE TABLE IF NOT EXISTS run_errors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		error_message TEXT,
		user_correctable INTEGER DEFAULT 0,
		created_at DATETIME
	);
	`
	fileTable := `
	CREATE TABLE IF NOT EXISTS run_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT,
		file_name TEXT,
		file_path TEXT,
		file_type TEXT,
		file_size INTEGER DEFAULT 0,
		created_at DATETIME
	);
	`

	for _, stmt := range []string{runTable, errorTable, fileTable} {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveRun stores a new compensation run.
func SaveRun(runID string, cfg model.RunConfig) error {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO runs (id, config, variant, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, cfgJSON, string(cfg.Variant), model.RunStatusPending, now, now)
	return err
}

// UpdateRunStatus updates a run's lifecycle status.
func UpdateRunStatus(runID string, status string) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET status = ?, updated_at = ? WHERE id = ?`, status, now, runID)
	return err
}

// UpdateRunCounts stores the stage row counts once a run finishes.
func UpdateRunCounts(runID string, ingested, exported int) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE runs SET rows_ingested = ?, rows_exported = ?, updated_at = ? WHERE id = ?`,
		ingested, exported, now, runID)
	return err
}

// SaveRunError records an error for a run.
func SaveRunError(runID string, runErr error, userCorrectable bool) error {
	if runErr == nil {
		return nil
	}
	correctable := 0
	if userCorrectable {
		correctable = 1
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_errors (run_id, error_message, user_correctable, created_at) VALUES (?, ?, ?, ?)`,
		runID, runErr.Error(), correctable, now)
	return err
}

// SaveRunFile records an artifact produced by a run.
func SaveRunFile(runID, fileName, filePath, fileType string, fileSize int64) error {
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO run_files (run_id, file_name, file_path, file_type, file_size, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		runID, fileName, filePath, fileType, fileSize, now)
	return err
}

// ListRuns returns all runs with basic info, newest first.
func ListRuns() ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT id, variant, status, rows_ingested, rows_exported, created_at, updated_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []map[string]interface{}
	for rows.Next() {
		var id, variant, status string
		var ingested, exported int
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &variant, &status, &ingested, &exported, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, map[string]interface{}{
			"id":           id,
			"variant":      variant,
			"status":       status,
			"rowsIngested": ingested,
			"rowsExported": exported,
			"createdAt":    createdAt,
			"updatedAt":    updatedAt,
		})
	}
	return runs, rows.Err()
}

// GetRun fetches a run's full config and status.
func GetRun(runID string) (map[string]interface{}, error) {
	var cfgJSON, variant, status string
	var ingested, exported int
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT config, variant, status, rows_ingested, rows_exported, created_at, updated_at FROM runs WHERE id = ?`, runID).
		Scan(&cfgJSON, &variant, &status, &ingested, &exported, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var cfg model.RunConfig
	if err := json.Unmarshal([]byte(cfgJSON), &cfg); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":           runID,
		"config":       cfg,
		"variant":      variant,
		"status":       status,
		"rowsIngested": ingested,
		"rowsExported": exported,
		"createdAt":    createdAt,
		"updatedAt":    updatedAt,
	}, nil
}

// GetRunErrors returns all errors recorded for a run.
func GetRunErrors(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT error_message, user_correctable, created_at FROM run_errors WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errs []map[string]interface{}
	for rows.Next() {
		var msg string
		var correctable int
		var createdAt time.Time
		if err := rows.Scan(&msg, &correctable, &createdAt); err != nil {
			return nil, err
		}
		errs = append(errs, map[string]interface{}{
			"message":         msg,
			"userCorrectable": correctable == 1,
			"createdAt":       createdAt,
		})
	}
	return errs, rows.Err()
}

// GetRunFiles returns the artifacts recorded for a run.
func GetRunFiles(runID string) ([]map[string]interface{}, error) {
	rows, err := db.Query(`SELECT file_name, file_path, file_type, file_size, created_at FROM run_files WHERE run_id = ? ORDER BY created_at`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []map[string]interface{}
	for rows.Next() {
		var name, path, fileType string
		var size int64
		var createdAt time.Time
		if err := rows.Scan(&name, &path, &fileType, &size, &createdAt); err != nil {
			return nil, err
		}
		files = append(files, map[string]interface{}{
			"file_name": name,
			"file_path": path,
			"file_type": fileType,
			"file_size": size,
			"createdAt": createdAt,
		})
	}
	return files, rows.Err()
}

// DeleteRun removes a run and its error and artifact rows.
func DeleteRun(runID string) error {
	for _, stmt := range []string{
		`DELETE FROM run_errors WHERE run_id = ?`,
		`DELETE FROM run_files WHERE run_id = ?`,
		`DELETE FROM runs WHERE id = ?`,
	} {
		if _, err := db.Exec(stmt, runID); err != nil {
			return err
		}
	}
	return nil
}
