package data

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/tradepulse/pkg/profile"
	"github.com/mchmarny/tradepulse/pkg/risk"
)

const (
	insertRunSQL = `INSERT INTO import_run (
			id, imported_at, reference_date, exporters, importers, industries,
			source_exporters, source_importers, source_news
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	insertExporterSQL = `INSERT INTO exporter (id, run_id, industry, state, msme, profile)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	insertImporterSQL = `INSERT INTO importer (id, run_id, industry, country, profile)
		VALUES (?, ?, ?, ?, ?)
	`

	insertRiskSQL = `INSERT INTO industry_risk (industry, run_id, risk) VALUES (?, ?, ?)`

	selectLastRunSQL = `SELECT
			id, imported_at, reference_date, exporters, importers, industries,
			COALESCE(source_exporters, ''), COALESCE(source_importers, ''), COALESCE(source_news, '')
		FROM import_run
		ORDER BY imported_at DESC, rowid DESC
		LIMIT 1
	`

	selectExporterSQL  = `SELECT profile FROM exporter WHERE id = ? ORDER BY rowid LIMIT 1`
	selectImporterSQL  = `SELECT profile FROM importer WHERE id = ? ORDER BY rowid LIMIT 1`
	selectExportersSQL = `SELECT profile FROM exporter ORDER BY rowid`
	selectImportersSQL = `SELECT profile FROM importer ORDER BY rowid`
	selectRisksSQL     = `SELECT industry, risk FROM industry_risk`

	importTimeFormat = time.RFC3339
)

var clearSQL = []string{
	"DELETE FROM exporter",
	"DELETE FROM importer",
	"DELETE FROM industry_risk",
}

// Artifacts are the preprocessed datasets the matcher works from.
type Artifacts struct {
	Exporters     []*profile.Exporter `json:"exporters" yaml:"exporters"`
	Importers     []*profile.Importer `json:"importers" yaml:"importers"`
	Risks         risk.Map            `json:"risks" yaml:"risks"`
	NewsEvents    int                 `json:"news_events" yaml:"newsEvents"`
	ReferenceDate time.Time           `json:"reference_date" yaml:"referenceDate"`
	Sources       Sources             `json:"sources" yaml:"sources"`
}

// ImportRun records one SaveArtifacts call.
type ImportRun struct {
	ID            string    `json:"id" yaml:"id"`
	ImportedAt    time.Time `json:"imported_at" yaml:"importedAt"`
	ReferenceDate string    `json:"reference_date" yaml:"referenceDate"`
	Exporters     int       `json:"exporters" yaml:"exporters"`
	Importers     int       `json:"importers" yaml:"importers"`
	Industries    int       `json:"industries" yaml:"industries"`
	Sources       Sources   `json:"sources" yaml:"sources"`
}

// SaveArtifacts replaces the stored profiles and industry risk with a in a
// single transaction and records the import run.
func SaveArtifacts(db *sql.DB, a *Artifacts) (*ImportRun, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if a == nil {
		return nil, errors.New("artifacts required")
	}

	run := &ImportRun{
		ID:            uuid.NewString(),
		ImportedAt:    time.Now().UTC(),
		ReferenceDate: a.ReferenceDate.Format(profile.DateFormat),
		Exporters:     len(a.Exporters),
		Importers:     len(a.Importers),
		Industries:    len(a.Risks),
		Sources:       a.Sources,
	}

	expStmt, err := db.Prepare(insertExporterSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare exporter insert statement: %w", err)
	}
	defer expStmt.Close()

	impStmt, err := db.Prepare(insertImporterSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare importer insert statement: %w", err)
	}
	defer impStmt.Close()

	riskStmt, err := db.Prepare(insertRiskSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare risk insert statement: %w", err)
	}
	defer riskStmt.Close()

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTransaction(tx)

	for _, q := range clearSQL {
		if _, err := tx.Exec(q); err != nil {
			return nil, fmt.Errorf("failed to clear previous import: %w", err)
		}
	}

	for _, e := range a.Exporters {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("error encoding exporter %s: %w", e.ID, err)
		}
		if _, err := tx.Stmt(expStmt).Exec(e.ID, run.ID, e.Industry, e.State, e.MSME, string(b)); err != nil {
			return nil, fmt.Errorf("failed to insert exporter %s: %w", e.ID, err)
		}
	}

	for _, m := range a.Importers {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, fmt.Errorf("error encoding importer %s: %w", m.ID, err)
		}
		if _, err := tx.Stmt(impStmt).Exec(m.ID, run.ID, m.Industry, m.Country, string(b)); err != nil {
			return nil, fmt.Errorf("failed to insert importer %s: %w", m.ID, err)
		}
	}

	for industry, v := range a.Risks {
		if _, err := tx.Stmt(riskStmt).Exec(industry, run.ID, v); err != nil {
			return nil, fmt.Errorf("failed to insert risk for %s: %w", industry, err)
		}
	}

	_, err = tx.Exec(insertRunSQL,
		run.ID, run.ImportedAt.Format(importTimeFormat), run.ReferenceDate,
		run.Exporters, run.Importers, run.Industries,
		run.Sources.Exporters, run.Sources.Importers, run.Sources.News,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert import run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	slog.Debug("artifacts saved",
		"run", run.ID,
		"exporters", run.Exporters,
		"importers", run.Importers,
		"industries", run.Industries,
	)

	return run, nil
}

// LastRun returns the most recent import, ErrNotFound when nothing was
// imported yet.
func LastRun(db *sql.DB) (*ImportRun, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	var (
		run        ImportRun
		importedAt string
	)
	err := db.QueryRow(selectLastRunSQL).Scan(
		&run.ID, &importedAt, &run.ReferenceDate,
		&run.Exporters, &run.Importers, &run.Industries,
		&run.Sources.Exporters, &run.Sources.Importers, &run.Sources.News,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan import run: %w", err)
	}

	if run.ImportedAt, err = time.Parse(importTimeFormat, importedAt); err != nil {
		return nil, fmt.Errorf("invalid import time %q: %w", importedAt, err)
	}

	return &run, nil
}

// LoadArtifacts reads back everything the last import saved.
func LoadArtifacts(db *sql.DB) (*Artifacts, error) {
	run, err := LastRun(db)
	if err != nil {
		return nil, err
	}

	ref, ok := profile.ParseDate(run.ReferenceDate)
	if !ok {
		return nil, fmt.Errorf("invalid reference date %q in run %s", run.ReferenceDate, run.ID)
	}

	a := &Artifacts{ReferenceDate: ref, Sources: run.Sources}

	if a.Exporters, err = queryProfiles[profile.Exporter](db, selectExportersSQL); err != nil {
		return nil, fmt.Errorf("error loading exporters: %w", err)
	}
	if a.Importers, err = queryProfiles[profile.Importer](db, selectImportersSQL); err != nil {
		return nil, fmt.Errorf("error loading importers: %w", err)
	}
	if a.Risks, err = GetIndustryRisk(db); err != nil {
		return nil, err
	}

	return a, nil
}

// GetExporter returns the stored exporter profile or ErrNotFound.
func GetExporter(db *sql.DB, id string) (*profile.Exporter, error) {
	return getProfile[profile.Exporter](db, selectExporterSQL, id)
}

// GetImporter returns the stored buyer profile or ErrNotFound.
func GetImporter(db *sql.DB, id string) (*profile.Importer, error) {
	return getProfile[profile.Importer](db, selectImporterSQL, id)
}

// GetIndustryRisk returns the stored risk map.
func GetIndustryRisk(db *sql.DB) (risk.Map, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	rows, err := db.Query(selectRisksSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to execute risk select statement: %w", err)
	}
	defer rows.Close()

	m := make(risk.Map)
	for rows.Next() {
		var (
			industry string
			v        float64
		)
		if err := rows.Scan(&industry, &v); err != nil {
			return nil, fmt.Errorf("failed to scan risk row: %w", err)
		}
		m[industry] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read risk rows: %w", err)
	}

	return m, nil
}

func getProfile[T any](db *sql.DB, query, id string) (*T, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}
	if id == "" {
		return nil, errors.New("id is required")
	}

	var blob string
	if err := db.QueryRow(query, id).Scan(&blob); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to scan profile %s: %w", id, err)
	}

	var p T
	if err := json.Unmarshal([]byte(blob), &p); err != nil {
		return nil, fmt.Errorf("error decoding profile %s: %w", id, err)
	}
	return &p, nil
}

func queryProfiles[T any](db *sql.DB, query string) ([]*T, error) {
	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to execute select statement: %w", err)
	}
	defer rows.Close()

	list := make([]*T, 0)
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var p T
		if err := json.Unmarshal([]byte(blob), &p); err != nil {
			return nil, fmt.Errorf("error decoding profile: %w", err)
		}
		list = append(list, &p)
	}

	return list, rows.Err()
}
