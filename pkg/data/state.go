package data

import (
	"database/sql"
	"errors"
	"fmt"
)

var stateQueries = map[string]string{
	"exporter":      "SELECT COUNT(*) FROM exporter",
	"importer":      "SELECT COUNT(*) FROM importer",
	"industry":      "SELECT COUNT(*) FROM (SELECT industry FROM exporter UNION SELECT industry FROM importer)",
	"industry_risk": "SELECT COUNT(*) FROM industry_risk",
	"import_run":    "SELECT COUNT(*) FROM import_run",
}

// GetDataState returns row counts for the stored artifacts.
func GetDataState(db *sql.DB) (map[string]int64, error) {
	if db == nil {
		return nil, errDBNotInitialized
	}

	state := make(map[string]int64)
	for k, v := range stateQueries {
		stmt, err := db.Prepare(v)
		if err != nil {
			return nil, fmt.Errorf("error preparing %s statement: %w", k, err)
		}

		count, err := getCount(stmt)
		stmt.Close()
		if err != nil {
			return nil, fmt.Errorf("error getting %s count: %w", k, err)
		}
		state[k] = count
	}

	return state, nil
}

// Reset removes all imported artifacts and run history.
func Reset(db *sql.DB) error {
	if db == nil {
		return errDBNotInitialized
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollbackTransaction(tx)

	for _, q := range append(clearSQL, "DELETE FROM import_run") {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to reset store: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func getCount(stmt *sql.Stmt) (int64, error) {
	var count int64
	if err := stmt.QueryRow().Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to scan row: %w", err)
	}
	return count, nil
}
