package data

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const (
	DataFileName string = "data.db"
)

var (
	//go:embed sql/*
	f embed.FS

	errDBNotInitialized = errors.New("database not initialized")

	// ErrNotFound is returned when a profile ID is not in the store.
	ErrNotFound = errors.New("not found")
)

// Init creates the schema in the database at dbFilePath. Safe to call on an
// existing database.
func Init(dbFilePath string) error {
	if dbFilePath == "" {
		return errors.New("dbFilePath not specified")
	}

	db, err := GetDB(dbFilePath)
	if err != nil {
		return fmt.Errorf("error opening database %s: %w", dbFilePath, err)
	}
	defer db.Close()

	b, err := f.ReadFile("sql/ddl.sql")
	if err != nil {
		return fmt.Errorf("failed to read the schema creation file: %w", err)
	}
	if _, err := db.Exec(string(b)); err != nil {
		return fmt.Errorf("failed to create database schema in %s: %w", dbFilePath, err)
	}
	slog.Debug("db schema ready", "path", dbFilePath)

	return nil
}

func GetDB(path string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return conn, nil
}

func rollbackTransaction(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		slog.Error("error rolling back transaction", "error", err)
	}
}
