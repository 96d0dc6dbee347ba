package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// InitDatabase opens the SQLite database at dbPath and creates the tables
func InitDatabase(dbPath string, logger *logrus.Logger) (*sql.DB, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	database, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=1&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createTables(database); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.WithField("path", dbPath).Info("Database initialized")
	return database, nil
}

// createTables creates all necessary tables
func createTables(database *sql.DB) error {
	createRecentTable := `
	CREATE TABLE IF NOT EXISTS recent_files (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		config_path TEXT NOT NULL DEFAULT '',
		config_name TEXT NOT NULL DEFAULT '',
		last_opened DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := database.Exec(createRecentTable); err != nil {
		return fmt.Errorf("failed to create recent_files table: %w", err)
	}

	// Lookups by document name back the channel name and dedupe
	createNameIndex := `CREATE INDEX IF NOT EXISTS idx_recent_name ON recent_files(name);`
	if _, err := database.Exec(createNameIndex); err != nil {
		return fmt.Errorf("failed to create name index: %w", err)
	}

	createOpenedIndex := `CREATE INDEX IF NOT EXISTS idx_recent_last_opened ON recent_files(last_opened);`
	if _, err := database.Exec(createOpenedIndex); err != nil {
		return fmt.Errorf("failed to create last_opened index: %w", err)
	}

	createSettingsTable := `
	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`
	if _, err := database.Exec(createSettingsTable); err != nil {
		return fmt.Errorf("failed to create settings table: %w", err)
	}

	return nil
}
