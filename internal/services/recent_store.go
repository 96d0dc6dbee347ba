package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/sirupsen/logrus"

	"pdf-presenter/internal/models"
)

// ErrRecentNotFound is returned when no recent file has the requested id or name
var ErrRecentNotFound = errors.New("recent file not found")

const settingSaveHistory = "saveHistory"

// RecentStore keeps the history of opened presentations and the settings
// that control it
type RecentStore struct {
	database *sql.DB
	logger   *logrus.Logger
	now      func() time.Time
}

// NewRecentStore creates a new recent store
func NewRecentStore(database *sql.DB, logger *logrus.Logger) *RecentStore {
	return &RecentStore{
		database: database,
		logger:   logger,
		now:      time.Now,
	}
}

// Upsert stores entry as the latest open of its document. Any other entry
// with the same name is removed first, so the latest open wins.
func (rs *RecentStore) Upsert(ctx context.Context, entry models.RecentFile) (*models.RecentFile, error) {
	if entry.Name == "" {
		return nil, fmt.Errorf("recent file name is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.LastOpened.IsZero() {
		entry.LastOpened = rs.now()
	}
	entry.LastOpened = entry.LastOpened.UTC()

	tx, err := rs.database.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM recent_files WHERE name = ? AND id != ?`, entry.Name, entry.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove duplicates: %w", err)
	}
	duplicates, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	query := `INSERT INTO recent_files (id, name, path, config_path, config_name, last_opened)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			path = excluded.path,
			config_path = excluded.config_path,
			config_name = excluded.config_name,
			last_opened = excluded.last_opened`

	_, err = tx.ExecContext(ctx, query, entry.ID, entry.Name, entry.Path, entry.ConfigPath, entry.ConfigName, entry.LastOpened)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert recent file: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit recent file: %w", err)
	}

	rs.logger.WithFields(logrus.Fields{
		"id":         entry.ID,
		"name":       entry.Name,
		"duplicates": duplicates,
	}).Debug("Recent file recorded")

	return &entry, nil
}

// Record upserts entry unless saving history is turned off. recorded
// reports whether anything was written.
func (rs *RecentStore) Record(ctx context.Context, entry models.RecentFile) (stored *models.RecentFile, recorded bool, err error) {
	settings, err := rs.Settings(ctx)
	if err != nil {
		return nil, false, err
	}
	if !settings.SaveHistory {
		return nil, false, nil
	}
	stored, err = rs.Upsert(ctx, entry)
	if err != nil {
		return nil, false, err
	}
	return stored, true, nil
}

const selectRecent = `SELECT id, name, path, config_path, config_name, last_opened FROM recent_files`

func scanRecent(row interface{ Scan(...any) error }) (*models.RecentFile, error) {
	var file models.RecentFile
	err := row.Scan(
		&file.ID,
		&file.Name,
		&file.Path,
		&file.ConfigPath,
		&file.ConfigName,
		&file.LastOpened,
	)
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// Get returns a recent file by id
func (rs *RecentStore) Get(ctx context.Context, id string) (*models.RecentFile, error) {
	file, err := scanRecent(rs.database.QueryRowContext(ctx, selectRecent+` WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRecentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recent file: %w", err)
	}
	return file, nil
}

// FindByName returns the latest entry for a document name
func (rs *RecentStore) FindByName(ctx context.Context, name string) (*models.RecentFile, error) {
	query := selectRecent + ` WHERE name = ? ORDER BY last_opened DESC LIMIT 1`
	file, err := scanRecent(rs.database.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrRecentNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query recent file: %w", err)
	}
	return file, nil
}

// List returns all recent files, most recently opened first
func (rs *RecentStore) List(ctx context.Context) ([]*models.RecentFile, error) {
	rows, err := rs.database.QueryContext(ctx, selectRecent+` ORDER BY last_opened DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent files: %w", err)
	}
	defer rows.Close()

	files := []*models.RecentFile{}
	for rows.Next() {
		file, err := scanRecent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

// Search fuzzy-matches query against document names, best match first. An
// empty query lists everything.
func (rs *RecentStore) Search(ctx context.Context, query string) ([]*models.RecentFile, error) {
	files, err := rs.List(ctx)
	if err != nil || query == "" {
		return files, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	matches := fuzzy.Find(query, names)
	results := make([]*models.RecentFile, 0, len(matches))
	for _, m := range matches {
		results = append(results, files[m.Index])
	}
	return results, nil
}

// Remove deletes one recent file
func (rs *RecentStore) Remove(ctx context.Context, id string) error {
	result, err := rs.database.ExecContext(ctx, `DELETE FROM recent_files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete recent file: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecentNotFound, id)
	}

	rs.logger.WithField("id", id).Info("Recent file removed")
	return nil
}

// Clear deletes the whole history
func (rs *RecentStore) Clear(ctx context.Context) error {
	if _, err := rs.database.ExecContext(ctx, `DELETE FROM recent_files`); err != nil {
		return fmt.Errorf("failed to clear recent files: %w", err)
	}
	rs.logger.Info("Recent files cleared")
	return nil
}

// Settings returns the stored settings; saving history defaults to on
func (rs *RecentStore) Settings(ctx context.Context) (models.Settings, error) {
	settings := models.Settings{SaveHistory: true}

	var value string
	err := rs.database.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingSaveHistory).Scan(&value)
	if err == sql.ErrNoRows {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to query settings: %w", err)
	}

	saveHistory, err := strconv.ParseBool(value)
	if err != nil {
		rs.logger.WithField("value", value).Warn("Ignoring malformed saveHistory setting")
		return settings, nil
	}
	settings.SaveHistory = saveHistory
	return settings, nil
}

// UpdateSettings stores settings. Turning history off also clears it.
func (rs *RecentStore) UpdateSettings(ctx context.Context, settings models.Settings) error {
	tx, err := rs.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := tx.ExecContext(ctx, query, settingSaveHistory, strconv.FormatBool(settings.SaveHistory)); err != nil {
		return fmt.Errorf("failed to update settings: %w", err)
	}

	if !settings.SaveHistory {
		if _, err := tx.ExecContext(ctx, `DELETE FROM recent_files`); err != nil {
			return fmt.Errorf("failed to clear recent files: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit settings: %w", err)
	}

	rs.logger.WithField("saveHistory", settings.SaveHistory).Info("Settings updated")
	return nil
}
