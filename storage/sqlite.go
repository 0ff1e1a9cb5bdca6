// Package storage provides a SQLite-based implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/CreativeUnicorns/recruitprefs"
)

const (
	sqliteCreateTableSQL = `
		CREATE TABLE IF NOT EXISTS applications (
			application_id TEXT PRIMARY KEY,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			reg_number TEXT NOT NULL,
			year TEXT,
			skills TEXT NOT NULL,
			motivation TEXT NOT NULL,
			contribution TEXT,
			primary_department TEXT NOT NULL,
			secondary_department TEXT,
			source TEXT,
			encrypted BOOLEAN NOT NULL DEFAULT 0,
			submitted_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (secondary_department IS NULL OR secondary_department <> primary_department)
		);

		CREATE INDEX IF NOT EXISTS idx_applications_primary
		ON applications(primary_department);

		CREATE INDEX IF NOT EXISTS idx_applications_secondary
		ON applications(secondary_department);
	`

	sqliteInsertSQL = `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(application_id)
		DO UPDATE SET first_name = excluded.first_name, last_name = excluded.last_name,
			email = excluded.email, phone = excluded.phone, reg_number = excluded.reg_number,
			year = excluded.year, skills = excluded.skills, motivation = excluded.motivation,
			contribution = excluded.contribution, primary_department = excluded.primary_department,
			secondary_department = excluded.secondary_department, source = excluded.source,
			encrypted = excluded.encrypted, submitted_at = excluded.submitted_at
	`

	sqliteSelectSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE application_id = ?
	`

	sqliteSelectByDepartmentSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE primary_department = ? OR secondary_department = ?
		ORDER BY submitted_at, application_id
	`

	sqliteSelectAllSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY submitted_at, application_id
	`

	sqliteDeleteSQL = `
		DELETE FROM applications
		WHERE application_id = ?
	`
)

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens the SQLite database at dbPath and runs migrations.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to ping database: %w", err)
	}

	// A single writer avoids "database is locked" under concurrent submissions.
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) migrate() error {
	_, err := s.db.Exec(sqliteCreateTableSQL)
	return err
}

// Get retrieves an application by ID.
// It returns ErrNotFound if the application does not exist.
func (s *SQLiteStorage) Get(ctx context.Context, id string) (*recruitprefs.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, sqliteSelectSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recruitprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to get application: %w", err)
	}
	return app, nil
}

// Set stores or replaces an application.
func (s *SQLiteStorage) Set(ctx context.Context, app *recruitprefs.Application) error {
	if err := validateApplication(app); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, sqliteInsertSQL, applicationArgs(app)...); err != nil {
		return fmt.Errorf("sqlite: failed to set application: %w", err)
	}
	return nil
}

// ListByDepartment returns applications naming departmentID as either preference, oldest first.
func (s *SQLiteStorage) ListByDepartment(ctx context.Context, departmentID string) ([]*recruitprefs.Application, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectByDepartmentSQL, departmentID, departmentID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query applications: %w", err)
	}
	defer rows.Close()

	return scanApplications("sqlite", rows)
}

// GetAll returns every application, oldest first.
func (s *SQLiteStorage) GetAll(ctx context.Context) ([]*recruitprefs.Application, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to query applications: %w", err)
	}
	defer rows.Close()

	return scanApplications("sqlite", rows)
}

// Delete removes an application by ID.
// It returns ErrNotFound if the application does not exist.
func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, sqliteDeleteSQL, id)
	if err != nil {
		return fmt.Errorf("sqlite: failed to delete application: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: failed to get affected rows: %w", err)
	}
	if n == 0 {
		return recruitprefs.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
