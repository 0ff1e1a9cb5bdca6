// Package storage provides a PostgreSQL-based implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/CreativeUnicorns/recruitprefs"
)

// sqlOpenFunc is a package-level variable that can be overridden for testing.
var sqlOpenFunc = sql.Open

const (
	createTableSQL = `
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
			encrypted BOOLEAN NOT NULL DEFAULT FALSE,
			submitted_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (secondary_department IS NULL OR secondary_department <> primary_department)
		);

		CREATE INDEX IF NOT EXISTS idx_applications_primary
		ON applications(primary_department);

		CREATE INDEX IF NOT EXISTS idx_applications_secondary
		ON applications(secondary_department);
	`

	insertSQL = `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (application_id)
		DO UPDATE SET first_name = $2, last_name = $3, email = $4, phone = $5, reg_number = $6,
			year = $7, skills = $8, motivation = $9, contribution = $10,
			primary_department = $11, secondary_department = $12, source = $13,
			encrypted = $14, submitted_at = $15
	`

	selectSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE application_id = $1
	`

	selectByDepartmentSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		WHERE primary_department = $1 OR secondary_department = $1
		ORDER BY submitted_at, application_id
	`

	selectAllSQL = `
		SELECT ` + applicationColumns + `
		FROM applications
		ORDER BY submitted_at, application_id
	`

	deleteSQL = `
		DELETE FROM applications
		WHERE application_id = $1
	`
)

// PostgresStorage implements the Storage interface using PostgreSQL.
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage connects to PostgreSQL using connString and runs migrations.
func NewPostgresStorage(connString string) (*PostgresStorage, error) {
	db, err := sqlOpenFunc("postgres", connString)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to ping database: %w", err)
	}

	storage := &PostgresStorage{db: db}
	if err := storage.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	if _, err := s.db.Exec(createTableSQL); err != nil {
		return fmt.Errorf("postgres: failed to execute create table statement: %w", err)
	}
	return nil
}

// Get retrieves an application by ID.
// It returns ErrNotFound if the application does not exist.
func (s *PostgresStorage) Get(ctx context.Context, id string) (*recruitprefs.Application, error) {
	app, err := scanApplication(s.db.QueryRowContext(ctx, selectSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, recruitprefs.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to scan application '%s': %w", id, err)
	}
	return app, nil
}

// Set stores or replaces an application.
func (s *PostgresStorage) Set(ctx context.Context, app *recruitprefs.Application) error {
	if err := validateApplication(app); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, insertSQL, applicationArgs(app)...); err != nil {
		return fmt.Errorf("postgres: failed to execute insert for application '%s': %w", app.ID, err)
	}
	return nil
}

// ListByDepartment returns applications naming departmentID as either preference, oldest first.
func (s *PostgresStorage) ListByDepartment(ctx context.Context, departmentID string) ([]*recruitprefs.Application, error) {
	rows, err := s.db.QueryContext(ctx, selectByDepartmentSQL, departmentID)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query applications for department '%s': %w", departmentID, err)
	}
	defer rows.Close()

	return scanApplications("postgres", rows)
}

// GetAll returns every application, oldest first.
func (s *PostgresStorage) GetAll(ctx context.Context) ([]*recruitprefs.Application, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query applications: %w", err)
	}
	defer rows.Close()

	return scanApplications("postgres", rows)
}

// Delete removes an application by ID.
// It returns ErrNotFound if the application does not exist.
func (s *PostgresStorage) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, deleteSQL, id)
	if err != nil {
		return fmt.Errorf("postgres: failed to execute delete for application '%s': %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("postgres: failed to get rows affected for application '%s': %w", id, err)
	}
	if n == 0 {
		return recruitprefs.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (s *PostgresStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("postgres: failed to close database: %w", err)
	}
	return nil
}
