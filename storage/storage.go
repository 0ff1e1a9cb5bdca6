// Package storage provides application storage backends: in-memory, SQLite and PostgreSQL.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/CreativeUnicorns/recruitprefs"
)

// Compile-time checks that every backend satisfies recruitprefs.Storage.
var (
	_ recruitprefs.Storage = (*MemoryStorage)(nil)
	_ recruitprefs.Storage = (*SQLiteStorage)(nil)
	_ recruitprefs.Storage = (*PostgresStorage)(nil)
)

// applicationColumns is the column order shared by every SELECT and INSERT.
const applicationColumns = `application_id, first_name, last_name, email, phone, reg_number, year,
	skills, motivation, contribution, primary_department, secondary_department, source,
	encrypted, submitted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanApplication reads one row in applicationColumns order.
func scanApplication(row rowScanner) (*recruitprefs.Application, error) {
	var (
		app                                   recruitprefs.Application
		year, contribution, secondary, source sql.NullString
	)

	err := row.Scan(
		&app.ID,
		&app.FirstName,
		&app.LastName,
		&app.Email,
		&app.Phone,
		&app.RegNumber,
		&year,
		&app.Skills,
		&app.Motivation,
		&contribution,
		&app.PrimaryDepartment,
		&secondary,
		&source,
		&app.Encrypted,
		&app.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}

	app.Year = year.String
	app.Contribution = contribution.String
	app.SecondaryDepartment = secondary.String
	app.Source = source.String
	app.SubmittedAt = app.SubmittedAt.UTC()
	return &app, nil
}

// applicationArgs returns insert arguments in applicationColumns order.
// Empty optional fields are written as NULL.
func applicationArgs(app *recruitprefs.Application) []any {
	return []any{
		app.ID,
		app.FirstName,
		app.LastName,
		app.Email,
		app.Phone,
		app.RegNumber,
		nullString(app.Year),
		app.Skills,
		app.Motivation,
		nullString(app.Contribution),
		app.PrimaryDepartment,
		nullString(app.SecondaryDepartment),
		nullString(app.Source),
		app.Encrypted,
		app.SubmittedAt.UTC(),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanApplications(backend string, rows *sql.Rows) ([]*recruitprefs.Application, error) {
	apps := make([]*recruitprefs.Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan application row: %w", backend, err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating application rows: %w", backend, err)
	}
	return apps, nil
}

func validateApplication(app *recruitprefs.Application) error {
	if app == nil || app.ID == "" || app.PrimaryDepartment == "" {
		return recruitprefs.ErrInvalidInput
	}
	return nil
}
