// Package postgres backs the project catalog with PostgreSQL. Projects are
// stored as JSONB payloads in the same document format the file store uses,
// with name and timestamps lifted into columns for listing.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"tabkit/adapters/jsonstore"
	apperrors "tabkit/internal/errors"
	"tabkit/domain/core"
	"tabkit/domain/project"
	"tabkit/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository, ensuring the
// projects table exists
func NewProjectRepository(db *sqlx.DB) (ports.ProjectRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, apperrors.DatabaseError("creating projects table", err)
	}
	return &projectRepository{db: db}, nil
}

// Save upserts the project under its id
func (r *projectRepository) Save(ctx context.Context, p *project.Project) error {
	payload, err := jsonstore.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	query := `INSERT INTO projects (id, name, payload, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`

	_, err = r.db.ExecContext(ctx, query,
		p.ID.String(), p.Name, payload, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return apperrors.DatabaseError("failed to save project", err)
	}
	return nil
}

// Get retrieves a project by its id
func (r *projectRepository) Get(ctx context.Context, id core.ProjectID) (*project.Project, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM projects WHERE id = $1`, id.String()).Scan(&payload)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", core.ErrProjectNotFound, id)
		}
		return nil, apperrors.DatabaseError("failed to get project", err)
	}

	p, err := jsonstore.Unmarshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", id, err)
	}
	return p, nil
}

// List returns all stored projects, most recently updated first
func (r *projectRepository) List(ctx context.Context) ([]*project.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT payload FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to list projects", err)
	}
	defer rows.Close()

	var projects []*project.Project
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, apperrors.DatabaseError("failed to scan project row", err)
		}
		p, err := jsonstore.Unmarshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to decode project: %w", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.DatabaseError("failed to iterate projects", err)
	}
	return projects, nil
}

// Delete removes a project by its id
func (r *projectRepository) Delete(ctx context.Context, id core.ProjectID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM projects WHERE id = $1`, id.String())
	if err != nil {
		return apperrors.DatabaseError("failed to delete project", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", core.ErrProjectNotFound, id)
	}
	return nil
}
