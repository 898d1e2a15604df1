package ports

import (
	"context"

	"tabkit/domain/core"
	"tabkit/domain/project"
)

// ProjectRepository is a catalog-style persistence backend for projects
// (database-backed, as opposed to the file-based ProjectStore).
type ProjectRepository interface {
	Save(ctx context.Context, p *project.Project) error
	Get(ctx context.Context, id core.ProjectID) (*project.Project, error)
	List(ctx context.Context) ([]*project.Project, error)
	Delete(ctx context.Context, id core.ProjectID) error
}
