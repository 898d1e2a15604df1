package ports

import (
	"tabkit/domain/project"
)

// ProjectStore persists whole projects to and from project files.
// Load fails with a not-found error for missing paths and an invalid-input
// error for malformed files.
type ProjectStore interface {
	Load(path string) (*project.Project, error)
	Save(p *project.Project, path string) error
}
