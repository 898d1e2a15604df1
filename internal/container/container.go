package container

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"tabkit/adapters/excel"
	"tabkit/adapters/expr"
	"tabkit/adapters/jsonstore"
	"tabkit/adapters/postgres"
	"tabkit/adapters/stats/engine"
	"tabkit/app"
	"tabkit/internal"
	"tabkit/internal/config"
	"tabkit/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB *sqlx.DB

	// Adapters
	Store     ports.ProjectStore
	Reader    ports.DatasetReader
	Writer    ports.DatasetWriter
	Evaluator ports.Evaluator
	Engine    *engine.Engine

	// Optional database-backed catalog
	ProjectRepo ports.ProjectRepository

	// Application service
	Session *app.Session

	logger *internal.Logger
}

// New creates the dependency container and wires the file-based core
func New(cfg *config.Config, events ports.EventSink) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	store := jsonstore.New()
	c := &Container{
		Config:    cfg,
		Store:     store,
		Reader:    excel.NewReader(),
		Writer:    excel.NewWriter(),
		Evaluator: expr.New(),
		Engine:    engine.New(),
		Session:   app.NewSession(store, events),
		logger:    internal.DefaultLogger,
	}
	c.Session.Executor().SetMaxUndoLevels(cfg.History.MaxUndoLevels)

	if cfg.Storage.DatabaseURL != "" {
		if err := c.initDatabase(cfg.Storage.DatabaseURL); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// initDatabase connects the optional project catalog
func (c *Container) initDatabase(databaseURL string) error {
	db, err := postgres.Connect(databaseURL)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}

	repo, err := postgres.NewProjectRepository(db)
	if err != nil {
		db.Close()
		return fmt.Errorf("initializing project repository: %w", err)
	}

	c.DB = db
	c.ProjectRepo = repo
	c.logger.Info("project catalog enabled (postgres)")
	return nil
}

// Close releases held resources
func (c *Container) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
