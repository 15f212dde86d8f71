// Package daemon wires storage, sessions and the web service of the settings admin.
package daemon

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	sessionmysql "github.com/gofiber/storage/mysql/v2"
	sessionpostgres "github.com/gofiber/storage/postgres/v3"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/dsn"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

const sessionTable = "sessions"

// Daemon represents the main application daemon.
type Daemon struct {
	core       *Core
	webService *web.Service
}

// Start reconciles the registry and serves HTTP until SIGINT or SIGTERM.
func (d *Daemon) Start(ctx context.Context) error {
	created, err := d.core.Registry.Reconcile(ctx)
	if err != nil {
		return err
	}

	log.Info().Int("created", created).Msg("settings registry reconciled")

	errc := make(chan error, 1)

	go func() {
		errc <- d.webService.Start()
	}()

	go d.webService.WaitShutdown()

	return <-errc
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) (*Daemon, error) {
	db, err := OpenDB(cfg.DB)
	if err != nil {
		return nil, err
	}

	core, err := NewCore(cfg, db)
	if err != nil {
		return nil, err
	}

	if err = seed(core); err != nil {
		return nil, err
	}

	session.Init(newSessionStorage(cfg.DB))

	webService, err := web.New(core.Dependencies())
	if err != nil {
		return nil, err
	}

	return &Daemon{
		core:       core,
		webService: webService,
	}, nil
}

// newSessionStorage keeps sessions in the application database. SQLite uses process memory.
func newSessionStorage(cfg config.DB) fiber.Storage {
	switch cfg.GormEngine {
	case config.EnginePostgres:
		return sessionpostgres.New(sessionpostgres.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	case config.EngineSQLite:
		log.Warn().Msg("sqlite engine: sessions are kept in memory and lost on restart")

		return memory.New()
	default:
		return sessionmysql.New(sessionmysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         sessionTable,
		})
	}
}
