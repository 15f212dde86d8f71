package daemon

import (
	"errors"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/configimport"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/record"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/setting"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/dsn"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
)

// ErrUnknownEngine is returned for an unsupported DB.GormEngine.
var ErrUnknownEngine = errors.New("unknown gorm engine")

// Core bundles the settings components shared by the web service and the CLI.
type Core struct {
	Config   *config.Config
	DB       *gorm.DB
	Auth     *auth.Service
	Settings *setting.Store
	Records  *record.Store
	Registry *registry.Registry
	Importer *configimport.Importer
}

// Dialector returns the gorm dialector for the configured engine.
func Dialector(cfg config.DB) (gorm.Dialector, error) {
	switch cfg.GormEngine {
	case config.EngineMySQL, "":
		return gormmysql.Open(dsn.Create(cfg)), nil
	case config.EnginePostgres:
		return gormpostgres.Open(dsn.Create(cfg)), nil
	case config.EngineSQLite:
		return sqlite.Open(dsn.Create(cfg)), nil
	default:
		return nil, ErrUnknownEngine
	}
}

// OpenDB connects to the database and migrates all models.
func OpenDB(cfg config.DB) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if cfg.GormEngine == config.EngineSQLite {
		// sqlite allows a single writer
		sqlDB, errDB := db.DB()
		if errDB != nil {
			return nil, errDB //nolint:wrapcheck
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err = db.AutoMigrate(models.All()...); err != nil {
		return nil, err //nolint:wrapcheck
	}

	return db, nil
}

// NewCore wires the registry, the record store and the importer on db.
// The registry is subscribed to imports of its aggregate.
func NewCore(cfg *config.Config, db *gorm.DB) (*Core, error) {
	if cfg == nil || db == nil {
		return nil, handler.ErrMissingDependency
	}

	settings := setting.NewStore(db)
	records := record.NewStore(db, cfg.Settings.Translation.DefaultLanguage)
	reg := registry.New(cfg.Settings.ConfigName, settings, records)

	importer, err := configimport.NewImporter(reg.Name(), settings, cfg.Settings.Bundles.Has)
	if err != nil {
		return nil, err
	}

	importer.Subscribe(reg)

	log.Debug().Str("aggregate", reg.Name()).Msg("settings registry initialized")

	return &Core{
		Config:   cfg,
		DB:       db,
		Auth:     auth.NewService(db),
		Settings: settings,
		Records:  records,
		Registry: reg,
		Importer: importer,
	}, nil
}

// Dependencies returns the collaborators handed to the web handlers.
func (c *Core) Dependencies() *handler.Dependencies {
	return &handler.Dependencies{
		Config:   c.Config,
		DB:       c.DB,
		Auth:     c.Auth,
		Registry: c.Registry,
		Records:  c.Records,
	}
}

// Close releases the database connections of c.
func (c *Core) Close() error {
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err //nolint:wrapcheck
	}

	return sqlDB.Close() //nolint:wrapcheck
}
