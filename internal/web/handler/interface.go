package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/controller/record"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/registry"
)

// ErrMissingDependency is returned by Init when a required dependency is nil.
var ErrMissingDependency = errors.New(ErrNilACDFatalLogMsg)

// Dependencies are the collaborators handed to every handler.
type Dependencies struct {
	Config   *config.Config
	DB       *gorm.DB
	Auth     *auth.Service
	Registry *registry.Registry
	Records  *record.Store
}

// Validate reports ErrMissingDependency if a collaborator is missing.
func (d *Dependencies) Validate() error {
	if d == nil || d.Config == nil || d.DB == nil || d.Auth == nil || d.Registry == nil || d.Records == nil {
		return ErrMissingDependency
	}

	return nil
}

// Service is the interface for a web handler service.
type Service interface {
	Init(app *fiber.App, deps *Dependencies) error
}
