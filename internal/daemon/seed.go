package daemon

import (
	"errors"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

const (
	defaultAdminName     = "admin"
	defaultAdminPassword = "changeme"
)

// seed makes sure the built-in roles exist and creates an admin account on an empty user table.
func seed(core *Core) error {
	roles := make([]string, 0, len(auth.RolePermissions))
	for name := range auth.RolePermissions {
		roles = append(roles, name)
	}

	slices.Sort(roles)

	for _, name := range roles {
		if _, err := core.Auth.EnsureRole(name, "Built-in role "+name, auth.RolePermissions[name]); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}

	var count int64
	if err := core.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	if count > 0 {
		return nil
	}

	role, err := core.Auth.RoleByName(auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	_, err = auth.NewLocalProvider(core.DB).CreateUser(defaultAdminName, "", defaultAdminPassword, role.ID)
	if err != nil && !errors.Is(err, auth.ErrUserNameOrEmailExists) {
		return fmt.Errorf("seed admin: %w", err)
	}

	log.Warn().Str("username", defaultAdminName).Msg("created default admin account, change its password")

	return nil
}
