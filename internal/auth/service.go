package auth

import (
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// Service provides authorization checks.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// HasPermission checks if the role of a user has a specific permission.
func (s *Service) HasPermission(userID uint64, permission string) (bool, error) {
	var count int64

	err := s.db.Table("permissions").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ? AND permissions.name = ?", userID, true, permission).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check role permission: %w", err)
	}

	return count > 0, nil
}

// GetUserPermissions retrieves all permissions of a user, sorted by name.
func (s *Service) GetUserPermissions(userID uint64) ([]string, error) {
	var permissions []string

	err := s.db.Table("permissions").
		Distinct("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN users ON users.role_id = role_permissions.role_id").
		Where("users.id = ? AND users.active = ?", userID, true).
		Pluck("permissions.name", &permissions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user permissions: %w", err)
	}

	sort.Strings(permissions)

	return permissions, nil
}

// EnsureRole creates the role name if missing and sets its permissions to exactly perms.
// Permissions that do not exist yet are created.
func (s *Service) EnsureRole(name, description string, perms []string) (*models.Role, error) {
	var role models.Role

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(models.Role{Name: name}).
			Attrs(models.Role{Description: description, IsSystem: true}).
			FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to create role %s: %w", name, err)
		}

		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return fmt.Errorf("failed to reset permissions of role %s: %w", name, err)
		}

		for _, permName := range perms {
			var perm models.Permission
			if err := tx.Where(models.Permission{Name: permName}).
				Attrs(models.Permission{Description: Descriptions[permName]}).
				FirstOrCreate(&perm).Error; err != nil {
				return fmt.Errorf("failed to create permission %s: %w", permName, err)
			}

			if err := tx.Create(&models.RolePermission{RoleID: role.ID, PermissionID: perm.ID}).Error; err != nil {
				return fmt.Errorf("failed to grant %s to role %s: %w", permName, name, err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &role, nil
}

// RoleByName looks up a role.
func (s *Service) RoleByName(name string) (*models.Role, error) {
	var role models.Role

	err := s.db.Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoleNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load role %s: %w", name, err)
	}

	return &role, nil
}
