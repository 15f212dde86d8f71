package auth

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// LocalProvider handles local database authentication.
type LocalProvider struct {
	db *gorm.DB
}

// NewLocalProvider creates a new local authentication provider.
func NewLocalProvider(db *gorm.DB) *LocalProvider {
	return &LocalProvider{
		db: db,
	}
}

// Authenticate authenticates a user against the local database.
func (p *LocalProvider) Authenticate(username, password string) (*models.User, error) {
	var user models.User

	err := p.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	if !user.Active {
		return nil, ErrUserAccountDisabled
	}

	if !user.VerifyPassword(password) {
		return nil, ErrInvalidPassword
	}

	return &user, nil
}

// CreateUser creates a new active local user.
func (p *LocalProvider) CreateUser(username, email, password string, roleID uint) (*models.User, error) {
	var existingUser models.User

	err := p.db.Where("username = ? OR (email <> '' AND email = ?)", username, email).First(&existingUser).Error
	if err == nil {
		return nil, ErrUserNameOrEmailExists
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	user := models.User{
		Active:   true,
		Username: username,
		Email:    email,
		Password: models.HashPassword(password),
		RoleID:   roleID,
	}

	if err = p.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &user, nil
}

// ResetPassword replaces the password of username.
func (p *LocalProvider) ResetPassword(username, newPassword string) error {
	result := p.db.Model(&models.User{}).
		Where("username = ?", username).
		Update("password", models.HashPassword(newPassword))
	if result.Error != nil {
		return fmt.Errorf("failed to reset password: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
