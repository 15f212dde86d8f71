package models

import (
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog/log"
)

// User is an administrator or editor account.
// Users authenticate against the local database and get their permissions through their role.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Active indicates whether the account can log in.
	Active bool
	// Username is the unique login name.
	Username string `gorm:"unique;size:100;not null" form:"username"`
	// Email is the user's email address.
	Email string `gorm:"size:255"`
	// Password is the Argon2id hash of the password.
	Password string `gorm:"size:255" form:"password" json:"-"`
	// RoleID is the ID of the role assigned to this user.
	RoleID uint `gorm:"column:role_id;not null"`
	// Role is the associated role.
	Role Role `gorm:"foreignKey:RoleID;references:ID;constraint:OnDelete:RESTRICT,OnUpdate:CASCADE" json:"-"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}

// HashPassword hashes a plaintext password using Argon2id with the default parameters.
func HashPassword(password string) string {
	hashedPassword, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatal().Msgf("failed to hash password: %v", err)
	}

	return hashedPassword
}

// VerifyPassword reports whether password matches the stored hash.
func (u *User) VerifyPassword(password string) bool {
	match, err := argon2id.ComparePasswordAndHash(password, u.Password)
	if err != nil {
		log.Error().Msgf("failed to verify password: %v", err)
		return false
	}

	return match
}
