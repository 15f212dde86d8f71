// Package session keeps login sessions in a fiber storage backend.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/db/models"
)

// CookieName is the name of the cookie carrying the session id.
const CookieName = "session"

// ErrSessionNotFound is returned when the session id is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// Store is the global session store instance.
var Store *session.Store //nolint:gochecknoglobals

// Data represents the session data structure.
type Data struct {
	User models.User
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err //nolint:wrapcheck
	}

	return Store.Storage.Set(sessionID, out, exp) //nolint:wrapcheck
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err //nolint:wrapcheck
	}

	if len(byteData) == 0 {
		return ErrSessionNotFound
	}

	return json.Unmarshal(byteData, s) //nolint:wrapcheck
}

// Delete removes the session and its pending flash messages.
func Delete(sessionID string) error {
	if err := Store.Storage.Delete(FlashKey(sessionID)); err != nil {
		return err //nolint:wrapcheck
	}

	return Store.Storage.Delete(sessionID) //nolint:wrapcheck
}

// FlashKey is the storage key of the flash messages of a session.
func FlashKey(sessionID string) string {
	return sessionID + ":flash"
}

// Init initializes the session store with the provided storage backend.
func Init(storage fiber.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage:        storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err //nolint:wrapcheck
	}

	return hex.EncodeToString(b), nil
}
