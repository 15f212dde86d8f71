// Package flash stores one-shot messages for the next rendered page in the session storage.
package flash

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

// Message levels.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

// LocalsKey is the fiber.Locals key the middleware stores popped messages under.
const LocalsKey = "Flash"

// Message is a single flash message.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

const flashTTL = 0

// Add queues a message for the session of c. Requests without a session are ignored.
func Add(c *fiber.Ctx, level, text string) {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" || session.Store == nil {
		return
	}

	messages := load(sessionID)
	messages = append(messages, Message{Level: level, Text: text})

	raw, err := json.Marshal(messages)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode flash messages")
		return
	}

	if err = session.Store.Storage.Set(session.FlashKey(sessionID), raw, flashTTL); err != nil {
		log.Error().Err(err).Msg("failed to store flash messages")
	}
}

// Pop returns and removes the queued messages of the session of c.
func Pop(c *fiber.Ctx) []Message {
	sessionID := c.Cookies(session.CookieName)
	if sessionID == "" || session.Store == nil {
		return nil
	}

	messages := load(sessionID)
	if len(messages) == 0 {
		return nil
	}

	if err := session.Store.Storage.Delete(session.FlashKey(sessionID)); err != nil {
		log.Error().Err(err).Msg("failed to clear flash messages")
	}

	return messages
}

// Middleware pops the messages of HTML GET requests into c.Locals(LocalsKey) for templates.
func Middleware(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet && c.Accepts(fiber.MIMETextHTML) != "" {
		if messages := Pop(c); len(messages) > 0 {
			c.Locals(LocalsKey, messages)
		}
	}

	return c.Next()
}

func load(sessionID string) []Message {
	raw, err := session.Store.Storage.Get(session.FlashKey(sessionID))
	if err != nil || len(raw) == 0 {
		return nil
	}

	var messages []Message
	if err = json.Unmarshal(raw, &messages); err != nil {
		log.Warn().Err(err).Msg("dropping unreadable flash messages")
		return nil
	}

	return messages
}
