package handler

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// DestinationQuery is the query parameter naming where to go after a form was submitted.
const DestinationQuery = "destination"

// SafeDestination returns raw if it is a local absolute path, otherwise fallback.
// Scheme-relative (//host), backslash variants and anything parsing to a scheme or host are rejected.
func SafeDestination(raw, fallback string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return fallback
	}

	if strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") || strings.ContainsAny(raw, "\r\n") {
		return fallback
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}

	return raw
}

// Destination reads the destination query parameter of c.
func Destination(c *fiber.Ctx, fallback string) string {
	return SafeDestination(c.Query(DestinationQuery), fallback)
}
