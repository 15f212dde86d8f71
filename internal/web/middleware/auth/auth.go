package auth

import (
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/login"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/logout"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/session"
)

// Locals keys set for authenticated requests.
const (
	LocalsCurrentUser = "CurrentUser"
	LocalsUsername    = "username"
)

// Middleware is a Fiber middleware that checks for user authentication.
func Middleware(c *fiber.Ctx) error {
	var (
		isLoginPage   = IsLoginPage(c)
		sessDataValid bool
	)

	if IsPublic(c) {
		return c.Next()
	}

	// get session cookie
	loginCookie := c.Cookies(session.CookieName)

	// if no session cookie, redirect to login page
	if loginCookie == "" && !isLoginPage {
		return redirectToLogin(c)
	}

	// check session validity
	sessData := new(session.Data)
	if err := sessData.Read(loginCookie); err != nil {
		// If we're already on the login page, don't redirect (would cause loop)
		if isLoginPage {
			return c.Next()
		}

		return redirectToLogin(c)
	}

	// valid data in session
	if sessData.User.ID > 0 {
		sessDataValid = true
		// Add the current user to locals for template access
		c.Locals(LocalsCurrentUser, sessData.User)
		c.Locals(LocalsUsername, sessData.User.Username)
	}

	if sessDataValid && isLoginPage {
		return c.Redirect(handler.HomePath)
	}

	if !sessDataValid && !isLoginPage {
		return redirectToLogin(c)
	}

	return c.Next()
}

// redirectToLogin sends the browser to the login page, remembering where it wanted to go.
func redirectToLogin(c *fiber.Ctx) error {
	target := login.Path

	if c.Method() == fiber.MethodGet && c.OriginalURL() != handler.RootPath {
		target += "?" + url.Values{handler.DestinationQuery: {c.OriginalURL()}}.Encode()
	}

	return c.Redirect(target)
}

// IsPublic reports whether the request needs no session at all.
func IsPublic(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())

	return strings.HasPrefix(originalURL, "/static") || IsLogoutPage(c)
}

// IsLoginPage checks if the current request is for the login page.
func IsLoginPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, login.Path)
}

// IsLogoutPage checks if the current request is for the logout page.
func IsLogoutPage(c *fiber.Ctx) bool {
	originalURL := strings.ToLower(c.OriginalURL())
	return strings.HasPrefix(originalURL, logout.Path)
}
