// Package auth provides authentication middleware for the web application.
//
// Requests without a valid session are redirected to the login page, GET
// requests with their original URL as destination. Static files and the
// logout page are public. For authenticated requests the current user is
// stored in fiber.Locals for handlers, templates and the access log.
//
// Usage:
//
//	app.Use(authmiddleware.Middleware)
package auth
