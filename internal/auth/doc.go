// Package auth provides authentication and authorization for the admin surface.
//
// Users authenticate against the local database (Argon2id password hashes)
// and receive their permissions through their role. Roles carry a set of
// permissions; a request is authorised when the session user's role has the
// permission named by the route.
//
// Example usage:
//
//	authService := auth.NewService(db)
//
//	app.Get("/admin/settings/keys",
//	    auth.RequirePermission(authService, auth.PermAdminSettingsKeys),
//	    handler,
//	)
package auth
