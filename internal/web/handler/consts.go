package handler

const (
	// BaseLayout is the default path for layout templates.
	BaseLayout = "layouts/base"

	// RootPath is the root path the route group.
	RootPath = "/"

	// RouterRootPath is the root path inside a fiber route group.
	RouterRootPath = "/"

	// HomePath is where the root path and a successful login redirect to.
	HomePath = "/settings/content"

	// ErrNilACDFatalLogMsg is used if app or dependencies are nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"
)
