// Package web assembles the fiber application: templates, static files,
// middleware and the handlers of the settings admin.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
	fiberlogger "github.com/GoSettings-Admin/GoSettings-Admin/internal/logger/adapter/fiber"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/flash"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/admin/settings/keys"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/login"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/logout"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/settings/content"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/handler/settings/redirect"
	authmiddleware "github.com/GoSettings-Admin/GoSettings-Admin/internal/web/middleware/auth"
	"github.com/GoSettings-Admin/GoSettings-Admin/internal/web/navigation"
)

const (
	// MetricsPath serves the prometheus metrics.
	MetricsPath = "/metrics"
	// CheckAlivePath answers load balancer health checks.
	CheckAlivePath = "/checkalive"
)

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
}

// Start starts the web service on the configured port.
func (s *Service) Start() error {
	var doneFiber = make(chan error, 1)

	addr := ":" + strconv.Itoa(s.cfg.Webserver.Port)

	go func() {
		log.Info().Str("addr", addr).Msg("starting http server")

		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			doneFiber <- err
			return
		}

		doneFiber <- nil
	}()

	return <-doneFiber // wait for fiber to stop
}

// WaitShutdown waits for SIGINT or SIGTERM and shuts the server down gracefully.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	log.Info().Msg("stopping http server ...")

	if err := s.App.Shutdown(); err != nil {
		log.Error().Err(err).Msg("")
	}

	log.Info().Msg("http server was stopped ... good bye...")
}

// CheckAlive answers 200 while the service accepts traffic and 503 during shutdown.
func (s *Service) CheckAlive(c *fiber.Ctx) error {
	if !s.alive.Load() {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	return c.SendString("OK")
}

// New creates the web service and initializes all handlers with deps.
func New(deps *handler.Dependencies) (*Service, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}

	cfg := deps.Config

	// create fiber app
	app := fiber.New(
		fiber.Config{
			ReadBufferSize:    8192,
			AppName:           cfg.Title,
			CaseSensitive:     true,
			Prefork:           false,
			Immutable:         true,
			Views:             newTemplateEngine(cfg),
			PassLocalsToViews: true,
		},
	)

	service := &Service{
		cfg:          cfg,
		App:          app,
		fastShutDown: cfg.Webserver.ShutDownTime <= 0,
	}
	service.alive.Store(true)

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New(recover.Config{EnableStackTrace: cfg.DevMode}))
	}

	skipURIs := []string{MetricsPath}
	if cfg.Log.DisableCheckAlive {
		skipURIs = append(skipURIs, CheckAlivePath)
	}

	app.Use(fiberlogger.New(fiberlogger.Config{Config: cfg.Log, SkipURIs: skipURIs}))

	// public endpoints, registered before the auth middleware
	app.Get(CheckAlivePath, service.CheckAlive)
	app.Get(MetricsPath, adaptor.HTTPHandler(promhttp.Handler()))

	// serve embedded static files
	app.Use("/static",
		filesystem.New(
			filesystem.Config{
				Root:       http.FS(embeddedStaticFiles),
				PathPrefix: "static",
				Browse:     cfg.Webserver.BrowseStatic,
			},
		),
	)

	app.Use(authmiddleware.Middleware)
	app.Use(auth.AddPermissionsToLocals(deps.Auth))
	app.Use(flash.Middleware)

	// init handlers (they register their own routes with permission checks)
	handlers := []handler.Service{
		&login.Handler,
		&logout.Handler,
		&keys.Handler,
		&content.Handler,
		&redirect.Handler,
	}

	for _, h := range handlers {
		if err := h.Init(app, deps); err != nil {
			return nil, err
		}
	}

	// redirect root to the content overview
	app.Get(handler.RootPath, func(c *fiber.Ctx) error {
		return c.Redirect(handler.HomePath)
	})

	return service, nil
}

func newTemplateEngine(cfg *config.Config) *html.Engine {
	httpFS := http.FS(templateEmbedFS{embeddedTemplates})
	templateEngine := html.NewFileSystem(httpFS, ".gohtml")

	// in debug mode, use local filesystem for templates
	if cfg.DevMode {
		templateEngine = html.New("./internal/web/templates", ".gohtml")
		templateEngine.ShouldReload = true

		log.Warn().Msg("debug mode enabled: using local filesystem for templates")
	}

	templateEngine.AddFunc("add", func(a, b int) int {
		return a + b
	})
	templateEngine.AddFunc("menu", navigation.Menu)
	templateEngine.AddFunc("title", func() string {
		return cfg.Title
	})

	return templateEngine
}
