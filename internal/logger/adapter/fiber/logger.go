// Package fiber provides a zerolog based access log middleware for fiber.
package fiber

import (
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/logger"
)

// Config implements fiber middleware struct.
type Config struct {
	// Next defines a function to skip this middleware when returned true.
	//
	// Optional. Default: nil
	Next func(c *fiber.Ctx) bool

	// Config of the logger.
	Config logger.Log

	// CacheControlError max-age caching on chain errors.
	CacheControlError string

	// SkipURIs are request paths that are never logged, e.g. health checks or /metrics.
	SkipURIs []string
}

// ConfigDefault is the default config for fiber.
var ConfigDefault = Config{ //nolint:gochecknoglobals
	Next:              nil,
	CacheControlError: "max-age=0",
}

func configDefault(config ...Config) Config {
	if len(config) < 1 {
		return ConfigDefault
	}

	cfg := config[0]

	if cfg.CacheControlError == "" {
		cfg.CacheControlError = ConfigDefault.CacheControlError
	}

	return cfg
}

// New creates a new fiber access logging middleware using zerolog.
func New(config ...Config) fiber.Handler {
	var (
		writers    []io.Writer
		cfg        = configDefault(config...)
		once       sync.Once
		errHandler fiber.ErrorHandler
	)

	if cfg.Config.File.Enabled {
		if w := newRollingAccessFile(cfg.Config.File); w != nil {
			writers = append(writers, w)
		}
	}

	if cfg.Config.Console.Enabled && cfg.Config.EnableAccessLogToConsole {
		if cfg.Config.Console.UseConsoleWriter {
			writers = append(writers, zerolog.ConsoleWriter{
				Out:          os.Stdout,
				NoColor:      false,
				TimeFormat:   zerolog.TimeFieldFormat,
				PartsExclude: []string{"level"},
			})
		} else {
			writers = append(writers, os.Stdout)
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipURIs))
	for _, uri := range cfg.SkipURIs {
		skip[uri] = struct{}{}
	}

	accessLogger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger().
		Level(zerolog.NoLevel)

	return func(ctx *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(ctx) {
			return ctx.Next()
		}

		once.Do(func() {
			errHandler = ctx.App().ErrorHandler
		})

		start := time.Now()

		chainErr := ctx.Next()
		if chainErr != nil {
			if errH := errHandler(ctx, chainErr); errH != nil {
				_ = ctx.SendStatus(fiber.StatusInternalServerError) //nolint:errcheck
				ctx.Response().Header.Set(fiber.HeaderCacheControl, cfg.CacheControlError)
			}
		}

		elapsed := time.Since(start).Seconds()
		ctx.Response().Header.Set("X-Performance", strconv.FormatFloat(elapsed, 'f', 6, 64))

		if _, ok := skip[ctx.Path()]; ok {
			return nil
		}

		// ctx.Path keeps the unnormalised path, e.g. //a/b.
		p := ctx.Path()
		if q := ctx.Request().URI().QueryString(); len(q) > 0 {
			p = p + "?" + string(q)
		}

		ev := accessLogger.Log().
			Str("IP", ctx.IP()).
			Int("status", ctx.Response().StatusCode()).
			Float64("X-Performance", elapsed).
			Str("URI", p).
			Str("method", ctx.Method()).
			Bytes("host", ctx.Request().Host()).
			Str(fiber.HeaderXForwardedFor, ctx.Get(fiber.HeaderXForwardedFor)).
			Str(fiber.HeaderUserAgent, ctx.Get(fiber.HeaderUserAgent)).
			Str(fiber.HeaderReferer, ctx.Get(fiber.HeaderReferer))

		if user, ok := ctx.Locals("username").(string); ok && user != "" {
			ev.Str("user", user)
		}

		if chainErr != nil {
			ev.Err(chainErr)
		}

		ev.Send()

		return nil
	}
}

func newRollingAccessFile(cfg logger.LogFile) io.Writer {
	if cfg.Path != "" {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
			log.Error().Err(err).Str("path", cfg.Path).Msg("can't create log directory")

			return nil
		}
	}

	return logger.NewRollingFile(cfg.Path, cfg.Access)
}
