// Package logger configures the global zerolog logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LevelWriter routes log lines to a writer per level group.
// Trace, warn and error and above each have their own writer, debug and info share one.
type LevelWriter struct {
	io.Writer
	ErrorWriter io.Writer
	InfoWriter  io.Writer
	TraceWriter io.Writer
	WarnWriter  io.Writer
}

// WriteLevel implements zerolog.LevelWriter.
func (lw *LevelWriter) WriteLevel(l zerolog.Level, p []byte) (n int, err error) {
	var w io.Writer

	switch {
	case l == zerolog.Disabled:
		return 0, nil
	case l == zerolog.TraceLevel:
		w = lw.TraceWriter
	case l == zerolog.WarnLevel:
		w = lw.WarnWriter
	case l > zerolog.WarnLevel:
		w = lw.ErrorWriter
	default:
		w = lw.InfoWriter
	}

	if w == nil {
		return len(p), nil
	}

	return w.Write(p) //nolint:wrapcheck
}

// Init configures the global logger from cfg.
// Without an enabled console or file output nothing is logged.
func Init(cfg Log) error {
	logLevel, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return errors.Wrap(ErrUnsupportedLogLevel, fmt.Sprintf("%q: %v", cfg.LogLevel, err))
	}

	if cfg.ServiceName == "" {
		return ErrServiceNameIsEmpty
	}

	if cfg.AppName == "" {
		return ErrAppNameIsEmpty
	}

	stack := logLevel == zerolog.TraceLevel
	if stack {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack //nolint:reassign
	}

	zerolog.SetGlobalLevel(logLevel)
	zerolog.ErrorHandler = ErrorHandler

	var writers []io.Writer

	if cfg.Console.Enabled {
		writers = append(writers, NewConsoleWriter(cfg))
	}

	if cfg.File.Enabled {
		if fw := newRollingLevelFiles(cfg.File); fw != nil {
			writers = append(writers, fw)
		}
	}

	ctx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Hook(NewPrometheusHook(cfg.ServiceName)).
		With().
		Timestamp().
		Str("app", cfg.AppName)

	switch {
	case cfg.ReportCaller && stack:
		ctx = ctx.Stack()
	case cfg.ReportCaller:
		ctx = ctx.Caller()
	}

	log.Logger = ctx.Logger()

	return nil
}

// NewRollingFile returns a lumberjack writer for f inside dir.
func NewRollingFile(dir string, f RollingFile) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path.Join(dir, f.Name),
		MaxSize:    f.MaxSize,
		MaxAge:     f.MaxAge,
		MaxBackups: f.MaxBackups,
		LocalTime:  false,
		Compress:   f.Compress,
	}
}

func newRollingLevelFiles(cfg LogFile) io.Writer {
	if err := os.MkdirAll(cfg.Path, 0o750); err != nil { //nolint:mnd
		log.Error().Err(err).Str("path", cfg.Path).Msg("can't create log directory")

		return nil
	}

	return &LevelWriter{
		ErrorWriter: NewRollingFile(cfg.Path, cfg.Error),
		InfoWriter:  NewRollingFile(cfg.Path, cfg.Info),
		TraceWriter: NewRollingFile(cfg.Path, cfg.Trace),
		WarnWriter:  NewRollingFile(cfg.Path, cfg.Warn),
	}
}

// NewConsoleWriter writes info to stdout and everything else to stderr,
// as JSON or through the zerolog console writer.
func NewConsoleWriter(cfg Log) io.Writer {
	wrap := func(out io.Writer) io.Writer {
		if !cfg.Console.UseConsoleWriter {
			return out
		}

		return zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    false,
			TimeFormat: zerolog.TimeFieldFormat,
		}
	}

	return &LevelWriter{
		ErrorWriter: wrap(os.Stderr),
		InfoWriter:  wrap(os.Stdout),
		TraceWriter: wrap(os.Stderr),
		WarnWriter:  wrap(os.Stderr),
	}
}
