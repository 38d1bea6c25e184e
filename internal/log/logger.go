package log

import (
	"fmt"
	"github.com/TheZeroSlave/zapsentry"
	"github.com/getsentry/sentry-go"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
	"os"
)

// NewLogger installs the global logger of a service. Error entries are also
// reported to Sentry when sentryDsn is set, through the global Sentry client so
// that sentry.Flush drains them.
func NewLogger(service, path string, debug bool, sentryDsn string) {
	logger, err := Build(service, path, debug)
	if err != nil {
		log.Fatal(err)
	}

	if sentryDsn != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: sentryDsn, ServerName: service}); err != nil {
			logger.With(zap.Error(err)).Warn("Logger: Sentry reporting disabled")
		} else {
			logger = WithSentry(logger, service, zapsentry.NewSentryClientFromClient(sentry.CurrentHub().Client()))
		}
	}

	zap.ReplaceGlobals(logger)
}

// Build returns a logger writing JSON lines to path and colored text to stdout,
// every entry tagged with the service name.
func Build(service, path string, debug bool) (*zap.Logger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file %s: %w", path, err)
	}

	pe := zap.NewProductionEncoderConfig()
	pe.EncodeTime = zapcore.ISO8601TimeEncoder
	pe.MessageKey = "message"
	pe.TimeKey = "time"
	fileEncoder := zapcore.NewJSONEncoder(pe)

	pe.EncodeLevel = zapcore.CapitalColorLevelEncoder
	consoleEncoder := zapcore.NewConsoleEncoder(pe)

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewTee(
		zapcore.NewCore(fileEncoder, zapcore.AddSync(f), level),
		zapcore.NewCore(consoleEncoder, zapcore.AddSync(colorable.NewColorableStdout()), level),
	)

	return zap.New(core).With(zap.String("service", service)), nil
}

// WithSentry tees error entries of logger to Sentry. Info entries and above
// travel with them as breadcrumbs.
func WithSentry(logger *zap.Logger, service string, client zapsentry.SentryClientFactory) *zap.Logger {
	cfg := zapsentry.Configuration{
		Level:             zapcore.ErrorLevel,
		EnableBreadcrumbs: true,
		BreadcrumbLevel:   zapcore.InfoLevel,
		Tags: map[string]string{
			"component": service,
		},
	}
	core, err := zapsentry.NewCore(cfg, client)

	// breadcrumbs are kept on an explicit scope
	logger = logger.With(zapsentry.NewScope())

	if err != nil {
		logger.With(zap.Error(err)).Warn("Logger: Sentry reporting disabled")
	}
	return zapsentry.AttachCoreToLogger(core, logger)
}
