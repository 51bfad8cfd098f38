package wire

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"

	"github.com/sevigo/titleforge/internal/app"
	"github.com/sevigo/titleforge/internal/config"
	"github.com/sevigo/titleforge/internal/logger"
)

var AppSet = wire.NewSet(
	app.NewApp,
	config.LoadConfig,
	provideLogger,
	provideLogWriter,
)

func provideLogger(cfg *config.Config, writer io.Writer) *slog.Logger {
	return logger.NewLogger(cfg.LogLevel, cfg.LogFormat, writer)
}

func provideLogWriter() io.Writer {
	return os.Stdout
}
