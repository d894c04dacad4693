package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"weather-snapshot/config"
	"weather-snapshot/internal/artifacts"
	"weather-snapshot/internal/chart"
	"weather-snapshot/internal/models"
	"weather-snapshot/internal/repositories"
	"weather-snapshot/internal/services/snapshot"
	"weather-snapshot/pkg/logger"
	"weather-snapshot/pkg/observe"
)

const (
	exitOK = iota
	exitUnknown
	exitConfig
	exitTransport
	exitParse
	exitFilesystem
	exitRender
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("failed to load .env: %v", err)
	}

	cnf, err := config.NewConfig()
	if err != nil {
		log.Printf("failed to load config: %v", err)
		return exitCode(err)
	}

	writers := []io.Writer{os.Stdout}
	var hook *observe.SentryHook
	if cnf.Sentry.DSN != "" {
		if hook, err = observe.NewSentryHook(cnf.App.Env, cnf.App.Name, cnf.Sentry.DSN, cnf.Sentry.Debug); err != nil {
			log.Printf("sentry disabled: %v", err)
		} else {
			writers = append(writers, hook)
		}
	}

	l := logger.NewZapLogger(cnf.App.Name, cnf.App.Env, cnf.Log.Level, writers...)
	defer func() {
		_ = l.Stop()
		if hook != nil {
			hook.Flush()
		}
	}()

	mode, err := artifacts.ParseLatestMode(cnf.Output.LatestMode)
	if err != nil {
		l.Error(err)
		return exitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpClient := &http.Client{Timeout: cnf.HTTP.Timeout}
	forecasts, places := repositories.InitRepositories(cnf, l, httpClient)

	service := snapshot.NewSnapshotService(
		forecasts,
		places,
		artifacts.NewStore(mode, l),
		chart.NewRenderer(),
		snapshot.Options{
			Query:      cnf.ForecastQuery(),
			City:       cnf.Location.City,
			OutputDir:  cnf.Output.Dir,
			LatestJSON: cnf.Output.LatestJSON,
			LatestPNG:  cnf.Output.LatestPNG,
		},
		l,
	)

	result, err := service.Run(ctx)
	if err != nil {
		code := exitCode(err)
		l.Warning("snapshot run failed", map[string]any{"exit_code": code})
		return code
	}

	fmt.Printf("Weather data saved to '%s'.\nPlot saved to '%s'.\n", result.DatedJSON, result.DatedPNG)

	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, models.ErrConfig):
		return exitConfig
	case errors.Is(err, models.ErrTransport):
		return exitTransport
	case errors.Is(err, models.ErrParse):
		return exitParse
	case errors.Is(err, models.ErrFilesystem):
		return exitFilesystem
	case errors.Is(err, models.ErrRender):
		return exitRender
	default:
		return exitUnknown
	}
}
