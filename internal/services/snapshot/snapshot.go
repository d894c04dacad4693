package snapshot

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/plot/plotter"

	"weather-snapshot/internal/artifacts"
	"weather-snapshot/internal/chart"
	"weather-snapshot/internal/models"
	"weather-snapshot/internal/repositories"
	"weather-snapshot/pkg/logger"
)

// ChartRenderer turns an hourly series into image bytes.
type ChartRenderer interface {
	Render(series plotter.XYs, place string) ([]byte, error)
}

type Options struct {
	Query      models.ForecastQuery
	City       string
	OutputDir  string
	LatestJSON string
	LatestPNG  string
}

// SnapshotService runs the fetch, persist and plot pipeline once per Run call.
type SnapshotService struct {
	forecasts repositories.WeatherRepository
	places    repositories.PlaceRepository
	store     *artifacts.Store
	renderer  ChartRenderer
	opts      Options
	now       func() time.Time
	l         *logger.Logger
}

// NewSnapshotService accepts a nil places repository, which disables geocoding.
func NewSnapshotService(
	forecasts repositories.WeatherRepository,
	places repositories.PlaceRepository,
	store *artifacts.Store,
	renderer ChartRenderer,
	opts Options,
	l *logger.Logger,
) *SnapshotService {
	return &SnapshotService{
		forecasts: forecasts,
		places:    places,
		store:     store,
		renderer:  renderer,
		opts:      opts,
		now:       time.Now,
		l:         l,
	}
}

// WithClock replaces the clock used to date artifacts.
func (s *SnapshotService) WithClock(now func() time.Time) *SnapshotService {
	s.now = now
	return s
}

// Run executes every step in order and stops at the first failure. The forecast is
// fetched before anything is written, so a failed fetch leaves the output untouched.
func (s *SnapshotService) Run(ctx context.Context) (models.Artifacts, error) {
	l := s.l.With(map[string]any{"run_id": uuid.NewString()})

	paths := artifacts.BuildPaths(s.opts.OutputDir, s.now(), s.opts.LatestJSON, s.opts.LatestPNG)
	result := models.Artifacts{
		DatedJSON:  paths.DatedJSON,
		DatedPNG:   paths.DatedPNG,
		LatestJSON: paths.LatestJSON,
		LatestPNG:  paths.LatestPNG,
		Place:      s.opts.City,
	}

	l.Info("starting snapshot run", map[string]any{
		"params":     s.opts.Query.RequestParams(),
		"dated_json": paths.DatedJSON,
		"dated_png":  paths.DatedPNG,
	})

	if err := s.opts.Query.Coordinates.Validate(); err != nil {
		return result, s.fail(l, "prepare", err)
	}

	if err := artifacts.EnsureDir(paths.Dir); err != nil {
		return result, s.fail(l, "prepare", err)
	}

	if s.places != nil {
		result.Place = s.resolvePlace(ctx, l)
	}

	forecast, err := s.forecasts.FetchForecast(ctx, s.opts.Query)
	if err != nil {
		return result, s.fail(l, "fetch", errors.Wrap(err, "error fetching data from "+s.forecasts.Name()))
	}

	if err := s.store.WriteJSON(paths.DatedJSON, forecast.Raw); err != nil {
		return result, s.fail(l, "persist", errors.Wrap(err, "save forecast"))
	}
	if err := s.store.UpdateLatest(paths.DatedJSON, paths.LatestJSON); err != nil {
		return result, s.fail(l, "persist", errors.Wrap(err, "update latest forecast"))
	}

	series, err := chart.TemperatureSeries(forecast.Hourly)
	if err != nil {
		return result, s.fail(l, "plot", errors.Wrap(err, "extract hourly temperatures"))
	}
	result.Points = len(series)

	image, err := s.renderer.Render(series, result.Place)
	if err != nil {
		return result, s.fail(l, "plot", errors.Wrap(err, "render chart"))
	}
	if err := s.store.WriteFile(paths.DatedPNG, image); err != nil {
		return result, s.fail(l, "plot", errors.Wrap(err, "save chart"))
	}
	l.Info("plot saved", map[string]any{"path": paths.DatedPNG, "points": len(series)})

	if err := s.store.UpdateLatest(paths.DatedPNG, paths.LatestPNG); err != nil {
		return result, s.fail(l, "plot", errors.Wrap(err, "update latest chart"))
	}

	l.Info("snapshot run completed", map[string]any{"artifacts": result})

	return result, nil
}

// resolvePlace falls back to the configured city when the lookup fails or finds no
// name; the forecast does not depend on it.
func (s *SnapshotService) resolvePlace(ctx context.Context, l *logger.Logger) string {
	place, err := s.places.ReversePlace(ctx, s.opts.Query.Coordinates)
	if err != nil {
		l.Warning("reverse geocoding failed, keeping configured city", map[string]any{
			"repo": s.places.Name(),
			"city": s.opts.City,
			"err":  err,
		})
		return s.opts.City
	}
	if place == "" {
		l.Warning("reverse geocoding found no place name", map[string]any{"repo": s.places.Name()})
		return s.opts.City
	}

	l.Info("detected location", map[string]any{"place": place})
	return place
}

func (s *SnapshotService) fail(l *logger.Logger, step string, err error) error {
	l.Error(err, map[string]any{"step": step})
	return err
}
