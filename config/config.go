package config

import (
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"weather-snapshot/internal/models"
)

const DefaultConfigFile = "config/config.yaml"

type Config struct {
	App      AppConfig      `yaml:"app"`
	Location LocationConfig `yaml:"location"`
	Forecast ForecastConfig `yaml:"forecast"`
	Geocoder GeocoderConfig `yaml:"geocoder"`
	Output   OutputConfig   `yaml:"output"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Sentry   SentryConfig   `yaml:"sentry"`
}

type AppConfig struct {
	Name    string `yaml:"name" validate:"required"`
	Version string `yaml:"version"`
	Env     string `yaml:"env" validate:"required"`
}

type LocationConfig struct {
	City      string  `yaml:"city" validate:"required"`
	Latitude  float64 `yaml:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `yaml:"longitude" validate:"gte=-180,lte=180"`
}

type ForecastConfig struct {
	BaseURL  string   `yaml:"base_url" validate:"required,url"`
	Current  bool     `yaml:"current"`
	Hourly   []string `yaml:"hourly" validate:"required,min=1,has_item=temperature_2m,dive,required"`
	Daily    []string `yaml:"daily" validate:"dive,required"`
	Timezone string   `yaml:"timezone" validate:"required"`
}

type GeocoderConfig struct {
	Enabled   bool   `yaml:"enabled"`
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	UserAgent string `yaml:"user_agent" validate:"required_if=Enabled true"`
}

type OutputConfig struct {
	Dir        string `yaml:"dir" validate:"required"`
	LatestMode string `yaml:"latest_mode" validate:"oneof=copy symlink"`
	LatestJSON string `yaml:"latest_json" validate:"required,nefield=LatestPNG"`
	LatestPNG  string `yaml:"latest_png" validate:"required"`
}

type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
}

type SentryConfig struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

// Defaults describe the original fixed-location run: Pittsburgh, Open-Meteo,
// outputs under data/ with copied latest pointers.
func Defaults() Config {
	return Config{
		App: AppConfig{
			Name:    "weather-snapshot",
			Version: "1.0.0",
			Env:     "development",
		},
		Location: LocationConfig{
			City:      "Pittsburgh",
			Latitude:  40.4406,
			Longitude: -79.9959,
		},
		Forecast: ForecastConfig{
			BaseURL:  "https://api.open-meteo.com/v1/forecast",
			Current:  true,
			Hourly:   []string{"temperature_2m", "precipitation", "wind_speed_10m"},
			Daily:    []string{"temperature_2m_max", "temperature_2m_min", "precipitation_sum"},
			Timezone: "America/New_York",
		},
		Geocoder: GeocoderConfig{
			Enabled:   false,
			BaseURL:   "https://nominatim.openstreetmap.org/reverse",
			UserAgent: "weather-snapshot/1.0",
		},
		Output: OutputConfig{
			Dir:        "data",
			LatestMode: "copy",
			LatestJSON: "weather.json",
			LatestPNG:  "weather.png",
		},
		HTTP: HTTPConfig{
			Timeout: 30 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ConfigProvider loads and validates a Config.
type ConfigProvider interface {
	Load() (*Config, error)
	Validate(config *Config) error
}

// FileConfigProvider layers defaults, an optional YAML file and the environment,
// in that order of increasing precedence.
type FileConfigProvider struct {
	path     string
	validate *validator.Validate
}

func NewFileConfigProvider(path string) *FileConfigProvider {
	v := validator.New()
	// the chart needs hourly temperatures, so they must be requested
	_ = v.RegisterValidation("has_item", hasItem)

	return &FileConfigProvider{
		path:     path,
		validate: v,
	}
}

// hasItem checks that a string slice contains the tag parameter.
func hasItem(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice {
		return false
	}
	for i := 0; i < field.Len(); i++ {
		if field.Index(i).String() == fl.Param() {
			return true
		}
	}
	return false
}

func (p *FileConfigProvider) Load() (*Config, error) {
	cnf := Defaults()

	if err := p.loadFromFile(&cnf); err != nil {
		return nil, err
	}

	// Fields carry no envconfig defaults so unset variables leave file values alone.
	if err := envconfig.Process("", &cnf); err != nil {
		return nil, fmt.Errorf("%w: environment variable parsing: %w", models.ErrConfig, err)
	}

	return &cnf, nil
}

// loadFromFile treats a missing file as empty.
func (p *FileConfigProvider) loadFromFile(cnf *Config) error {
	yamlData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: read %s: %w", models.ErrConfig, p.path, err)
	}

	if err := yaml.Unmarshal(yamlData, cnf); err != nil {
		return fmt.Errorf("%w: parse %s: %w", models.ErrConfig, p.path, err)
	}

	return nil
}

func (p *FileConfigProvider) Validate(cnf *Config) error {
	if err := p.validate.Struct(cnf); err != nil {
		return fmt.Errorf("%w: %w", models.ErrConfig, err)
	}
	return nil
}

// NewConfig loads the file named by CONFIG_FILE, or DefaultConfigFile.
func NewConfig() (*Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = DefaultConfigFile
	}
	return NewConfigWithProvider(NewFileConfigProvider(path))
}

func NewConfigWithProvider(provider ConfigProvider) (*Config, error) {
	cnf, err := provider.Load()
	if err != nil {
		return nil, err
	}

	if err := provider.Validate(cnf); err != nil {
		return nil, err
	}

	return cnf, nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c *Config) Coordinates() models.Coordinates {
	return models.Coordinates{
		Latitude:  c.Location.Latitude,
		Longitude: c.Location.Longitude,
	}
}

func (c *Config) ForecastQuery() models.ForecastQuery {
	return models.ForecastQuery{
		Coordinates: c.Coordinates(),
		Current:     c.Forecast.Current,
		Hourly:      c.Forecast.Hourly,
		Daily:       c.Forecast.Daily,
		Timezone:    c.Forecast.Timezone,
	}
}
