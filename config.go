package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/dnldd/sparkgraph/chart"
	"github.com/joho/godotenv"
)

const (
	// defaultAuthUsername is the basic auth username used when none is configured.
	defaultAuthUsername = "admin"
	// defaultListenAddress is the listen address used when none is configured.
	defaultListenAddress = ":8080"
	// defaultChartStyle is the chart style used when none is configured.
	defaultChartStyle = "labeled"
)

// Config is the configuration struct for the service.
type Config struct {
	// PolygonAPIKey is the polygon.io API key.
	PolygonAPIKey string
	// BasicAuthUsername is the basic auth username.
	BasicAuthUsername string
	// BasicAuthPassword is the basic auth password.
	BasicAuthPassword string
	// ListenAddress is the address the http server listens on.
	ListenAddress string
	// ChartStyle is the chart rendering style, labeled or minimal.
	ChartStyle string

	registeredFlags map[string]bool
}

// Validate asserts the config sane inputs.
func (cfg *Config) Validate() error {
	var errs error

	if cfg.PolygonAPIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("polygon api key cannot be an empty string"))
	}
	if cfg.BasicAuthPassword == "" {
		errs = errors.Join(errs, fmt.Errorf("basic auth password cannot be an empty string"))
	}
	if cfg.ListenAddress == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if _, err := chart.ParseStyle(cfg.ChartStyle); err != nil {
		errs = errors.Join(errs, err)
	}

	return errs
}

// registerFlag registers command line arguments of any type, using the
// provided environment variable as the default, and tracks them to avoid
// reregistration.
func (cfg *Config) registerFlag(name string, env string, value interface{}, usage string) error {
	if cfg.registeredFlags == nil {
		cfg.registeredFlags = make(map[string]bool)
	}

	if cfg.registeredFlags[name] {
		return nil
	}

	cfg.registeredFlags[name] = true

	defValue := os.Getenv(env)
	val := reflect.ValueOf(value)
	if val.Kind() != reflect.Ptr || val.IsNil() {
		return fmt.Errorf("%s: value must be a non-nil pointer", name)
	}

	switch val.Elem().Kind() {
	case reflect.String:
		flag.StringVar(value.(*string), name, defValue, usage)
	default:
		return fmt.Errorf("%s: unsupported type", name)
	}

	return nil
}

// loadConfig loads the configuration from environment variables and command line flags.
func loadConfig(cfg *Config, path string) error {
	if path == "" {
		path = ".env"
	}

	// Check if the expected .env file exists before loading it.
	_, err := os.Stat(path)
	if err == nil {
		err := godotenv.Load(path)
		if err != nil {
			return fmt.Errorf("loading .env file: %w", err)
		}
	}

	// Register command line arguments using loaded environment variables as defaults.
	err = cfg.registerFlag("polygonapikey", "POLYGON_API_KEY", &cfg.PolygonAPIKey, "the polygon.io api key")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("basicauthuser", "BASIC_AUTH_USERNAME", &cfg.BasicAuthUsername, "the basic auth username")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("basicauthpass", "BASIC_AUTH_PASSWORD", &cfg.BasicAuthPassword, "the basic auth password")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("listenaddress", "LISTEN_ADDRESS", &cfg.ListenAddress, "the http listen address")
	if err != nil {
		return err
	}
	err = cfg.registerFlag("chartstyle", "CHART_STYLE", &cfg.ChartStyle, "the chart rendering style (labeled or minimal)")
	if err != nil {
		return err
	}

	// Parse command-line flags.
	flag.Parse()

	if cfg.BasicAuthUsername == "" {
		cfg.BasicAuthUsername = defaultAuthUsername
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = defaultListenAddress
	}
	if cfg.ChartStyle == "" {
		cfg.ChartStyle = defaultChartStyle
	}

	return cfg.Validate()
}
