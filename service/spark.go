package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/sparkgraph/chart"
	"github.com/dnldd/sparkgraph/fetch"
	"github.com/dnldd/sparkgraph/shared"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// shutdownTimeout bounds the graceful shutdown drain.
	shutdownTimeout = time.Second * 5
	// cacheControl is the cache policy attached to rendered graphs.
	cacheControl = "public, max-age=300"
	// authChallenge is the challenge header sent with unauthorized responses.
	authChallenge = `Basic realm="Login Required"`
)

// SparkConfig represents the configuration struct for the spark graph service.
type SparkConfig struct {
	// APIKey is the polygon api key.
	APIKey string
	// AuthUsername is the basic auth username.
	AuthUsername string
	// AuthPassword is the basic auth password.
	AuthPassword string
	// ListenAddress is the address the http server listens on.
	ListenAddress string
	// ChartStyle selects the chart rendering style.
	ChartStyle chart.Style
	// Client represents the market data client.
	Client *fetch.PolygonClient
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs. A missing api key or password is
// deliberately not a construction error, the handler answers those requests
// with a misconfiguration response instead.
func (cfg *SparkConfig) Validate() error {
	var errs error

	if cfg.ListenAddress == "" {
		errs = errors.Join(errs, fmt.Errorf("listen address cannot be an empty string"))
	}
	if cfg.Client == nil {
		errs = errors.Join(errs, fmt.Errorf("market data client cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Spark represents the spark graph rendering service.
type Spark struct {
	cfg    *SparkConfig
	server *http.Server
	logger *zerolog.Logger
}

// NewSpark initializes a new spark graph service.
func NewSpark(cfg *SparkConfig) (*Spark, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating spark config: %w", err)
	}

	s := &Spark{
		cfg:    cfg,
		logger: cfg.Logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSparkGraph)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	s.server = &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: time.Second * 5,
	}

	return s, nil
}

// Run manages the lifecycle processes of the spark graph service.
func (s *Spark) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info().Msgf("listening on %s", s.cfg.ListenAddress)
		err := s.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		<-gCtx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info().Msg("shutting down gracefully")
		return s.server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// handleHealth answers liveness probes.
func (s *Spark) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleSparkGraph processes a spark graph request: authentication, parameter
// validation, window resolution, the upstream fetches and rendering. Failure
// at any stage short-circuits to an error response.
func (s *Spark) handleSparkGraph(w http.ResponseWriter, r *http.Request) {
	began := time.Now()
	logger := s.logger.With().Str("request", uuid.New().String()).Logger()

	if r.Method != http.MethodGet {
		s.writeError(w, &logger, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !verifyBasicAuth(r.Header.Get("Authorization"), s.cfg.AuthUsername, s.cfg.AuthPassword) {
		w.Header().Set("WWW-Authenticate", authChallenge)
		s.writeError(w, &logger, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if s.cfg.APIKey == "" {
		s.writeError(w, &logger, http.StatusInternalServerError, "POLYGON_API_KEY not configured")
		return
	}

	if s.cfg.AuthPassword == "" {
		s.writeError(w, &logger, http.StatusInternalServerError, "BASIC_AUTH_PASSWORD not configured")
		return
	}

	req, err := parseChartRequest(r.URL.Query())
	if err != nil {
		s.writeClassifiedError(w, &logger, err)
		return
	}

	logger.Debug().Msg(spew.Sdump(req))

	window, err := shared.ResolveWindow(req.Duration, time.Now())
	if err != nil {
		s.writeClassifiedError(w, &logger, err)
		return
	}

	// The two upstream calls are independent, issue them concurrently. The
	// company name lookup is best effort and never contributes an error.
	var bars []shared.PriceBar
	companyName := req.Ticker

	g, gCtx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		bars, err = s.cfg.Client.FetchAggregates(gCtx, req.Ticker, window)
		return err
	})
	g.Go(func() error {
		companyName = s.cfg.Client.FetchCompanyName(gCtx, req.Ticker)
		return nil
	})

	err = g.Wait()
	if err != nil {
		upstreamErrorsMetric.Inc()
		s.writeClassifiedError(w, &logger, err)
		return
	}

	renderStart := time.Now()
	png, err := chart.Render(bars, chart.Spark{
		Ticker:      req.Ticker,
		CompanyName: companyName,
		Width:       req.Width,
		Height:      req.Height,
		Style:       s.cfg.ChartStyle,
	})
	if err != nil {
		s.writeClassifiedError(w, &logger, err)
		return
	}
	renderDurationMetric.Observe(time.Since(renderStart).Seconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)

	requestsMetric.WithLabelValues(strconv.Itoa(http.StatusOK)).Inc()
	duration := req.Duration
	logger.Info().Str("ticker", req.Ticker).Str("duration", duration.String()).
		Int("width", req.Width).Int("height", req.Height).
		Dur("elapsed", time.Since(began)).Msg("spark graph served")
}

// writeClassifiedError maps the provided error to a response status and
// client-facing message and writes the error response.
func (s *Spark) writeClassifiedError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	status := shared.HTTPStatus(err)
	msg := err.Error()

	var cerr *shared.Error
	switch {
	case errors.As(err, &cerr) && cerr.Kind == shared.UpstreamTransfer:
		switch status {
		case http.StatusForbidden:
			msg = "Invalid Polygon.io API key"
		case http.StatusNotFound:
			msg = "Ticker not found"
		default:
			msg = "Error fetching stock data"
		}
	case status == http.StatusInternalServerError:
		msg = fmt.Sprintf("Internal server error: %s", msg)
	}

	s.writeError(w, logger, status, msg)
}

// writeError writes a json error response and records the outcome.
func (s *Spark) writeError(w http.ResponseWriter, logger *zerolog.Logger, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(map[string]string{"error": msg})
	if err != nil {
		logger.Error().Msgf("encoding error response: %v", err)
	}

	requestsMetric.WithLabelValues(strconv.Itoa(status)).Inc()

	switch {
	case status >= http.StatusInternalServerError:
		logger.Error().Int("status", status).Msg(msg)
	default:
		logger.Warn().Int("status", status).Msg(msg)
	}
}
