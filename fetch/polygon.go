package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dnldd/sparkgraph/shared"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

const (
	// BaseURL is the polygon api base url.
	BaseURL = "https://api.polygon.io"
	// queryDateLayout is the date format used by the aggregates range path.
	queryDateLayout = "2006-01-02"
	// freeTierLookbackDays is the maximum historical lookback permitted on
	// the provider's free tier.
	freeTierLookbackDays = 730
	// aggregateResultLimit caps aggregate results per request, effectively
	// unbounded for all supported windows.
	aggregateResultLimit = 50000
	// payloadSnippetLimit bounds raw payload snippets included in
	// diagnostic errors.
	payloadSnippetLimit = 200
)

// PolygonConfig represents the configuration for the polygon client.
type PolygonConfig struct {
	// APIKey is the polygon api key.
	APIKey string
	// BaseURL is the polygon api base url.
	BaseURL string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *PolygonConfig) Validate() error {
	var errs error

	if cfg.APIKey == "" {
		errs = errors.Join(errs, fmt.Errorf("polygon api key cannot be an empty string"))
	}
	if cfg.BaseURL == "" {
		errs = errors.Join(errs, fmt.Errorf("polygon base url cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// PolygonClient represents the polygon.io market data api client.
type PolygonClient struct {
	cfg   *PolygonConfig
	httpc http.Client
}

// NewPolygonClient instantiates a new polygon client.
func NewPolygonClient(cfg *PolygonConfig) (*PolygonClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating polygon config: %w", err)
	}

	return &PolygonClient{
		cfg:   cfg,
		httpc: http.Client{Timeout: time.Second * 10},
	}, nil
}

// formURL creates full urls including parameters for the api. Safe for
// concurrent use.
func (c *PolygonClient) formURL(path string, params string) string {
	var buf strings.Builder
	buf.WriteString(c.cfg.BaseURL)
	buf.WriteString(path)
	buf.WriteString("?")
	buf.WriteString(params)

	return buf.String()
}

// get issues a single request for the provided url and returns the response
// status and body. Every upstream call is attempted exactly once.
func (c *PolygonClient) get(ctx context.Context, formedURL string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, formedURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("issuing request: %w", err)
	}

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// ParsePriceBars parses price bars from the provided json results.
func (c *PolygonClient) ParsePriceBars(data []gjson.Result) []shared.PriceBar {
	bars := make([]shared.PriceBar, len(data))

	for idx := range data {
		var bar shared.PriceBar

		bar.Timestamp = data[idx].Get("t").Int()
		bar.Open = data[idx].Get("o").Float()
		bar.High = data[idx].Get("h").Float()
		bar.Low = data[idx].Get("l").Float()
		bar.Close = data[idx].Get("c").Float()
		bar.Volume = data[idx].Get("v").Float()

		bars[idx] = bar
	}

	return bars
}

// ClampWindowStart limits the window start to the provider's free tier
// lookback, anchored at now.
func ClampWindowStart(window shared.Window, now time.Time) shared.Window {
	earliest := now.AddDate(0, 0, -freeTierLookbackDays)
	if window.Start.Before(earliest) {
		window.Start = earliest
	}

	return window
}

// FetchAggregates fetches ascending-ordered price bars for the ticker over
// the provided window at the window's granularity.
func (c *PolygonClient) FetchAggregates(ctx context.Context, ticker string, window shared.Window) ([]shared.PriceBar, error) {
	window = ClampWindowStart(window, time.Now())

	params := url.Values{}
	params.Add("apiKey", c.cfg.APIKey)
	params.Add("sort", "asc")
	params.Add("limit", fmt.Sprintf("%d", aggregateResultLimit))
	// Use adjusted prices.
	params.Add("adjusted", "true")

	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/%d/%s/%s/%s", ticker, window.Multiplier,
		window.Timespan, window.Start.Format(queryDateLayout), window.End.Format(queryDateLayout))
	formedURL := c.formURL(path, params.Encode())

	status, body, err := c.get(ctx, formedURL)
	if err != nil {
		return nil, fmt.Errorf("fetching aggregates for %s: %w", ticker, err)
	}

	if status != http.StatusOK {
		c.cfg.Logger.Error().Msgf("aggregates request for %s failed with status %d: %s",
			ticker, status, snippet(body))
		return nil, shared.NewTransferError(status,
			fmt.Sprintf("fetching aggregates for %s: provider responded with status %d", ticker, status))
	}

	payloadStatus := gjson.GetBytes(body, "status").String()
	if payloadStatus == "ERROR" {
		msg := gjson.GetBytes(body, "error").String()
		if msg == "" {
			msg = "unknown error"
		}

		return nil, shared.NewDomainError(fmt.Sprintf("polygon api error: %s", msg))
	}

	if payloadStatus == "OK" && gjson.GetBytes(body, "resultsCount").Int() == 0 {
		return nil, shared.NewDomainError(fmt.Sprintf("no data available for %s, the market might be "+
			"closed or this ticker has no recent trading activity", ticker))
	}

	results := gjson.GetBytes(body, "results").Array()
	if len(results) == 0 {
		return nil, shared.NewDomainError(fmt.Sprintf("no data available for %s from %s to %s, response: %s",
			ticker, window.Start.Format(queryDateLayout), window.End.Format(queryDateLayout), snippet(body)))
	}

	return c.ParsePriceBars(results), nil
}

// FetchCompanyName fetches a display name for the ticker from the reference
// api. The lookup is best effort: on any failure the ticker symbol itself is
// returned and the failure is only logged, so callers cannot distinguish a
// fallback from a hit.
func (c *PolygonClient) FetchCompanyName(ctx context.Context, ticker string) string {
	params := url.Values{}
	params.Add("apiKey", c.cfg.APIKey)

	formedURL := c.formURL(fmt.Sprintf("/v3/reference/tickers/%s", ticker), params.Encode())

	status, body, err := c.get(ctx, formedURL)
	if err != nil {
		c.cfg.Logger.Warn().Msgf("fetching company name for %s: %v", ticker, err)
		return ticker
	}

	if status != http.StatusOK {
		c.cfg.Logger.Warn().Msgf("company name request for %s failed with status %d", ticker, status)
		return ticker
	}

	name := gjson.GetBytes(body, "results.name").String()
	if name == "" {
		c.cfg.Logger.Warn().Msgf("company name missing in reference payload for %s", ticker)
		return ticker
	}

	return name
}

// snippet truncates the provided payload for inclusion in diagnostics.
func snippet(body []byte) string {
	if len(body) > payloadSnippetLimit {
		body = body[:payloadSnippetLimit]
	}

	return string(body)
}
