package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dnldd/sparkgraph/shared"
)

const (
	// defaultDuration is the chart duration used when none is requested.
	defaultDuration = "day"
	// defaultSize is the chart size used when none is requested.
	defaultSize = "480x480"
	// minDimension is the smallest accepted chart dimension in pixels.
	minDimension = 100
	// maxDimension is the largest accepted chart dimension in pixels.
	maxDimension = 2000
)

// ChartRequest represents a validated spark graph request.
type ChartRequest struct {
	// Ticker is the upper-cased stock symbol.
	Ticker string
	// Duration is the requested chart window.
	Duration shared.Duration
	// Width is the requested image width in pixels.
	Width int
	// Height is the requested image height in pixels.
	Height int
}

// parseSize parses a WIDTHxHEIGHT size parameter.
func parseSize(param string) (int, int, error) {
	invalid := shared.NewValidationError("invalid size format, use WIDTHxHEIGHT (e.g. 480x480)")

	parts := strings.Split(param, "x")
	if len(parts) != 2 {
		return 0, 0, invalid
	}

	width, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, invalid
	}

	height, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, invalid
	}

	if width < minDimension || height < minDimension || width > maxDimension || height > maxDimension {
		return 0, 0, shared.NewValidationError(fmt.Sprintf("size must be between %dx%d and %dx%d",
			minDimension, minDimension, maxDimension, maxDimension))
	}

	return width, height, nil
}

// parseChartRequest extracts and validates a chart request from the provided
// query parameters. Validation failures carry a descriptive message and no
// partial request is returned.
func parseChartRequest(query url.Values) (*ChartRequest, error) {
	ticker := strings.ToUpper(strings.TrimSpace(query.Get("ticker")))
	if ticker == "" {
		return nil, shared.NewValidationError("missing required parameter: ticker")
	}

	durationParam := query.Get("duration")
	if durationParam == "" {
		durationParam = defaultDuration
	}

	duration, err := shared.ParseDuration(durationParam)
	if err != nil {
		return nil, err
	}

	sizeParam := query.Get("size")
	if sizeParam == "" {
		sizeParam = defaultSize
	}

	width, height, err := parseSize(sizeParam)
	if err != nil {
		return nil, err
	}

	return &ChartRequest{
		Ticker:   ticker,
		Duration: duration,
		Width:    width,
		Height:   height,
	}, nil
}
