package chart

import (
	"fmt"
	"math"
	"time"
)

const (
	// maxTicks is the maximum number of x-axis ticks placed on a chart.
	maxTicks = 6
)

// Style represents the chart rendering style.
type Style int

const (
	// Labeled renders a titled chart with axes, tick labels and a price
	// annotation on a white background.
	Labeled Style = iota
	// Minimal renders a bare transparent spark line with no axes or labels.
	Minimal
)

// String stringifies the provided style.
func (s *Style) String() string {
	switch *s {
	case Labeled:
		return "labeled"
	case Minimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// ParseStyle parses a chart style keyword.
func ParseStyle(keyword string) (Style, error) {
	switch keyword {
	case "labeled":
		return Labeled, nil
	case "minimal":
		return Minimal, nil
	default:
		return 0, fmt.Errorf("invalid chart style: %s", keyword)
	}
}

// yBounds returns padded y-axis bounds for the provided closes. The padding
// keeps a visible band around the series even when prices are near constant.
func yBounds(closes []float64) (float64, float64) {
	low, high := closes[0], closes[0]
	for idx := range closes {
		if closes[idx] < low {
			low = closes[idx]
		}
		if closes[idx] > high {
			high = closes[idx]
		}
	}

	spread := high - low

	var padding float64
	switch {
	case spread > 0:
		padding = math.Max(0.05*spread, 0.005*low)
	default:
		padding = 0.01 * low
	}

	// An all-zero flat series produces no padding, widen it manually to
	// keep the axis range non-degenerate.
	if padding == 0 {
		padding = 1
	}

	return low - padding, high + padding
}

// tickIndices selects up to maxTicks evenly spaced bar indices spanning the
// full sequence, always including the first and last bars.
func tickIndices(n int) []int {
	if n <= 0 {
		return nil
	}

	count := maxTicks
	if n < count {
		count = n
	}

	if count == 1 {
		return []int{0}
	}

	indices := make([]int, 0, count)
	last := -1
	for i := 0; i < count; i++ {
		idx := int(math.Round(float64(i) * float64(n-1) / float64(count-1)))
		if idx == last {
			continue
		}

		indices = append(indices, idx)
		last = idx
	}

	return indices
}

// labelLayout returns the time label layout for the provided data span.
// Short spans label by time of day, longer spans add or switch to dates.
func labelLayout(span time.Duration) string {
	switch {
	case span < time.Hour*24:
		return "15:04"
	case span < time.Hour*24*7:
		return "01/02 15:04"
	default:
		return "01/02"
	}
}

// annotationText formats the latest close and its signed point and percent
// change from the first close. The second return reports whether the change
// is negative.
func annotationText(first float64, latest float64) (string, bool) {
	change := latest - first

	var pct float64
	if first != 0 {
		pct = change / first * 100
	}

	return fmt.Sprintf("$%.2f %+.2f (%+.2f%%)", latest, change, pct), change < 0
}
