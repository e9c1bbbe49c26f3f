package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dnldd/sparkgraph/shared"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	// lineColor is the spark line stroke color.
	lineColor = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 0xff}
	// fillColor is the area fill color under the spark line.
	fillColor = drawing.Color{R: 0x1f, G: 0x77, B: 0xb4, A: 0x4c}
	// gainColor annotates a non-negative price change.
	gainColor = drawing.Color{R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff}
	// lossColor annotates a negative price change.
	lossColor = drawing.Color{R: 0xd6, G: 0x27, B: 0x28, A: 0xff}
)

// Spark represents a spark graph rendering request.
type Spark struct {
	// Ticker is the upper-cased stock symbol.
	Ticker string
	// CompanyName is the display name for the ticker.
	CompanyName string
	// Width is the output image width in pixels.
	Width int
	// Height is the output image height in pixels.
	Height int
	// Style selects the rendering style.
	Style Style
}

// Render renders the provided ascending-ordered price bars as a png spark
// graph. The first and last bars define the price change and the label range.
func Render(bars []shared.PriceBar, spark Spark) ([]byte, error) {
	if len(bars) == 0 {
		return nil, shared.NewDomainError("no price data available")
	}

	// A lone bar cannot span an x-range, plot it as a flat segment.
	if len(bars) == 1 {
		bars = []shared.PriceBar{bars[0], bars[0]}
	}

	xs := make([]float64, len(bars))
	closes := make([]float64, len(bars))
	for idx := range bars {
		xs[idx] = float64(idx)
		closes[idx] = bars[idx].Close
	}

	yMin, yMax := yBounds(closes)

	series := gochart.ContinuousSeries{
		XValues: xs,
		YValues: closes,
		Style: gochart.Style{
			StrokeColor: lineColor,
			StrokeWidth: 2,
			FillColor:   fillColor,
		},
	}

	var graph gochart.Chart

	switch spark.Style {
	case Minimal:
		graph = gochart.Chart{
			Width:      spark.Width,
			Height:     spark.Height,
			Background: gochart.Style{FillColor: drawing.ColorTransparent},
			Canvas:     gochart.Style{FillColor: drawing.ColorTransparent},
			XAxis:      gochart.XAxis{Style: gochart.Hidden()},
			YAxis: gochart.YAxis{
				Style: gochart.Hidden(),
				Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
			},
			Series: []gochart.Series{series},
		}

	default:
		ticks, err := timeTicks(bars)
		if err != nil {
			return nil, err
		}

		label, negative := annotationText(bars[0].Close, bars[len(bars)-1].Close)
		annotationColor := gainColor
		if negative {
			annotationColor = lossColor
		}

		annotation := gochart.AnnotationSeries{
			Annotations: []gochart.Value2{
				{
					XValue: xs[len(xs)-1],
					YValue: closes[len(closes)-1],
					Label:  label,
				},
			},
			Style: gochart.Style{
				StrokeColor: annotationColor,
				FontColor:   annotationColor,
				FillColor:   drawing.ColorWhite,
			},
		}

		graph = gochart.Chart{
			Title:      fmt.Sprintf("%s - %s", spark.Ticker, spark.CompanyName),
			Width:      spark.Width,
			Height:     spark.Height,
			Background: gochart.Style{FillColor: drawing.ColorWhite},
			Canvas:     gochart.Style{FillColor: drawing.ColorWhite},
			XAxis:      gochart.XAxis{Ticks: ticks},
			YAxis: gochart.YAxis{
				Range: &gochart.ContinuousRange{Min: yMin, Max: yMax},
				ValueFormatter: func(v interface{}) string {
					value, ok := v.(float64)
					if !ok {
						return ""
					}

					return fmt.Sprintf("%.2f", value)
				},
			},
			Series: []gochart.Series{series, annotation},
		}
	}

	buf := bytes.NewBuffer(make([]byte, 0, 1<<16))
	err := graph.Render(gochart.PNG, buf)
	if err != nil {
		return nil, fmt.Errorf("rendering spark graph for %s: %w", spark.Ticker, err)
	}

	return buf.Bytes(), nil
}

// timeTicks builds x-axis ticks for the provided bars, labeled in new york
// time. Bar timestamps are epoch milliseconds, reported by the provider in
// UTC.
func timeTicks(bars []shared.PriceBar) ([]gochart.Tick, error) {
	_, loc, err := shared.NewYorkTime()
	if err != nil {
		return nil, fmt.Errorf("loading display timezone: %w", err)
	}

	span := bars[len(bars)-1].Time().Sub(bars[0].Time())
	layout := labelLayout(span)

	indices := tickIndices(len(bars))
	ticks := make([]gochart.Tick, 0, len(indices))
	for _, idx := range indices {
		ts := time.UnixMilli(bars[idx].Timestamp).In(loc)
		ticks = append(ticks, gochart.Tick{Value: float64(idx), Label: ts.Format(layout)})
	}

	return ticks, nil
}
