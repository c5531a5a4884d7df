package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/STTM-NSU/crypto-dashboard/internal/format"
	"github.com/STTM-NSU/crypto-dashboard/internal/model"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	_width  = 800
	_height = 400
)

// RenderPriceChart draws the price history of one coin as a PNG line chart.
func RenderPriceChart(title string, points []model.PricePoint, f *format.Formatter) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 price points, got %d", len(points))
	}

	xValues := make([]time.Time, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = p.Ts
		yValues[i] = p.Price
	}

	series := chart.TimeSeries{
		Name: "Price (" + f.Currency() + ")",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("667eea"),
			FillColor:   drawing.ColorFromHex("667eea").WithAlpha(25),
			StrokeWidth: 2,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  title,
		Width:  _width,
		Height: _height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if p, ok := v.(float64); ok {
					return f.Price(&p)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("%w: chart render failed", err)
	}

	return buf.Bytes(), nil
}
