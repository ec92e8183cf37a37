// internal/render/chart.go
package render

import (
	"bytes"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"nutrition-log/internal/models"
	"nutrition-log/internal/report"
)

const (
	chartWidth  = 1024
	chartHeight = 512
	maxTicks    = 12
)

var metricColors = map[report.Metric]drawing.Color{
	report.MetricCalories: chart.ColorRed,
	report.MetricProtein:  chart.ColorBlue,
	report.MetricFat:      chart.ColorOrange,
	report.MetricCarbs:    chart.ColorGreen,
}

// ChartPNG draws one line per metric. Calories use the secondary axis
// since they dwarf the gram values.
func ChartPNG(cs *report.ChartSeries) ([]byte, error) {
	if len(cs.Labels) == 0 {
		return nil, fmt.Errorf("%w: empty chart series", models.ErrNoData)
	}

	step := (len(cs.Labels) + maxTicks - 1) / maxTicks
	xs := make([]float64, len(cs.Labels))
	var ticks []chart.Tick
	for i, label := range cs.Labels {
		xs[i] = float64(i)
		if i%step == 0 {
			ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
		}
	}
	// go-chart cannot draw a single-point range.
	if len(xs) == 1 {
		xs = append(xs, 1)
	}

	var (
		series      []chart.Series
		gramsMax    float64
		caloriesMax float64
	)
	for _, s := range cs.Series {
		ys := s.Values
		if len(ys) == 1 {
			ys = []float64{ys[0], ys[0]}
		}

		line := chart.ContinuousSeries{
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: metricColors[s.Metric],
				StrokeWidth: 2,
				DotColor:    metricColors[s.Metric],
				DotWidth:    3,
			},
		}
		if s.Metric == report.MetricCalories {
			line.Name = "calories (kcal)"
			line.YAxis = chart.YAxisSecondary
			caloriesMax = maxOf(caloriesMax, ys)
		} else {
			line.Name = string(s.Metric) + " (g)"
			gramsMax = maxOf(gramsMax, ys)
		}
		series = append(series, line)
	}

	ch := chart.Chart{
		Title:      fmt.Sprintf("Nutrient intake (%s)", cs.Period),
		Width:      chartWidth,
		Height:     chartHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: xs[len(xs)-1]},
		},
		YAxis: chart.YAxis{
			Name:  "grams",
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(gramsMax)},
		},
		YAxisSecondary: chart.YAxis{
			Name:  "kcal",
			Range: &chart.ContinuousRange{Min: 0, Max: headroom(caloriesMax)},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf.Bytes(), nil
}

func maxOf(current float64, values []float64) float64 {
	for _, v := range values {
		if v > current {
			current = v
		}
	}
	return current
}

// headroom keeps the axis range non-empty with a little space on top.
func headroom(top float64) float64 {
	if top <= 0 {
		return 1
	}
	return top * 1.1
}
