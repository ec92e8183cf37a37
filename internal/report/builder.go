// internal/report/builder.go
package report

import (
	"context"
	"time"

	"nutrition-log/internal/models"
)

// TableHeader is the fixed column order of exported rows.
var TableHeader = []string{"logged_at", "description", "amount_grams", "calories", "protein", "fat", "carbs"}

// Row is one exported record.
type Row struct {
	LoggedAt    time.Time `json:"logged_at"`
	Description string    `json:"description"`
	AmountGrams int       `json:"amount_grams"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carbs       float64   `json:"carbs"`
}

type Table struct {
	Header []string `json:"header"`
	Rows   []Row    `json:"rows"`
}

// Metric names a chart series.
type Metric string

const (
	MetricCalories Metric = "calories"
	MetricProtein  Metric = "protein"
	MetricFat      Metric = "fat"
	MetricCarbs    Metric = "carbs"
)

// Metrics is the series order of every chart.
var Metrics = []Metric{MetricCalories, MetricProtein, MetricFat, MetricCarbs}

type Series struct {
	Metric Metric    `json:"metric"`
	Values []float64 `json:"values"`
}

// ChartSeries holds four parallel series sharing one label axis.
type ChartSeries struct {
	Period models.Period `json:"-"`
	Labels []string      `json:"labels"`
	Series []Series      `json:"series"`
}

// Builder shapes store data into export tables and chart series.
type Builder struct {
	engine *Engine
}

func NewBuilder(engine *Engine) *Builder {
	return &Builder{engine: engine}
}

// ToTable projects the user's full history into rows.
func (b *Builder) ToTable(ctx context.Context, userID string) (*Table, error) {
	records, err := b.engine.FullHistory(ctx, userID)
	if err != nil {
		return nil, err
	}
	return NewTable(records), nil
}

// ToTableFor projects the records selected by period into rows.
func (b *Builder) ToTableFor(ctx context.Context, userID string, period models.Period) (*Table, error) {
	if period == models.PeriodAll {
		return b.ToTable(ctx, userID)
	}
	records, err := b.engine.Records(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return NewTable(records), nil
}

// ToChartSeries splits the time series for period into one series per metric.
func (b *Builder) ToChartSeries(ctx context.Context, userID string, period models.Period) (*ChartSeries, error) {
	points, err := b.engine.TimeSeries(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return NewChartSeries(period, points), nil
}

func NewTable(records []models.MealRecord) *Table {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			LoggedAt:    r.LoggedAt,
			Description: r.Description,
			AmountGrams: r.AmountGrams,
			Calories:    r.Calories,
			Protein:     r.Protein,
			Fat:         r.Fat,
			Carbs:       r.Carbs,
		})
	}

	header := make([]string, len(TableHeader))
	copy(header, TableHeader)
	return &Table{Header: header, Rows: rows}
}

func NewChartSeries(period models.Period, points []Point) *ChartSeries {
	out := &ChartSeries{
		Period: period,
		Labels: make([]string, 0, len(points)),
		Series: make([]Series, len(Metrics)),
	}
	for i, m := range Metrics {
		out.Series[i] = Series{Metric: m, Values: make([]float64, 0, len(points))}
	}

	for _, p := range points {
		out.Labels = append(out.Labels, p.Label)
		out.Series[0].Values = append(out.Series[0].Values, p.Calories)
		out.Series[1].Values = append(out.Series[1].Values, p.Protein)
		out.Series[2].Values = append(out.Series[2].Values, p.Fat)
		out.Series[3].Values = append(out.Series[3].Values, p.Carbs)
	}
	return out
}
