// internal/report/engine.go

// Package report answers aggregate questions about a user's meal records.
// Nothing here keeps state between calls: every answer is recomputed from
// the store, and nothing here formats text.
package report

import (
	"context"
	"fmt"
	"time"

	"nutrition-log/internal/models"
)

// Store is the read surface the engine needs.
type Store interface {
	QueryByUserAndDay(ctx context.Context, userID, day string) ([]models.MealRecord, error)
	QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.MealRecord, error)
	QueryAllByUser(ctx context.Context, userID string) ([]models.MealRecord, error)
}

// Itemization is a list of records with their elementwise total.
type Itemization struct {
	Label   string              `json:"label"`
	Records []models.MealRecord `json:"records"`
	Totals  models.Nutrients    `json:"totals"`
}

// Average is the mean daily intake over the days that have records.
type Average struct {
	models.Nutrients
	Days    int        `json:"days"`
	Since   *time.Time `json:"since,omitempty"`
	Through time.Time  `json:"through"`
}

// Point is one labeled sample of a time series.
type Point struct {
	Label string `json:"label"`
	models.Nutrients
}

// DaySum is the nutrient total of one calendar day.
type DaySum struct {
	Day string
	models.Nutrients
}

type Engine struct {
	store Store
	now   func() time.Time
}

// NewEngine builds an Engine. A nil clock means time.Now.
func NewEngine(store Store, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{store: store, now: now}
}

// DayItemization lists the records logged on day's calendar date.
func (e *Engine) DayItemization(ctx context.Context, userID string, day time.Time) (*Itemization, error) {
	key := models.DayKey(day)
	records, err := e.store.QueryByUserAndDay(ctx, userID, key)
	if err != nil {
		return nil, err
	}
	return itemize(key, records)
}

// Itemize lists the records selected by period: today's calendar day, a
// trailing window, or the full history.
func (e *Engine) Itemize(ctx context.Context, userID string, period models.Period) (*Itemization, error) {
	if period == models.PeriodDay {
		return e.DayItemization(ctx, userID, e.now())
	}

	records, err := e.records(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	return itemize(period.String(), records)
}

// RollingAverage averages daily sums over the distinct days with at least
// one record since now minus windowDays. windowDays <= 0 covers everything.
func (e *Engine) RollingAverage(ctx context.Context, userID string, windowDays int) (*Average, error) {
	now := e.now()

	var (
		records []models.MealRecord
		since   *time.Time
		err     error
	)
	if windowDays > 0 {
		start := now.AddDate(0, 0, -windowDays)
		since = &start
		records, err = e.store.QueryByUserSince(ctx, userID, start)
	} else {
		records, err = e.store.QueryAllByUser(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	days := DailySums(records)
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no meals in the last %d days", models.ErrNoData, windowDays)
	}

	var total models.Nutrients
	for _, d := range days {
		total = total.Add(d.Nutrients)
	}

	return &Average{
		Nutrients: total.Div(float64(len(days))),
		Days:      len(days),
		Since:     since,
		Through:   now,
	}, nil
}

// PeriodAverage is the average query of a period token. A day is today's
// calendar day, so its average is that day's total.
func (e *Engine) PeriodAverage(ctx context.Context, userID string, period models.Period) (*Average, error) {
	if period != models.PeriodDay {
		return e.RollingAverage(ctx, userID, period.WindowDays())
	}

	now := e.now()
	item, err := e.DayItemization(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return &Average{Nutrients: item.Totals, Days: 1, Since: &start, Through: now}, nil
}

// FullHistory returns every record of the user in insertion order.
func (e *Engine) FullHistory(ctx context.Context, userID string) ([]models.MealRecord, error) {
	return e.store.QueryAllByUser(ctx, userID)
}

// TimeSeries extracts chart points. A day yields one point per record
// labeled by time of day; longer periods yield one raw daily sum per day.
func (e *Engine) TimeSeries(ctx context.Context, userID string, period models.Period) ([]Point, error) {
	if period == models.PeriodDay {
		records, err := e.store.QueryByUserAndDay(ctx, userID, models.DayKey(e.now()))
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, fmt.Errorf("%w: no meals today", models.ErrNoData)
		}
		points := make([]Point, 0, len(records))
		for _, r := range records {
			points = append(points, Point{Label: r.LoggedAt.Format("15:04:05"), Nutrients: r.Nutrients()})
		}
		return points, nil
	}

	records, err := e.records(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	days := DailySums(records)
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: no meals for period %s", models.ErrNoData, period)
	}

	points := make([]Point, 0, len(days))
	for _, d := range days {
		points = append(points, Point{Label: d.Day, Nutrients: d.Nutrients})
	}
	return points, nil
}

// Records returns the raw records selected by period.
func (e *Engine) Records(ctx context.Context, userID string, period models.Period) ([]models.MealRecord, error) {
	if period == models.PeriodDay {
		return e.store.QueryByUserAndDay(ctx, userID, models.DayKey(e.now()))
	}
	return e.records(ctx, userID, period)
}

func (e *Engine) records(ctx context.Context, userID string, period models.Period) ([]models.MealRecord, error) {
	since, bounded := period.Since(e.now())
	if !bounded {
		return e.FullHistory(ctx, userID)
	}
	return e.store.QueryByUserSince(ctx, userID, since)
}

// DailySums groups records by calendar day in first-seen order and sums
// each nutrient within a day.
func DailySums(records []models.MealRecord) []DaySum {
	index := make(map[string]int)
	var days []DaySum
	for _, r := range records {
		key := r.Day()
		i, ok := index[key]
		if !ok {
			i = len(days)
			index[key] = i
			days = append(days, DaySum{Day: key})
		}
		days[i].Nutrients = days[i].Nutrients.Add(r.Nutrients())
	}
	return days
}

func itemize(label string, records []models.MealRecord) (*Itemization, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no meals for %s", models.ErrNoData, label)
	}

	var totals models.Nutrients
	for _, r := range records {
		totals = totals.Add(r.Nutrients())
	}
	return &Itemization{Label: label, Records: records, Totals: totals}, nil
}
