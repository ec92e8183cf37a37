// internal/report/engine_test.go
package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"nutrition-log/internal/models"
)

type memStore struct {
	records []models.MealRecord
	err     error
}

func (m *memStore) add(userID, description string, at time.Time, grams int, n models.Nutrients) {
	m.records = append(m.records, models.MealRecord{
		ID:          description + at.String(),
		UserID:      userID,
		LoggedAt:    at,
		Description: description,
		AmountGrams: grams,
		Calories:    n.Calories,
		Protein:     n.Protein,
		Fat:         n.Fat,
		Carbs:       n.Carbs,
	})
}

func (m *memStore) filter(keep func(models.MealRecord) bool) ([]models.MealRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := []models.MealRecord{}
	for _, r := range m.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) QueryByUserAndDay(ctx context.Context, userID, day string) ([]models.MealRecord, error) {
	return m.filter(func(r models.MealRecord) bool {
		return r.UserID == userID && strings.HasPrefix(models.FormatTimestamp(r.LoggedAt), day)
	})
}

func (m *memStore) QueryByUserSince(ctx context.Context, userID string, since time.Time) ([]models.MealRecord, error) {
	return m.filter(func(r models.MealRecord) bool {
		return r.UserID == userID && !r.LoggedAt.Before(since)
	})
}

func (m *memStore) QueryAllByUser(ctx context.Context, userID string) ([]models.MealRecord, error) {
	return m.filter(func(r models.MealRecord) bool { return r.UserID == userID })
}

var now = time.Date(2024, time.March, 10, 18, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func ts(day, hms string) time.Time {
	t, err := time.ParseInLocation(models.TimestampLayout, day+" "+hms, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func TestDayItemizationTotals(t *testing.T) {
	store := &memStore{}
	store.add("alice", "banana", ts("2024-03-10", "08:00:00"), 120, models.Nutrients{Calories: 106.8, Protein: 1.32, Fat: 0.4, Carbs: 27.4})
	store.add("alice", "rice", ts("2024-03-10", "13:00:00"), 200, models.Nutrients{Calories: 260, Protein: 5.4, Fat: 0.6, Carbs: 56})
	store.add("bob", "steak", ts("2024-03-10", "19:00:00"), 250, models.Nutrients{Calories: 600, Protein: 60, Fat: 40})

	engine := NewEngine(store, clock)
	item, err := engine.DayItemization(context.Background(), "alice", now)
	require.NoError(t, err)
	require.Equal(t, "2024-03-10", item.Label)
	require.Len(t, item.Records, 2)
	require.Equal(t, "banana", item.Records[0].Description)
	require.InDelta(t, 366.8, item.Totals.Calories, 1e-9)
	require.InDelta(t, 6.72, item.Totals.Protein, 1e-9)
	require.InDelta(t, 1.0, item.Totals.Fat, 1e-9)
	require.InDelta(t, 83.4, item.Totals.Carbs, 1e-9)

	again, err := engine.DayItemization(context.Background(), "alice", now)
	require.NoError(t, err)
	require.Equal(t, item, again)
}

func TestDayItemizationEmptyIsNoData(t *testing.T) {
	engine := NewEngine(&memStore{}, clock)
	_, err := engine.DayItemization(context.Background(), "alice", now)
	require.ErrorIs(t, err, models.ErrNoData)
}

func TestDayItemizationLastSecondBoundary(t *testing.T) {
	store := &memStore{}
	store.add("alice", "midnight snack", ts("2024-03-09", "23:59:59"), 40, models.Nutrients{Calories: 200})

	engine := NewEngine(store, clock)
	item, err := engine.DayItemization(context.Background(), "alice", ts("2024-03-09", "12:00:00"))
	require.NoError(t, err)
	require.Len(t, item.Records, 1)

	_, err = engine.DayItemization(context.Background(), "alice", ts("2024-03-10", "12:00:00"))
	require.ErrorIs(t, err, models.ErrNoData)
}

func TestItemizeWindowAndAll(t *testing.T) {
	store := &memStore{}
	store.add("alice", "old", ts("2024-01-01", "12:00:00"), 100, models.Nutrients{Calories: 100})
	store.add("alice", "recent", ts("2024-03-08", "12:00:00"), 100, models.Nutrients{Calories: 50})

	engine := NewEngine(store, clock)
	week, err := engine.Itemize(context.Background(), "alice", models.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, week.Records, 1)
	require.Equal(t, "week", week.Label)

	all, err := engine.Itemize(context.Background(), "alice", models.PeriodAll)
	require.NoError(t, err)
	require.Len(t, all.Records, 2)
	require.InDelta(t, 150.0, all.Totals.Calories, 1e-9)
}

func TestRollingAverageDividesByDistinctDays(t *testing.T) {
	store := &memStore{}
	for i := 0; i < 7; i++ {
		store.add("alice", "snack", ts("2024-03-09", "10:00:00").Add(time.Duration(i)*time.Minute), 10, models.Nutrients{Calories: 100, Protein: 1})
	}

	engine := NewEngine(store, clock)
	avg, err := engine.RollingAverage(context.Background(), "alice", 7)
	require.NoError(t, err)
	require.Equal(t, 1, avg.Days)
	require.InDelta(t, 700.0, avg.Calories, 1e-9)
	require.InDelta(t, 7.0, avg.Protein, 1e-9)
	require.NotNil(t, avg.Since)
	require.Equal(t, now.AddDate(0, 0, -7), *avg.Since)
}

func TestRollingAverageSkipsEmptyDays(t *testing.T) {
	store := &memStore{}
	store.add("alice", "a", ts("2024-03-04", "12:00:00"), 100, models.Nutrients{Calories: 1000, Fat: 10})
	store.add("alice", "b", ts("2024-03-04", "19:00:00"), 100, models.Nutrients{Calories: 1000, Fat: 10})
	store.add("alice", "c", ts("2024-03-09", "12:00:00"), 100, models.Nutrients{Calories: 1000, Fat: 40})
	store.add("alice", "too old", ts("2024-02-01", "12:00:00"), 100, models.Nutrients{Calories: 9999})

	engine := NewEngine(store, clock)
	avg, err := engine.RollingAverage(context.Background(), "alice", 7)
	require.NoError(t, err)
	require.Equal(t, 2, avg.Days)
	require.InDelta(t, 1500.0, avg.Calories, 1e-9)
	require.InDelta(t, 30.0, avg.Fat, 1e-9)
}

func TestRollingAverageUnboundedWindow(t *testing.T) {
	store := &memStore{}
	store.add("alice", "a", ts("2023-01-01", "12:00:00"), 100, models.Nutrients{Calories: 100})
	store.add("alice", "b", ts("2024-03-10", "12:00:00"), 100, models.Nutrients{Calories: 300})

	avg, err := NewEngine(store, clock).RollingAverage(context.Background(), "alice", 0)
	require.NoError(t, err)
	require.Equal(t, 2, avg.Days)
	require.Nil(t, avg.Since)
	require.InDelta(t, 200.0, avg.Calories, 1e-9)
}

func TestRollingAverageEmptyWindowIsNoData(t *testing.T) {
	store := &memStore{}
	store.add("alice", "ancient", ts("2023-01-01", "12:00:00"), 100, models.Nutrients{Calories: 100})

	_, err := NewEngine(store, clock).RollingAverage(context.Background(), "alice", 7)
	require.ErrorIs(t, err, models.ErrNoData)
}

func TestStoreErrorsPropagate(t *testing.T) {
	storeErr := errors.New("disk on fire")
	engine := NewEngine(&memStore{err: storeErr}, clock)

	_, err := engine.RollingAverage(context.Background(), "alice", 7)
	require.ErrorIs(t, err, storeErr)
	_, err = engine.DayItemization(context.Background(), "alice", now)
	require.ErrorIs(t, err, storeErr)
	_, err = engine.TimeSeries(context.Background(), "alice", models.PeriodMonth)
	require.ErrorIs(t, err, storeErr)
}

func TestTimeSeriesDayUsesOnePointPerRecord(t *testing.T) {
	store := &memStore{}
	store.add("alice", "banana", ts("2024-03-10", "08:15:00"), 120, models.Nutrients{Calories: 106.8})
	store.add("alice", "rice", ts("2024-03-10", "13:00:30"), 200, models.Nutrients{Calories: 260})
	store.add("alice", "yesterday", ts("2024-03-09", "13:00:30"), 200, models.Nutrients{Calories: 999})

	points, err := NewEngine(store, clock).TimeSeries(context.Background(), "alice", models.PeriodDay)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, "08:15:00", points[0].Label)
	require.Equal(t, "13:00:30", points[1].Label)
	require.InDelta(t, 260.0, points[1].Calories, 1e-9)
}

func TestTimeSeriesWindowSumsPerDayWithoutAveraging(t *testing.T) {
	store := &memStore{}
	store.add("alice", "a", ts("2024-03-05", "08:00:00"), 100, models.Nutrients{Calories: 100, Carbs: 10})
	store.add("alice", "b", ts("2024-03-05", "20:00:00"), 100, models.Nutrients{Calories: 200, Carbs: 5})
	store.add("alice", "c", ts("2024-03-07", "12:00:00"), 100, models.Nutrients{Calories: 50})

	points, err := NewEngine(store, clock).TimeSeries(context.Background(), "alice", models.PeriodWeek)
	require.NoError(t, err)
	require.Len(t, points, 2)
	require.Equal(t, "2024-03-05", points[0].Label)
	require.InDelta(t, 300.0, points[0].Calories, 1e-9)
	require.InDelta(t, 15.0, points[0].Carbs, 1e-9)
	require.Equal(t, "2024-03-07", points[1].Label)
	require.InDelta(t, 50.0, points[1].Calories, 1e-9)
}

func TestTimeSeriesEmptyIsNoData(t *testing.T) {
	_, err := NewEngine(&memStore{}, clock).TimeSeries(context.Background(), "alice", models.PeriodYear)
	require.ErrorIs(t, err, models.ErrNoData)
}

func TestPeriodAverage(t *testing.T) {
	store := &memStore{}
	store.add("alice", "breakfast", ts("2024-03-10", "08:00:00"), 100, models.Nutrients{Calories: 300})
	store.add("alice", "lunch", ts("2024-03-10", "12:00:00"), 100, models.Nutrients{Calories: 500})
	store.add("alice", "yesterday", ts("2024-03-09", "20:00:00"), 100, models.Nutrients{Calories: 1000})

	engine := NewEngine(store, clock)

	day, err := engine.PeriodAverage(context.Background(), "alice", models.PeriodDay)
	require.NoError(t, err)
	require.Equal(t, 1, day.Days)
	require.InDelta(t, 800.0, day.Calories, 1e-9)
	require.Equal(t, ts("2024-03-10", "00:00:00"), *day.Since)

	week, err := engine.PeriodAverage(context.Background(), "alice", models.PeriodWeek)
	require.NoError(t, err)
	require.Equal(t, 2, week.Days)
	require.InDelta(t, 900.0, week.Calories, 1e-9)
}
