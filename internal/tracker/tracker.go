// internal/tracker/tracker.go

// Package tracker implements the two inbound operations of the service:
// logging a meal and answering an aggregate query.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"nutrition-log/internal/events"
	"nutrition-log/internal/models"
	"nutrition-log/internal/nutrition"
	"nutrition-log/internal/observability"
	"nutrition-log/internal/report"
)

// Store is the persistence surface the tracker writes to and reads from.
type Store interface {
	Append(ctx context.Context, record *models.MealRecord) error
	report.Store
}

// Result carries exactly one populated payload, selected by Kind.
type Result struct {
	Kind        models.QueryKind    `json:"-"`
	Period      models.Period       `json:"-"`
	Itemization *report.Itemization `json:"itemization,omitempty"`
	Average     *report.Average     `json:"average,omitempty"`
	Table       *report.Table       `json:"table,omitempty"`
	Chart       *report.ChartSeries `json:"chart,omitempty"`
}

type Tracker struct {
	resolver  nutrition.Resolver
	store     Store
	engine    *report.Engine
	builder   *report.Builder
	publisher events.Publisher
	logger    logrus.FieldLogger
	now       func() time.Time
}

// New wires a Tracker. A nil publisher disables events, a nil logger falls
// back to the logrus standard logger and a nil clock means time.Now.
func New(resolver nutrition.Resolver, store Store, publisher events.Publisher, logger logrus.FieldLogger, now func() time.Time) *Tracker {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if now == nil {
		now = time.Now
	}
	engine := report.NewEngine(store, now)
	return &Tracker{
		resolver:  resolver,
		store:     store,
		engine:    engine,
		builder:   report.NewBuilder(engine),
		publisher: publisher,
		logger:    logger,
		now:       now,
	}
}

// LogMeal resolves description, scales it to amountGrams and appends the
// record. No record is written when the lookup fails.
func (t *Tracker) LogMeal(ctx context.Context, userID, description string, amountGrams int) (*models.MealRecord, error) {
	userID = strings.TrimSpace(userID)
	description = strings.TrimSpace(description)
	switch {
	case userID == "":
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	case description == "":
		return nil, fmt.Errorf("%w: meal description is required", models.ErrInvalidInput)
	case amountGrams <= 0:
		return nil, fmt.Errorf("%w: amount must be a positive number of grams, got %d", models.ErrInvalidInput, amountGrams)
	case int64(amountGrams) > models.MaxAmountGrams:
		return nil, fmt.Errorf("%w: amount of %d grams is too large", models.ErrInvalidInput, amountGrams)
	}

	profile, err := t.resolver.Resolve(ctx, description)
	observability.RecordLookup(outcome(err))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q: %w", description, err)
	}

	nutrients := nutrition.Scale(profile, amountGrams)
	record := &models.MealRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		LoggedAt:    t.now().Truncate(time.Second),
		Description: description,
		AmountGrams: amountGrams,
		Calories:    nutrients.Calories,
		Protein:     nutrients.Protein,
		Fat:         nutrients.Fat,
		Carbs:       nutrients.Carbs,
	}

	if err := t.store.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save meal: %w", err)
	}
	observability.RecordMealLogged(record.LoggedAt)

	log := t.logger.WithFields(logrus.Fields{
		"user_id":   userID,
		"record_id": record.ID,
	})
	if err := t.publisher.PublishMealLogged(ctx, *record); err != nil {
		// The record is already committed.
		log.WithError(err).Warn("failed to publish meal_logged event")
	}
	log.WithField("calories", record.Calories).Info("meal logged")

	return record, nil
}

// Query answers kind over period for userID.
func (t *Tracker) Query(ctx context.Context, userID string, kind models.QueryKind, period models.Period) (*Result, error) {
	result, err := t.query(ctx, strings.TrimSpace(userID), kind, period)
	observability.RecordQuery(kind.String(), outcome(err))
	if err != nil {
		t.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"kind":    kind.String(),
			"period":  period.String(),
			"error":   err,
		}).Debug("query failed")
		return nil, err
	}
	return result, nil
}

func (t *Tracker) query(ctx context.Context, userID string, kind models.QueryKind, period models.Period) (*Result, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", models.ErrInvalidInput)
	}
	if _, ok := periodSet[period]; !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidPeriod, period)
	}

	result := &Result{Kind: kind, Period: period}
	var err error
	switch kind {
	case models.KindItemization:
		result.Itemization, err = t.engine.Itemize(ctx, userID, period)
	case models.KindAverage:
		result.Average, err = t.engine.PeriodAverage(ctx, userID, period)
	case models.KindExport:
		result.Table, err = t.builder.ToTableFor(ctx, userID, period)
		if err == nil && len(result.Table.Rows) == 0 {
			err = fmt.Errorf("%w: nothing to export for %s", models.ErrNoData, period)
		}
	case models.KindChart:
		result.Chart, err = t.builder.ToChartSeries(ctx, userID, period)
	default:
		return nil, fmt.Errorf("%w: unknown query kind %s", models.ErrInvalidInput, kind)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

var periodSet = func() map[models.Period]struct{} {
	set := make(map[models.Period]struct{}, len(models.Periods))
	for _, p := range models.Periods {
		set[p] = struct{}{}
	}
	return set
}()

func outcome(err error) string {
	if err == nil {
		return observability.OutcomeOK
	}
	return string(models.KindOf(err))
}
