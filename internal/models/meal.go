// internal/models/meal.go
package models

import (
	"math"
	"time"
)

// TimestampLayout is how LoggedAt is persisted. Day truncation is a prefix
// of it, so both backends can match a calendar day with LIKE 'YYYY-MM-DD%'.
const TimestampLayout = "2006-01-02 15:04:05"

// DayLayout is the calendar-day key used for grouping and day queries.
const DayLayout = "2006-01-02"

// MaxAmountGrams is the largest serving both backends can persist.
const MaxAmountGrams = math.MaxInt32

type MealRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	LoggedAt    time.Time `json:"logged_at"`
	Description string    `json:"description"`
	AmountGrams int       `json:"amount_grams"`
	Calories    float64   `json:"calories"`
	Protein     float64   `json:"protein"`
	Fat         float64   `json:"fat"`
	Carbs       float64   `json:"carbs"`
}

// Nutrients returns the record's scaled macro values.
func (r MealRecord) Nutrients() Nutrients {
	return Nutrients{
		Calories: r.Calories,
		Protein:  r.Protein,
		Fat:      r.Fat,
		Carbs:    r.Carbs,
	}
}

// Day returns the calendar day the record belongs to.
func (r MealRecord) Day() string {
	return DayKey(r.LoggedAt)
}

// NutrientProfile is a lookup result normalized to 100 grams.
type NutrientProfile struct {
	FoodName        string  `json:"food_name,omitempty"`
	CaloriesPer100g float64 `json:"calories_per_100g"`
	ProteinPer100g  float64 `json:"protein_per_100g"`
	FatPer100g      float64 `json:"fat_per_100g"`
	CarbsPer100g    float64 `json:"carbs_per_100g"`
}

type Nutrients struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Add returns the elementwise sum of n and o.
func (n Nutrients) Add(o Nutrients) Nutrients {
	return Nutrients{
		Calories: n.Calories + o.Calories,
		Protein:  n.Protein + o.Protein,
		Fat:      n.Fat + o.Fat,
		Carbs:    n.Carbs + o.Carbs,
	}
}

// Div divides every field by d.
func (n Nutrients) Div(d float64) Nutrients {
	return Nutrients{
		Calories: n.Calories / d,
		Protein:  n.Protein / d,
		Fat:      n.Fat / d,
		Carbs:    n.Carbs / d,
	}
}

func DayKey(t time.Time) string {
	return t.Format(DayLayout)
}

// FormatTimestamp renders t in the persisted layout, second precision.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a persisted timestamp in loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(TimestampLayout, value, loc)
}
