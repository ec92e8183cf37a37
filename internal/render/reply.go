// internal/render/reply.go

// Package render turns tracker results and errors into what a chat user
// sees: reply text, CSV attachments and PNG charts.
package render

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"nutrition-log/internal/models"
	"nutrition-log/internal/report"
	"nutrition-log/internal/tracker"
)

var foodEmojis = []string{"🍎", "🍌", "🍇", "🍓", "🍕", "🍔", "🍟", "🌭", "🍿", "🥗", "🍣", "🍜", "🥐", "🧀", "🍩"}

// pickEmoji is swapped out by tests.
var pickEmoji = func() string {
	return foodEmojis[rand.Intn(len(foodEmojis))]
}

// Usage lists the chat commands.
const Usage = `Commands:
/add_meal <food> <grams>  log a meal, e.g. /add_meal banana 120
/today                    itemize today's meals
/view_meals               itemize every meal you logged
/average <period>         average daily intake
/export <period>          export meals as CSV
/chart <period>           chart daily intake
/help                     show this message

Periods: day, week, month, year, all`

// MealLogged confirms a logged meal.
func MealLogged(record *models.MealRecord) string {
	return fmt.Sprintf("%s Logged %d g of %s at %s: %s",
		pickEmoji(), record.AmountGrams, record.Description,
		models.FormatTimestamp(record.LoggedAt), nutrients(record.Nutrients()))
}

// Reply formats a query result. Export and chart replies only summarize;
// their payloads travel as attachments.
func Reply(result *tracker.Result) string {
	switch result.Kind {
	case models.KindItemization:
		return Itemization(result.Itemization)
	case models.KindAverage:
		return Average(result.Period, result.Average)
	case models.KindExport:
		return fmt.Sprintf("Exported %d meals (%s).", len(result.Table.Rows), result.Period)
	case models.KindChart:
		return fmt.Sprintf("Chart of %s intake over %d points.", result.Period, len(result.Chart.Labels))
	default:
		return "Unsupported result."
	}
}

func Itemization(item *report.Itemization) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meals (%s):\n", item.Label)
	for _, r := range item.Records {
		fmt.Fprintf(&b, "%s  %s, %d g: %s\n",
			models.FormatTimestamp(r.LoggedAt), r.Description, r.AmountGrams, nutrients(r.Nutrients()))
	}
	fmt.Fprintf(&b, "Total: %s", nutrients(item.Totals))
	return b.String()
}

func Average(period models.Period, avg *report.Average) string {
	days := "days"
	if avg.Days == 1 {
		days = "day"
	}
	return fmt.Sprintf("Average daily intake (%s, %d %s with meals): %s",
		period, avg.Days, days, nutrients(avg.Nutrients))
}

// UserMessage maps err to the message shown to the user. Each error kind
// reads differently.
func UserMessage(err error) string {
	switch models.KindOf(err) {
	case models.KindNone:
		return ""
	case models.KindInvalidPeriod:
		return fmt.Sprintf("Unknown period. Use one of: %s.", strings.Join(models.PeriodTokens(), ", "))
	case models.KindInvalidInput:
		return fmt.Sprintf("I couldn't understand that (%s).\n\n%s", detail(err, models.ErrInvalidInput), Usage)
	case models.KindNotFound:
		return "I couldn't find that food. Try a simpler description, e.g. \"banana\"."
	case models.KindProviderError:
		return "The nutrition service is unavailable right now. Please try again later."
	case models.KindNoData:
		return "No meals logged for that period yet."
	case models.KindStorageError:
		return "Your meal log could not be accessed. Please try again later."
	default:
		return "Something went wrong. Please try again later."
	}
}

// detail strips the sentinel text from a wrapped error message.
func detail(err, sentinel error) string {
	msg := err.Error()
	if i := strings.Index(msg, sentinel.Error()+": "); i >= 0 {
		return msg[i+len(sentinel.Error())+2:]
	}
	if errors.Is(err, sentinel) && msg == sentinel.Error() {
		return "missing arguments"
	}
	return msg
}

func nutrients(n models.Nutrients) string {
	return fmt.Sprintf("%.1f kcal, protein %.1f g, fat %.1f g, carbs %.1f g", n.Calories, n.Protein, n.Fat, n.Carbs)
}
