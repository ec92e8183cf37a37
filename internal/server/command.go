// internal/server/command.go
package server

import (
	"fmt"
	"strconv"
	"strings"

	"nutrition-log/internal/models"
)

// Chat command names, without the leading slash.
const (
	cmdAddMeal   = "add_meal"
	cmdToday     = "today"
	cmdViewMeals = "view_meals"
	cmdAverage   = "average"
	cmdExport    = "export"
	cmdChart     = "chart"
	cmdHelp      = "help"
	cmdStart     = "start"
)

// defaultPeriods apply when a query command is sent without a period.
var defaultPeriods = map[string]models.Period{
	cmdAverage: models.PeriodWeek,
	cmdExport:  models.PeriodAll,
	cmdChart:   models.PeriodWeek,
}

// Command is a parsed chat message.
type Command struct {
	Name   string
	Food   string
	Grams  int
	Kind   models.QueryKind
	Period models.Period
}

// ParseCommand parses "/name args". A bot suffix ("/today@mybot") is ignored.
func ParseCommand(text string) (Command, error) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Command{}, fmt.Errorf("%w: commands start with /", models.ErrInvalidInput)
	}

	name, rest, _ := strings.Cut(text[1:], " ")
	name, _, _ = strings.Cut(strings.ToLower(name), "@")
	rest = strings.TrimSpace(rest)

	cmd := Command{Name: name}
	switch name {
	case cmdAddMeal:
		food, grams, err := parseMeal(rest)
		if err != nil {
			return Command{}, err
		}
		cmd.Food, cmd.Grams = food, grams
	case cmdToday:
		cmd.Kind, cmd.Period = models.KindItemization, models.PeriodDay
	case cmdViewMeals:
		cmd.Kind, cmd.Period = models.KindItemization, models.PeriodAll
	case cmdAverage, cmdExport, cmdChart:
		kind, err := models.ParseQueryKind(name)
		if err != nil {
			return Command{}, err
		}
		cmd.Kind = kind
		cmd.Period = defaultPeriods[name]
		if rest != "" {
			if cmd.Period, err = models.ParsePeriod(rest); err != nil {
				return Command{}, err
			}
		}
	case cmdHelp, cmdStart:
		cmd.Name = cmdHelp
	default:
		return Command{}, fmt.Errorf("%w: unknown command /%s", models.ErrInvalidInput, name)
	}
	return cmd, nil
}

// parseMeal splits "<food words> <grams>"; the food may span several words.
func parseMeal(args string) (string, int, error) {
	i := strings.LastIndexByte(args, ' ')
	if i < 0 {
		return "", 0, fmt.Errorf("%w: usage is /add_meal <food> <grams>", models.ErrInvalidInput)
	}

	food := strings.TrimSpace(args[:i])
	grams, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(args[i+1:]), "g"))
	if err != nil || food == "" {
		return "", 0, fmt.Errorf("%w: usage is /add_meal <food> <grams>", models.ErrInvalidInput)
	}
	if grams <= 0 {
		return "", 0, fmt.Errorf("%w: grams must be a positive whole number", models.ErrInvalidInput)
	}
	return food, grams, nil
}
