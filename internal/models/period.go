// internal/models/period.go
package models

import (
	"fmt"
	"strings"
	"time"
)

// Period selects the time window of a query.
type Period int

const (
	PeriodDay Period = iota
	PeriodWeek
	PeriodMonth
	PeriodYear
	PeriodAll
)

var periodTokens = map[Period]string{
	PeriodDay:   "day",
	PeriodWeek:  "week",
	PeriodMonth: "month",
	PeriodYear:  "year",
	PeriodAll:   "all",
}

// Periods lists every period in display order.
var Periods = []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear, PeriodAll}

func (p Period) String() string {
	if token, ok := periodTokens[p]; ok {
		return token
	}
	return fmt.Sprintf("period(%d)", int(p))
}

// WindowDays is the trailing window length; 0 means no lower bound.
// A day query is a calendar day, not a trailing 24h window, and reports 1.
func (p Period) WindowDays() int {
	switch p {
	case PeriodDay:
		return 1
	case PeriodWeek:
		return 7
	case PeriodMonth:
		return 30
	case PeriodYear:
		return 365
	default:
		return 0
	}
}

// Since returns the window start relative to now and whether the window is bounded.
func (p Period) Since(now time.Time) (time.Time, bool) {
	days := p.WindowDays()
	if p == PeriodAll || days <= 0 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, -days), true
}

// PeriodTokens returns the accepted period tokens in display order.
func PeriodTokens() []string {
	out := make([]string, 0, len(Periods))
	for _, p := range Periods {
		out = append(out, p.String())
	}
	return out
}

// ParsePeriod maps a user token to a Period.
func ParsePeriod(token string) (Period, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, p := range Periods {
		if periodTokens[p] == token {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: %q (accepted: %s)", ErrInvalidPeriod, token, strings.Join(PeriodTokens(), ", "))
}

// QueryKind selects the shape of a query result.
type QueryKind int

const (
	KindItemization QueryKind = iota
	KindAverage
	KindExport
	KindChart
)

var kindTokens = map[QueryKind]string{
	KindItemization: "itemization",
	KindAverage:     "average",
	KindExport:      "export",
	KindChart:       "chart",
}

// QueryKinds lists every kind in display order.
var QueryKinds = []QueryKind{KindItemization, KindAverage, KindExport, KindChart}

func (k QueryKind) String() string {
	if token, ok := kindTokens[k]; ok {
		return token
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func ParseQueryKind(token string) (QueryKind, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	for _, k := range QueryKinds {
		if kindTokens[k] == token {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown query kind %q", ErrInvalidInput, token)
}
