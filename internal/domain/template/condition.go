package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dayfold/dispatch-api/internal/domain"
)

// Condition parsing errors. Callers treat a parse failure as "skip this
// rule", never as a fatal template error.
var (
	ErrEmptyCondition   = errors.New("empty condition")
	ErrUnknownClause    = errors.New("unknown clause kind")
	ErrMalformedClause  = errors.New("malformed clause")
	ErrUnknownDay       = errors.New("unknown day value")
	ErrUnknownMonth     = errors.New("unknown month value")
	ErrInvalidDayOfMonth = errors.New("invalid day-of-month value")
)

// Clause is one kind=value[,value...] unit of a condition expression.
// Values within a clause are ORed; Condition ANDs its clauses together.
type Clause interface {
	// Matches reports whether the clause holds for the target date.
	Matches(date domain.Date) bool
}

// DayClause matches when the target's weekday is in the resolved set. The
// set is the union of all listed values, so day=weekday,weekend matches
// every day.
type DayClause struct {
	Days map[time.Weekday]bool
}

// Matches implements Clause.
func (c DayClause) Matches(date domain.Date) bool {
	return c.Days[date.Weekday()]
}

// MonthClause matches when the target's month is in the set.
type MonthClause struct {
	Months map[time.Month]bool
}

// Matches implements Clause.
func (c MonthClause) Matches(date domain.Date) bool {
	return c.Months[date.Month()]
}

// DayOfMonthClause matches when the target's day-of-month is in the set.
type DayOfMonthClause struct {
	Days map[int]bool
}

// Matches implements Clause.
func (c DayOfMonthClause) Matches(date domain.Date) bool {
	return c.Days[date.Day()]
}

// Condition is the parsed form of one condition expression: an AND across
// clauses, each of which is an OR across its listed values.
type Condition struct {
	Clauses []Clause
}

// Matches reports whether every clause holds for the target date.
// An empty condition never arises from ParseCondition.
func (c Condition) Matches(date domain.Date) bool {
	for _, clause := range c.Clauses {
		if !clause.Matches(date) {
			return false
		}
	}
	return true
}

var weekdayAbbrevs = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

var monthAbbrevs = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ParseCondition parses a condition expression such as "day=sat,wed" or
// "month=jun&dom=14" into a Condition AST. Clause kinds:
//
//	day=<list>   3-letter weekday abbreviations or the keywords
//	             weekday (mon-fri), weekend (sat,sun), everyday (all)
//	month=<list> 3-letter month abbreviations
//	dom=<list>   day-of-month integers
//
// Returns an error for anything it does not understand; the caller is
// expected to drop the rule carrying the bad condition.
func ParseCondition(expr string) (Condition, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Condition{}, ErrEmptyCondition
	}

	var cond Condition
	for _, part := range strings.Split(expr, "&") {
		part = strings.TrimSpace(part)
		kind, list, ok := strings.Cut(part, "=")
		if !ok {
			return Condition{}, fmt.Errorf("%w: %q", ErrMalformedClause, part)
		}

		values := strings.Split(list, ",")
		var clause Clause
		var err error
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "day":
			clause, err = parseDayClause(values)
		case "month":
			clause, err = parseMonthClause(values)
		case "dom":
			clause, err = parseDayOfMonthClause(values)
		default:
			return Condition{}, fmt.Errorf("%w: %q", ErrUnknownClause, kind)
		}
		if err != nil {
			return Condition{}, err
		}

		cond.Clauses = append(cond.Clauses, clause)
	}

	return cond, nil
}

func parseDayClause(values []string) (Clause, error) {
	days := make(map[time.Weekday]bool, 7)
	for _, v := range values {
		switch v := strings.ToLower(strings.TrimSpace(v)); v {
		case "weekday":
			for wd := time.Monday; wd <= time.Friday; wd++ {
				days[wd] = true
			}
		case "weekend":
			days[time.Saturday] = true
			days[time.Sunday] = true
		case "everyday":
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				days[wd] = true
			}
		default:
			wd, ok := weekdayAbbrevs[v]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrUnknownDay, v)
			}
			days[wd] = true
		}
	}
	return DayClause{Days: days}, nil
}

func parseMonthClause(values []string) (Clause, error) {
	months := make(map[time.Month]bool, len(values))
	for _, v := range values {
		m, ok := monthAbbrevs[strings.ToLower(strings.TrimSpace(v))]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMonth, v)
		}
		months[m] = true
	}
	return MonthClause{Months: months}, nil
}

func parseDayOfMonthClause(values []string) (Clause, error) {
	days := make(map[int]bool, len(values))
	for _, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 || n > 31 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDayOfMonth, v)
		}
		days[n] = true
	}
	return DayOfMonthClause{Days: days}, nil
}
