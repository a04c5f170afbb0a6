// Package recurrence expands repeat rules into concrete occurrence dates.
// Expansion is always bounded; a series is never materialized past the
// configured occurrence limit.
package recurrence

import (
	"fmt"
	"strings"
	"time"

	"github.com/newsdesk/planning-coordinator/internal/model"
	"github.com/teambition/rrule-go"
)

var weekdays = map[string]rrule.Weekday{
	"MO": rrule.MO,
	"TU": rrule.TU,
	"WE": rrule.WE,
	"TH": rrule.TH,
	"FR": rrule.FR,
	"SA": rrule.SA,
	"SU": rrule.SU,
}

func frequency(name string) (rrule.Frequency, error) {
	switch strings.ToUpper(name) {
	case "DAILY":
		return rrule.DAILY, nil
	case "WEEKLY":
		return rrule.WEEKLY, nil
	case "MONTHLY":
		return rrule.MONTHLY, nil
	case "YEARLY":
		return rrule.YEARLY, nil
	default:
		return 0, fmt.Errorf("unknown frequency: %q", name)
	}
}

func buildRule(rule model.RepeatRule, start time.Time) (*rrule.RRule, error) {
	freq, err := frequency(rule.Frequency)
	if err != nil {
		return nil, err
	}

	interval := rule.Interval
	if interval == 0 {
		interval = 1
	}

	opt := rrule.ROption{
		Freq:     freq,
		Interval: interval,
		Dtstart:  start.UTC(),
	}

	if rule.Count > 0 {
		opt.Count = rule.Count
	}
	if rule.Until != nil {
		opt.Until = rule.Until.UTC()
	}
	for _, day := range strings.Split(rule.ByDay, " ") {
		if day == "" {
			continue
		}
		wd, ok := weekdays[strings.ToUpper(day)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday: %q", day)
		}
		opt.Byweekday = append(opt.Byweekday, wd)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return r, nil
}

// Expand generates the occurrence dates of a rule starting at start, each
// occurrence spanning duration. At most max occurrences are produced; an
// unbounded rule is cut off at the limit rather than failing.
func Expand(rule model.RepeatRule, start time.Time, duration time.Duration, max int) ([]model.EventDates, error) {
	r, err := buildRule(rule, start)
	if err != nil {
		return nil, err
	}

	iter := r.Iterator()
	var dates []model.EventDates
	for len(dates) < max {
		next, ok := iter()
		if !ok {
			break
		}
		dates = append(dates, model.EventDates{
			Start: next,
			End:   next.Add(duration),
			TZ:    start.Location().String(),
		})
	}

	return dates, nil
}

// Validate rejects rules whose explicit count exceeds the occurrence
// limit. Open-ended rules pass; they are capped at expansion time.
func Validate(rule model.RepeatRule, max int) error {
	if _, err := frequency(rule.Frequency); err != nil {
		return err
	}
	if rule.Count > max {
		return fmt.Errorf("%w: count %d > %d", model.ErrTooManyOccurrences, rule.Count, max)
	}

	return nil
}
