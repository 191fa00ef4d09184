package state

import "fmt"

// #region weekday
// Weekday is a day-of-week index, Mon=0 .. Sun=6.
type Weekday int

const (
	Mon Weekday = iota
	Tue
	Wed
	Thu
	Fri
	Sat
	Sun

	DaysPerWeek = 7
)

// DayNames are the persisted day symbols in week order.
var DayNames = [DaysPerWeek]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (d Weekday) String() string {
	if d < 0 || d >= DaysPerWeek {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return DayNames[d]
}

// ParseWeekday maps a day symbol to its index.
func ParseWeekday(s string) (Weekday, error) {
	for i, name := range DayNames {
		if name == s {
			return Weekday(i), nil
		}
	}
	return 0, fmt.Errorf("unknown day %q", s)
}
// #endregion weekday

// #region daykey
// DayKey identifies a simulated day.
type DayKey struct {
	Week int
	Day  Weekday
}

// Less orders by week, then by day within the week.
func (k DayKey) Less(o DayKey) bool {
	if k.Week != o.Week {
		return k.Week < o.Week
	}
	return k.Day < o.Day
}

// Next returns the following day; Sunday rolls over to Monday of the next week.
func (k DayKey) Next() DayKey {
	if k.Day == Sun {
		return DayKey{Week: k.Week + 1, Day: Mon}
	}
	return DayKey{Week: k.Week, Day: k.Day + 1}
}

func (k DayKey) String() string {
	return fmt.Sprintf("week %d %s", k.Week, k.Day)
}
// #endregion daykey
