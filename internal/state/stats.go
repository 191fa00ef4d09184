package state

// #region totals
// Totals sums each activity across records.
func Totals(records []Record) ActivityVector {
	var total ActivityVector
	for _, r := range records {
		for i, v := range r.Activities {
			total[i] += v
		}
	}
	return total
}
// #endregion totals

// #region days-in-week
// DaysInWeek returns the records belonging to week, in stored order.
func DaysInWeek(records []Record, week int) []Record {
	var days []Record
	for _, r := range records {
		if r.Key.Week == week {
			days = append(days, r)
		}
	}
	return days
}
// #endregion days-in-week
