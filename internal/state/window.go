package state

// #region window
// Window keeps the records whose week falls within the last n weeks of the
// sequence, measured from the largest week present. Order is preserved and
// an empty sequence is returned unchanged.
func Window(records []Record, n int) []Record {
	if len(records) == 0 {
		return records
	}
	maxWeek := records[0].Key.Week
	for _, r := range records[1:] {
		maxWeek = max(maxWeek, r.Key.Week)
	}
	minWeek := max(0, maxWeek-n+1)

	out := make([]Record, 0, len(records))
	for _, r := range records {
		if r.Key.Week >= minWeek {
			out = append(out, r)
		}
	}
	return out
}
// #endregion window

// #region latest
// Latest returns the record with the greatest DayKey. Ties keep the later entry.
func Latest(records []Record) (Record, bool) {
	if len(records) == 0 {
		return Record{}, false
	}
	best := records[0]
	for _, r := range records[1:] {
		if !r.Key.Less(best.Key) {
			best = r
		}
	}
	return best, true
}
// #endregion latest
