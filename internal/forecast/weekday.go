package forecast

import (
	"context"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// WeekdayMean predicts the mean of past samples that fall on the same
// weekday, or the mean of all samples when that weekday was never seen.
type WeekdayMean struct{}

// Fit tallies per-weekday sums.
func (WeekdayMean) Fit(ctx context.Context, samples []Sample) (Model, error) {
	if len(samples) == 0 {
		return nil, ErrInsufficientHistory
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := &weekdayModel{}
	for _, s := range samples {
		m.counts[s.Key.Day]++
		m.total++
		for j, v := range s.Activities {
			m.sums[s.Key.Day][j] += float64(v)
			m.all[j] += float64(v)
		}
	}
	return m, nil
}

type weekdayModel struct {
	sums   [state.DaysPerWeek][state.NumActivities]float64
	counts [state.DaysPerWeek]int
	all    [state.NumActivities]float64
	total  int
}

func (m *weekdayModel) Predict(ctx context.Context, key state.DayKey) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sums, n := m.all, m.total
	if key.Day >= 0 && key.Day < state.DaysPerWeek && m.counts[key.Day] > 0 {
		sums, n = m.sums[key.Day], m.counts[key.Day]
	}
	out := make([]float64, state.NumActivities)
	for j := range out {
		out[j] = sums[j] / float64(n)
	}
	return out, nil
}
