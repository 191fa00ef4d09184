package forecast

import (
	"errors"
	"fmt"
	"math"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/petsim/internal/state"
)

// #region wire
// The forecast RPC exchanges google.protobuf.Struct messages:
//
//	request:  {"activities": [names...], "history": [{"week", "day", "counts": [...]}], "target": {"week", "day"}}
//	response: {"prediction": [...]}
const (
	ServiceName    = "petsim.forecast.v1.ForecastService"
	ForecastMethod = "/" + ServiceName + "/Forecast"
)

func encodeRequest(samples []Sample, target state.DayKey) (*structpb.Struct, error) {
	names := make([]any, len(state.ActivityNames))
	for i, n := range state.ActivityNames {
		names[i] = n
	}
	history := make([]any, len(samples))
	for i, s := range samples {
		counts := make([]any, len(s.Activities))
		for j, v := range s.Activities {
			counts[j] = v
		}
		history[i] = map[string]any{
			"week":   s.Key.Week,
			"day":    s.Key.Day.String(),
			"counts": counts,
		}
	}
	return structpb.NewStruct(map[string]any{
		"activities": names,
		"history":    history,
		"target": map[string]any{
			"week": target.Week,
			"day":  target.Day.String(),
		},
	})
}

func decodeRequest(req *structpb.Struct) ([]Sample, state.DayKey, error) {
	fields := req.GetFields()

	names := fields["activities"].GetListValue().GetValues()
	if len(names) != state.NumActivities {
		return nil, state.DayKey{}, fmt.Errorf("expected %d activities, got %d", state.NumActivities, len(names))
	}
	for i, n := range names {
		if n.GetStringValue() != state.ActivityNames[i] {
			return nil, state.DayKey{}, fmt.Errorf("activity %d is %q, want %q", i, n.GetStringValue(), state.ActivityNames[i])
		}
	}

	target, err := decodeKey(fields["target"].GetStructValue())
	if err != nil {
		return nil, state.DayKey{}, fmt.Errorf("target: %w", err)
	}

	entries := fields["history"].GetListValue().GetValues()
	samples := make([]Sample, len(entries))
	for i, e := range entries {
		s := e.GetStructValue()
		key, err := decodeKey(s)
		if err != nil {
			return nil, state.DayKey{}, fmt.Errorf("history %d: %w", i, err)
		}
		counts := s.GetFields()["counts"].GetListValue().GetValues()
		if len(counts) != state.NumActivities {
			return nil, state.DayKey{}, fmt.Errorf("history %d: expected %d counts, got %d", i, state.NumActivities, len(counts))
		}
		samples[i].Key = key
		for j, c := range counts {
			v, err := wholeNumber(c)
			if err != nil {
				return nil, state.DayKey{}, fmt.Errorf("history %d: %s: %w", i, state.ActivityNames[j], err)
			}
			samples[i].Activities[j] = v
		}
	}
	return samples, target, nil
}

func decodeKey(s *structpb.Struct) (state.DayKey, error) {
	if s == nil {
		return state.DayKey{}, errors.New("missing day key")
	}
	week, err := wholeNumber(s.GetFields()["week"])
	if err != nil {
		return state.DayKey{}, fmt.Errorf("week: %w", err)
	}
	day, err := state.ParseWeekday(s.GetFields()["day"].GetStringValue())
	if err != nil {
		return state.DayKey{}, err
	}
	return state.DayKey{Week: week, Day: day}, nil
}

func encodeResponse(pred []float64) (*structpb.Struct, error) {
	values := make([]any, len(pred))
	for i, p := range pred {
		values[i] = p
	}
	return structpb.NewStruct(map[string]any{"prediction": values})
}

func decodeResponse(resp *structpb.Struct) ([]float64, error) {
	values := resp.GetFields()["prediction"].GetListValue().GetValues()
	if len(values) != state.NumActivities {
		return nil, fmt.Errorf("expected %d predicted values, got %d", state.NumActivities, len(values))
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
			return nil, fmt.Errorf("prediction %d is not a number", i)
		}
		out[i] = v.GetNumberValue()
	}
	return out, nil
}

func wholeNumber(v *structpb.Value) (int, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, errors.New("not a number")
	}
	f := v.GetNumberValue()
	if f != math.Trunc(f) || f < 0 || f > maxPrediction {
		return 0, fmt.Errorf("%v is not a non-negative integer", f)
	}
	return int(f), nil
}
// #endregion wire
