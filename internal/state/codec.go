package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// maxCount bounds decoded integers to values a float64 represents exactly.
const maxCount = 1 << 53

// #region decode-document
// DecodeRecords parses a JSON array of records. An empty document is an empty
// history. Empty or null entries at the tail of the array are dropped; any
// other malformed entry fails the whole document with a *CorruptStoreError.
func DecodeRecords(source string, data []byte) ([]Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if bytes.Equal(trimmed, []byte("null")) {
		return nil, &CorruptStoreError{Source: source, Index: -1, Err: errors.New("not a record array: null")}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &CorruptStoreError{Source: source, Index: -1, Err: fmt.Errorf("not a record array: %w", err)}
	}

	for len(entries) > 0 && isEmptyEntry(entries[len(entries)-1]) {
		entries = entries[:len(entries)-1]
	}

	records := make([]Record, 0, len(entries))
	for i, raw := range entries {
		rec, err := decodeRecord(raw)
		if err != nil {
			return nil, &CorruptStoreError{Source: source, Index: i, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// EncodeRecords renders records as an indented JSON array. String contents
// of loaded records are written back unescaped.
func EncodeRecords(records []Record) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	return encodeJSON(records, "  ")
}

// MarshalRecord renders one record compactly, without HTML escaping.
func MarshalRecord(rec Record) ([]byte, error) {
	out, err := encodeJSON(rec, "")
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(out, []byte("\n")), nil
}

func encodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
// #endregion decode-document

// #region record-json
// UnmarshalJSON decodes a single record, filling missing activities with 0.
func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := decodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

// MarshalJSON writes the flat record layout. Records that came from a store
// are re-emitted exactly as they were read.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return r.raw, nil
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `{"week":%d,"day":%q`, r.Key.Week, r.Key.Day.String())
	for i, name := range ActivityNames {
		fmt.Fprintf(&buf, `,%q:%d`, name, r.Activities[i])
	}
	if r.Traits != nil {
		traits, err := r.Traits.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"traits":`)
		buf.Write(traits)
	}
	if r.Persona != nil {
		persona, err := json.Marshal(r.Persona)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"personality":`)
		buf.Write(persona)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func decodeRecord(raw json.RawMessage) (Record, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return Record{}, errors.New("entry is not an object")
	}
	// An empty column name is an artifact of spreadsheet exports, not data.
	delete(fields, "")

	var rec Record

	weekRaw, ok := fields["week"]
	if !ok || isNull(weekRaw) {
		return Record{}, errors.New("missing week")
	}
	week, err := decodeCount(weekRaw)
	if err != nil {
		return Record{}, fmt.Errorf("week: %w", err)
	}
	rec.Key.Week = week

	dayRaw, ok := fields["day"]
	if !ok {
		return Record{}, errors.New("missing day")
	}
	var dayName string
	if err := json.Unmarshal(dayRaw, &dayName); err != nil {
		return Record{}, fmt.Errorf("day: %w", err)
	}
	if rec.Key.Day, err = ParseWeekday(dayName); err != nil {
		return Record{}, err
	}

	for i, name := range ActivityNames {
		v, ok := fields[name]
		if !ok {
			continue
		}
		n, err := decodeCount(v)
		if err != nil {
			return Record{}, fmt.Errorf("%s: %w", name, err)
		}
		rec.Activities[i] = n
	}

	if v, ok := fields["traits"]; ok && !isNull(v) {
		traits, err := decodeTraits(v)
		if err != nil {
			return Record{}, fmt.Errorf("traits: %w", err)
		}
		rec.Traits = &traits
	}

	if v, ok := fields["personality"]; ok && !isNull(v) {
		var p Persona
		if err := json.Unmarshal(v, &p); err != nil {
			return Record{}, fmt.Errorf("personality: %w", err)
		}
		rec.Persona = &p
	}

	rec.raw = append(json.RawMessage(nil), raw...)
	return rec, nil
}

func decodeTraits(raw json.RawMessage) (TraitSnapshot, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return TraitSnapshot{}, errors.New("not an object")
	}
	t := NeutralTraits()
	for i, name := range TraitNames {
		v, ok := fields[name]
		if !ok || isNull(v) {
			continue
		}
		var f float64
		if err := json.Unmarshal(v, &f); err != nil || f != math.Trunc(f) {
			return TraitSnapshot{}, fmt.Errorf("%s: not an integer", name)
		}
		t[i] = ClampTrait(int(max(-maxCount, min(maxCount, f))))
	}
	return t, nil
}
// #endregion record-json

// #region helpers
// decodeCount reads a non-negative integer. null counts as 0.
func decodeCount(raw json.RawMessage) (int, error) {
	if isNull(raw) {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, errors.New("not a number")
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	if f < 0 || f > maxCount {
		return 0, fmt.Errorf("%v out of range", f)
	}
	return int(f), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isEmptyEntry(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return false
	}
	delete(fields, "")
	return len(fields) == 0
}

func marshalOrdered(names []string, values []int) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:%d", name, values[i])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
// #endregion helpers
