package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestDecodeRecordsFillsMissingActivities(t *testing.T) {
	data := []byte(`[{"week": 0, "day": "Mon", "eat": 3, "play": 2}]`)
	records, err := DecodeRecords("test", data)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	want := ActivityVector{3, 2, 0, 0, 0}
	if records[0].Activities != want {
		t.Fatalf("activities = %v, want %v", records[0].Activities, want)
	}
	if records[0].Traits != nil || records[0].Persona != nil {
		t.Fatal("expected absent traits and persona")
	}
}

func TestDecodeRecordsAcceptsIntegralFloatsAndNull(t *testing.T) {
	data := []byte(`[{"week": 1.0, "day": "Sun", "eat": 2.0, "rest": null, "lifeStage": "baby"}]`)
	records, err := DecodeRecords("test", data)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if records[0].Key != (DayKey{Week: 1, Day: Sun}) {
		t.Fatalf("key = %v", records[0].Key)
	}
	if records[0].Activities[Eat] != 2 || records[0].Activities[Rest] != 0 {
		t.Fatalf("activities = %v", records[0].Activities)
	}
}

func TestDecodeRecordsDropsEmptyColumnAndTrailingSlot(t *testing.T) {
	data := []byte(`[{"week": 0, "day": "Mon", "work": 1, "": ""}, {"": null}, null]`)
	records, err := DecodeRecords("test", data)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected trailing empty slots dropped, got %d records", len(records))
	}
}

func TestDecodeRecordsPartialTraits(t *testing.T) {
	data := []byte(`[{"week": 0, "day": "Mon", "traits": {"discipline": 12, "energy": -3}}]`)
	records, err := DecodeRecords("test", data)
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	got := *records[0].Traits
	want := TraitSnapshot{10, 5, 0, 5, 5}
	if got != want {
		t.Fatalf("traits = %v, want %v", got, want)
	}
}

func TestDecodeRecordsCorrupt(t *testing.T) {
	cases := map[string]string{
		"not array":      `{"week": 0}`,
		"not json":       `[{"week": 0,`,
		"scalar entry":   `[1]`,
		"missing week":   `[{"day": "Mon"}]`,
		"missing day":    `[{"week": 0}]`,
		"bad day":        `[{"week": 0, "day": "Someday"}]`,
		"negative count": `[{"week": 0, "day": "Mon", "eat": -1}]`,
		"fractional":     `[{"week": 0, "day": "Mon", "eat": 1.5}]`,
		"string count":   `[{"week": 0, "day": "Mon", "eat": "two"}]`,
		"bad traits":     `[{"week": 0, "day": "Mon", "traits": [1, 2]}]`,
		"empty middle":   `[{}, {"week": 0, "day": "Mon"}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeRecords("test", []byte(doc))
			var corrupt *CorruptStoreError
			if !errors.As(err, &corrupt) {
				t.Fatalf("expected CorruptStoreError, got %v", err)
			}
		})
	}
}

func TestDecodeRecordsEmptyDocument(t *testing.T) {
	for _, doc := range []string{"", "  \n", "[]"} {
		records, err := DecodeRecords("test", []byte(doc))
		if err != nil {
			t.Fatalf("DecodeRecords(%q): %v", doc, err)
		}
		if len(records) != 0 {
			t.Fatalf("expected no records for %q", doc)
		}
	}
}

func TestDecodeRecordsNullDocumentIsCorrupt(t *testing.T) {
	_, err := DecodeRecords("test", []byte(" null\n"))
	var corrupt *CorruptStoreError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptStoreError, got %v", err)
	}
	if corrupt.Index != -1 {
		t.Fatalf("expected document-level error, got index %d", corrupt.Index)
	}
}

func TestEncodeRecordsDoesNotEscapeHTML(t *testing.T) {
	entry := `{"week":0,"day":"Mon","note":"a < b && c > d"}`
	records, err := DecodeRecords("test", []byte("["+entry+"]"))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}

	one, err := MarshalRecord(records[0])
	if err != nil {
		t.Fatalf("MarshalRecord: %v", err)
	}
	if string(one) != entry {
		t.Fatalf("MarshalRecord = %s, want %s", one, entry)
	}

	doc, err := EncodeRecords(records)
	if err != nil {
		t.Fatalf("EncodeRecords: %v", err)
	}
	if !bytes.Contains(doc, []byte(`"note": "a < b && c > d"`)) {
		t.Fatalf("document escaped string content:\n%s", doc)
	}
}

func TestRecordMarshalLayout(t *testing.T) {
	traits := TraitSnapshot{7, 3, 5, 8, 3}
	rec := Record{
		Key:        DayKey{Week: 2, Day: Thu},
		Activities: ActivityVector{3, 0, 1, 2, 1},
		Traits:     &traits,
		Persona: &Persona{
			Energy: High, WorkEthic: High, Sociability: Low, Discipline: High,
			Background: "Well-raised with good routines",
		},
	}
	got, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"week":2,"day":"Thu","eat":3,"play":0,"rest":1,"work":2,"exercise":1,` +
		`"traits":{"discipline":7,"sociability":3,"energy":5,"work_ethic":8,"playfulness":3},` +
		`"personality":{"energy":"high","work_ethic":"high","sociability":"low","discipline":"high","background":"Well-raised with good routines"}}`
	if string(got) != want {
		t.Fatalf("marshal mismatch:\n got %s\nwant %s", got, want)
	}

	var back Record
	if err := json.Unmarshal(got, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.Key != rec.Key || back.Activities != rec.Activities || *back.Traits != traits || *back.Persona != *rec.Persona {
		t.Fatalf("decoded record differs: %+v", back)
	}
}

func TestLoadedRecordReencodesVerbatim(t *testing.T) {
	entry := `{"day":"Mon","week":0,"eat":1,"lifeStage":"baby","study":4}`
	records, err := DecodeRecords("test", []byte("["+entry+"]"))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	got, err := json.Marshal(records[0])
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(got, []byte(entry)) {
		t.Fatalf("re-encoded %s, want %s", got, entry)
	}
}
