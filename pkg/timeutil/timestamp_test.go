package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func parse(t *testing.T, raw string) FlexTime {
	t.Helper()
	var ft FlexTime
	if err := json.Unmarshal([]byte(raw), &ft); err != nil {
		t.Fatalf("unmarshal %s: %v", raw, err)
	}
	return ft
}

func TestUnmarshalWrappedSeconds(t *testing.T) {
	ft := parse(t, `{"seconds":1700000000,"nanoseconds":500000000}`)
	want := time.Unix(1700000000, 500000000).UTC()
	if !ft.Time.Equal(want) {
		t.Fatalf("got %s want %s", ft.Time, want)
	}
}

func TestUnmarshalUnderscoreSeconds(t *testing.T) {
	ft := parse(t, `{"_seconds":1700000000,"_nanoseconds":0}`)
	if ft.Time.Unix() != 1700000000 {
		t.Fatalf("got %s", ft.Time)
	}
}

func TestUnmarshalISOString(t *testing.T) {
	ft := parse(t, `"2023-11-14T22:13:20Z"`)
	if ft.Time.Unix() != 1700000000 {
		t.Fatalf("got %s", ft.Time)
	}

	ft = parse(t, `"2023-11-14"`)
	if ft.Time.Year() != 2023 || ft.Time.Month() != time.November {
		t.Fatalf("got %s", ft.Time)
	}
}

func TestUnmarshalEpochNumber(t *testing.T) {
	ft := parse(t, `1700000000`)
	if ft.Time.Unix() != 1700000000 {
		t.Fatalf("got %s", ft.Time)
	}
}

func TestUnmarshalNullAndEmpty(t *testing.T) {
	if ft := parse(t, `null`); ft.IsSet() {
		t.Fatalf("null should be unset, got %s", ft.Time)
	}
	if ft := parse(t, `""`); ft.IsSet() {
		t.Fatalf("empty string should be unset, got %s", ft.Time)
	}
	if ft := parse(t, `{}`); ft.IsSet() {
		t.Fatalf("empty object should be unset, got %s", ft.Time)
	}
}

func TestUnmarshalGarbageString(t *testing.T) {
	var ft FlexTime
	if err := json.Unmarshal([]byte(`"next tuesday"`), &ft); err == nil {
		t.Fatal("expected an error for an unparseable timestamp string")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	raw, err := json.Marshal(FlexTime{Time: now})
	if err != nil {
		t.Fatal(err)
	}

	var back FlexTime
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Time.Equal(now) {
		t.Fatalf("got %s want %s", back.Time, now)
	}
}

func TestMarshalZeroIsNull(t *testing.T) {
	raw, err := json.Marshal(FlexTime{})
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != "null" {
		t.Fatalf("got %s", raw)
	}
}
