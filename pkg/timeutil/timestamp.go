package timeutil

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime decodes the timestamp shapes the marketplace API emits: wrapped
// epoch objects ({seconds,nanoseconds} or {_seconds,_nanoseconds}), ISO-8601
// strings, and bare epoch-second numbers. Every timestamp-bearing record
// crossing the API boundary goes through this type so display code only ever
// sees time.Time.
type FlexTime struct {
	time.Time
}

type wrappedSeconds struct {
	Seconds      *int64 `json:"seconds"`
	Nanoseconds  *int64 `json:"nanoseconds"`
	USeconds     *int64 `json:"_seconds"`
	UNanoseconds *int64 `json:"_nanoseconds"`
}

var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		f.Time = time.Time{}
		return nil
	}

	switch data[0] {
	case '"':
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if raw == "" {
			f.Time = time.Time{}
			return nil
		}
		for _, layout := range stringLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				f.Time = parsed.UTC()
				return nil
			}
		}
		return fmt.Errorf("unrecognized timestamp string %q", raw)
	case '{':
		var wrapped wrappedSeconds
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		seconds := wrapped.Seconds
		nanos := wrapped.Nanoseconds
		if seconds == nil {
			seconds = wrapped.USeconds
			nanos = wrapped.UNanoseconds
		}
		if seconds == nil {
			f.Time = time.Time{}
			return nil
		}
		var ns int64
		if nanos != nil {
			ns = *nanos
		}
		f.Time = time.Unix(*seconds, ns).UTC()
		return nil
	default:
		var epoch float64
		if err := json.Unmarshal(data, &epoch); err != nil {
			return err
		}
		seconds := int64(epoch)
		ns := int64((epoch - float64(seconds)) * float64(time.Second))
		f.Time = time.Unix(seconds, ns).UTC()
		return nil
	}
}

func (f FlexTime) MarshalJSON() ([]byte, error) {
	if f.Time.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(f.Time.UTC().Format(time.RFC3339Nano))
}

// IsSet reports whether a timestamp was actually present.
func (f FlexTime) IsSet() bool {
	return !f.Time.IsZero()
}
