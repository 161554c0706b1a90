// Package timex holds time helpers shared by the config loaders and the
// lifecycle engine.
package timex

import (
	"encoding/json"
	"fmt"
	"time"
)

// Day is the length of one inactivity day.
const Day = 24 * time.Hour

// Duration wraps time.Duration so JSON may carry either a Go duration
// string ("90s", "15m") or an integer number of nanoseconds.
type Duration struct {
	Duration time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Duration.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

// WholeDaysBetween returns floor((to - from) / 24h). Negative spans yield 0.
func WholeDaysBetween(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / Day)
}
