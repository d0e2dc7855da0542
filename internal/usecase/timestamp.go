package usecase

import (
	"encoding/json"
	"math"
	"time"

	"github.com/user/job-insights/internal/entity"
)

// DisplayLayout renders timestamps the way the job site's locale shows them.
const DisplayLayout = "1/2/2006, 3:04:05 PM"

// Dates beyond ±8.64e15 ms are not representable on the page and are treated as invalid.
const maxEpochMillis = 8.64e15

// FormatTimestamp turns a millisecond epoch into a display string in loc. Anything that is
// not a finite, in-range number becomes entity.NotAvailable.
func FormatTimestamp(v any, loc *time.Location) string {
	ms, ok := epochMillis(v)
	if !ok {
		return entity.NotAvailable
	}
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(ms).In(loc).Format(DisplayLayout)
}

func epochMillis(v any) (int64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			f = float64(i)
			break
		}
		parsed, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > maxEpochMillis {
		return 0, false
	}
	return int64(f), true
}
