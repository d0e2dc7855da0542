package entity

import (
	"encoding/json"
	"strconv"
	"time"
)

// NotAvailable is the display value for any field that could not be determined.
const NotAvailable = "N/A"

// UnknownLabel is the default for missing title and company names.
const UnknownLabel = "Unknown"

// Metric is a count that may be unknown. Unknown metrics render and encode as "N/A".
type Metric struct {
	Value int64
	Known bool
}

func KnownMetric(v int64) Metric {
	return Metric{Value: v, Known: true}
}

func (m Metric) String() string {
	if !m.Known {
		return NotAvailable
	}
	return strconv.FormatInt(m.Value, 10)
}

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Known {
		return json.Marshal(NotAvailable)
	}
	return []byte(strconv.FormatInt(m.Value, 10)), nil
}

// JobRecord is the normalized metadata of one job posting.
type JobRecord struct {
	ID               string    `json:"id"`
	ListedAt         string    `json:"listed_at"`
	ExpireAt         string    `json:"expire_at"`
	OriginalListedAt string    `json:"original_listed_at"`
	Views            Metric    `json:"views"`
	Applies          Metric    `json:"applies"`
	Title            string    `json:"title"`
	Company          string    `json:"company"`
	CapturedAt       time.Time `json:"captured_at"`
}
