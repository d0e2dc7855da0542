package usecase

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/user/job-insights/pkg/jobid"
)

var (
	urnFields = []string{"entityUrn", "dashEntityUrn", "jobPostingUrn", "trackingUrn"}
	urlFields = []string{"jobPostingUrl", "url", "navigationUrl"}
)

// ResolveJobID derives the job identifier of a raw job object. It prefers the explicit
// jobPostingId field, then a jobPosting URN, then a job URL. It returns "" when none of
// them yields an identifier.
func ResolveJobID(raw RawJob) string {
	if id := scalarString(raw["jobPostingId"]); id != "" {
		return id
	}
	for _, field := range urnFields {
		if id := jobid.FromURN(stringField(raw, field)); id != "" {
			return id
		}
	}
	for _, field := range urlFields {
		if id := jobid.FromURL(stringField(raw, field)); id != "" {
			return id
		}
	}
	return ""
}

func stringField(raw RawJob, key string) string {
	s, _ := raw[key].(string)
	return s
}

// scalarString renders ids that arrive as strings or JSON numbers.
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return ""
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return x.String()
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	return ""
}
