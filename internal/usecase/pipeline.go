package usecase

import (
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/user/job-insights/internal/entity"
	"github.com/user/job-insights/pkg/jobid"
	"github.com/user/job-insights/pkg/metrics"
)

// ErrUnresolvableIdentifier marks a raw job object whose id could not be derived.
var ErrUnresolvableIdentifier = errors.New("job identifier could not be resolved")

// Pipeline turns captured response bodies into job records.
type Pipeline struct {
	loc    *time.Location
	now    func() time.Time
	logger *zap.Logger
}

func NewPipeline(loc *time.Location, logger *zap.Logger) *Pipeline {
	if loc == nil {
		loc = time.Local
	}
	return &Pipeline{loc: loc, now: time.Now, logger: logger}
}

// Process decodes msg and returns one record per resolvable job object, in payload order.
// Malformed bodies yield no records and ErrMalformedPayload.
func (p *Pipeline) Process(msg entity.InterceptedMessage) ([]*entity.JobRecord, error) {
	v, err := DecodePayload(msg.RawBody)
	if err != nil {
		metrics.PayloadErrors.Inc()
		return nil, err
	}

	raws := NormalizePayload(v)
	records := make([]*entity.JobRecord, 0, len(raws))
	for _, raw := range raws {
		id := ResolveJobID(raw)
		if id == "" && len(raws) == 1 {
			// A single-job response is usually addressed by id in its own URL.
			id = jobid.FromURL(msg.URL)
		}
		if id == "" {
			metrics.UnresolvedIdentifiers.Inc()
			p.logger.Debug("dropping job object",
				zap.String("url", msg.URL),
				zap.Error(ErrUnresolvableIdentifier),
			)
			continue
		}
		records = append(records, p.BuildRecord(id, raw))
	}
	return records, nil
}

// BuildRecord maps a raw job object to its display record.
func (p *Pipeline) BuildRecord(id string, raw RawJob) *entity.JobRecord {
	return &entity.JobRecord{
		ID:               id,
		ListedAt:         FormatTimestamp(raw["listedAt"], p.loc),
		ExpireAt:         FormatTimestamp(raw["expireAt"], p.loc),
		OriginalListedAt: FormatTimestamp(raw["originalListedAt"], p.loc),
		Views:            metric(raw["views"]),
		Applies:          metric(raw["applies"]),
		Title:            orUnknown(stringField(raw, "title")),
		Company:          orUnknown(companyName(raw)),
		CapturedAt:       p.now(),
	}
}

func metric(v any) entity.Metric {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return entity.KnownMetric(i)
		}
	case float64:
		if x == float64(int64(x)) {
			return entity.KnownMetric(int64(x))
		}
	case int:
		return entity.KnownMetric(int64(x))
	case int64:
		return entity.KnownMetric(x)
	}
	return entity.Metric{}
}

func companyName(raw RawJob) string {
	if name := strings.TrimSpace(stringField(raw, "companyName")); name != "" {
		return name
	}
	details, ok := raw["companyDetails"].(map[string]any)
	if !ok {
		return ""
	}
	if name := resolutionName(details); name != "" {
		return name
	}
	// Decorated payloads nest the company under a type-named key.
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if nested, ok := details[k].(map[string]any); ok {
			if name := resolutionName(nested); name != "" {
				return name
			}
		}
	}
	return ""
}

func resolutionName(m map[string]any) string {
	res, ok := m["companyResolutionResult"].(map[string]any)
	if !ok {
		return ""
	}
	name, _ := res["name"].(string)
	return strings.TrimSpace(name)
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return entity.UnknownLabel
	}
	return s
}
