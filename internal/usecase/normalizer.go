package usecase

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformedPayload is returned when a captured body is not a single JSON value.
var ErrMalformedPayload = errors.New("malformed job postings payload")

// RawJob is one undecoded job object as it appeared in a payload.
type RawJob = map[string]any

// DecodePayload parses a captured body. Numbers are kept as json.Number so identifiers
// and epoch timestamps survive without float rounding.
func DecodePayload(body string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after JSON value", ErrMalformedPayload)
	}
	return v, nil
}

// NormalizePayload flattens the known response shapes into a list of job objects:
// {"elements": [...]}, {"data": {"elements": [...]}}, a bare list, or a single job object.
// Anything else yields an empty list. Non-object list entries are skipped.
func NormalizePayload(v any) []RawJob {
	if obj, ok := v.(map[string]any); ok {
		if list, ok := obj["elements"].([]any); ok {
			return objects(list)
		}
		if data, ok := obj["data"].(map[string]any); ok {
			if list, ok := data["elements"].([]any); ok {
				return objects(list)
			}
		}
		if looksLikeJob(obj) {
			return []RawJob{obj}
		}
		return nil
	}
	if list, ok := v.([]any); ok {
		return objects(list)
	}
	return nil
}

func looksLikeJob(obj map[string]any) bool {
	_, hasID := obj["jobPostingId"]
	_, hasURN := obj["entityUrn"]
	return hasID || hasURN
}

func objects(list []any) []RawJob {
	out := make([]RawJob, 0, len(list))
	for _, item := range list {
		if obj, ok := item.(map[string]any); ok {
			out = append(out, obj)
		}
	}
	return out
}
