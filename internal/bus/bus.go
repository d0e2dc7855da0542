// Package bus carries captured responses from the page realm to the pipeline.
//
// The page posts JSON envelopes tagged with CaptureTag over a channel it shares with
// unrelated traffic. Decode keeps only well-formed capture envelopes; Bus delivers them
// to a single subscriber in the order they were published.
package bus

import (
	"encoding/json"

	"github.com/user/job-insights/internal/entity"
)

// CaptureTag marks envelopes produced by the page interceptor.
const CaptureTag = "JOB_INSIGHTS_CAPTURE"

type envelope struct {
	Type            string                 `json:"type"`
	URL             string                 `json:"url"`
	RawBody         string                 `json:"rawBody"`
	TransportMethod entity.TransportMethod `json:"transportMethod"`
}

// Decode returns the message carried by payload. ok is false for anything that is not a
// capture envelope.
func Decode(payload []byte) (msg entity.InterceptedMessage, ok bool) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return msg, false
	}
	if env.Type != CaptureTag || env.URL == "" || !env.TransportMethod.Valid() {
		return msg, false
	}
	return entity.InterceptedMessage{
		URL:             env.URL,
		RawBody:         env.RawBody,
		TransportMethod: env.TransportMethod,
	}, true
}

// Bus is the typed capture channel: a Queue of InterceptedMessage.
type Bus struct {
	q *Queue[entity.InterceptedMessage]
}

// New starts a bus that hands every published message to handler on one goroutine.
func New(handler func(entity.InterceptedMessage)) *Bus {
	return &Bus{q: NewQueue(handler)}
}

// PublishRaw decodes payload and publishes it if it is a capture envelope.
func (b *Bus) PublishRaw(payload []byte) bool {
	msg, ok := Decode(payload)
	if ok {
		b.q.Publish(msg)
	}
	return ok
}

// Close stops delivery; see Queue.Close.
func (b *Bus) Close() {
	b.q.Close()
}
