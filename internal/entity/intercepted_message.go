package entity

// TransportMethod names the page networking primitive a response came through.
type TransportMethod string

const (
	TransportFetch TransportMethod = "fetch"
	TransportXHR   TransportMethod = "xhr"
)

func (t TransportMethod) Valid() bool {
	return t == TransportFetch || t == TransportXHR
}

// InterceptedMessage carries one captured response body from the page to the pipeline.
type InterceptedMessage struct {
	URL             string          `json:"url"`
	RawBody         string          `json:"rawBody"`
	TransportMethod TransportMethod `json:"transportMethod"`
}
