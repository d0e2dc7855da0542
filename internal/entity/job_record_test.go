package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Views   Metric `json:"views"`
		Applies Metric `json:"applies"`
	}{Views: KnownMetric(0), Applies: Metric{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"views":0,"applies":"N/A"}`, string(b))
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "57", KnownMetric(57).String())
	assert.Equal(t, NotAvailable, Metric{Value: 57}.String())
}
