package chromedp_page

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/job-insights/internal/repository"
)

func TestDOMSourceParse(t *testing.T) {
	d := NewDOMSource(context.Background(), nil, zap.NewNop())

	tests := []struct {
		name    string
		payload string
		wantOK  bool
		want    repository.DOMEvent
	}{
		{
			name:    "insert with id",
			payload: `{"kind":"insert","key":"ji-1","html":"<li data-occludable-job-id=\"123\"></li>"}`,
			wantOK:  true,
			want:    repository.DOMEvent{Kind: repository.DOMInsert},
		},
		{
			name:    "insert without id yet",
			payload: `{"kind":"insert","key":"ji-2","html":"<li></li>"}`,
			wantOK:  true,
			want:    repository.DOMEvent{Kind: repository.DOMInsert},
		},
		{
			name:    "click on card",
			payload: `{"kind":"focus","key":"ji-1","html":"<li><a href=\"/jobs/view/555/\">x</a></li>"}`,
			wantOK:  true,
			want:    repository.DOMEvent{Kind: repository.DOMFocus, FocusJobID: "555"},
		},
		{
			name:    "click on card without id",
			payload: `{"kind":"focus","key":"ji-1","html":"<li></li>"}`,
		},
		{
			name:    "navigation to a job",
			payload: `{"kind":"navigate","url":"https://www.linkedin.com/jobs/search/?currentJobId=987"}`,
			wantOK:  true,
			want:    repository.DOMEvent{Kind: repository.DOMFocus, FocusJobID: "987"},
		},
		{name: "navigation elsewhere", payload: `{"kind":"navigate","url":"https://www.linkedin.com/feed/"}`},
		{name: "insert without key", payload: `{"kind":"insert","html":"<li data-job-id=\"1\"></li>"}`},
		{name: "unknown kind", payload: `{"kind":"scroll"}`},
		{name: "garbage", payload: `{{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok := d.parse(tt.payload)
			assert.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.want.Kind, ev.Kind)
			assert.Equal(t, tt.want.FocusJobID, ev.FocusJobID)
		})
	}
}

func TestDOMSourceParseInsertCandidate(t *testing.T) {
	d := NewDOMSource(context.Background(), nil, zap.NewNop())

	ev, ok := d.parse(`{"kind":"insert","key":"ji-9","html":"<div data-job-id=\"31\"></div>"}`)
	assert.True(t, ok)
	assert.Equal(t, "ji-9", ev.Candidate.Key)
	assert.Equal(t, "31", ev.Candidate.JobID)
}
