package entity

type CandidateState string

const (
	CandidateUnresolved CandidateState = "unresolved"
	CandidatePending    CandidateState = "pending"
	CandidateResolved   CandidateState = "resolved"
)

// CandidateElement references a page node believed to be a job listing.
// Key is assigned by the page observer and stays stable for the node's lifetime.
type CandidateElement struct {
	Key   string
	JobID string
	State CandidateState
}
