package repository

import "github.com/user/job-insights/internal/entity"

// JobRecordRepository is the session's in-memory job data store.
type JobRecordRepository interface {
	// Set stores the record under id, replacing any previous record.
	Set(id string, rec *entity.JobRecord)
	// Get returns the record for id.
	Get(id string) (*entity.JobRecord, bool)
	// Len returns the number of stored records.
	Len() int
	// Clear drops every record. Only used on teardown.
	Clear()
}
