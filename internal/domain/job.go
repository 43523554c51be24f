package domain

import (
	"encoding/json"
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusFinished   JobStatus = "finished"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether a status admits no further transitions. Failed
// jobs are never retried or re-queued.
func (s JobStatus) Terminal() bool {
	return s == JobStatusFinished || s == JobStatusFailed
}

// Job is an asynchronous bill analysis run tracked for polling callers.
// Result holds the serialized AnalysisResult once the worker finishes.
type Job struct {
	ID           string
	BillNumber   string
	Session      string
	Status       JobStatus
	Result       json.RawMessage
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// QueueMessage is the transport format sent to queue backends.
type QueueMessage struct {
	JobID       string    `json:"job_id"`
	BillNumber  string    `json:"bill_number"`
	Session     string    `json:"session"`
	Attempt     int       `json:"attempt"`
	RequestedAt time.Time `json:"requested_at"`
}
