package domain

import (
	"fmt"
	"time"
)

// ExtendJobTTL is how long an extend job is kept after it was created.
const ExtendJobTTL = 10 * time.Minute

// ExtendJobStatus is the lifecycle state of an extend job
type ExtendJobStatus string

const (
	ExtendJobRunning ExtendJobStatus = "running"
	ExtendJobDone    ExtendJobStatus = "done"
	ExtendJobError   ExtendJobStatus = "error"
)

// ExtendJob tracks one asynchronous request to grow a FaqSet.
// Status moves from running to done or error exactly once.
type ExtendJob struct {
	ID         string
	FaqID      string
	Status     ExtendJobStatus
	Added      *int
	Error      string
	CreatedAt  time.Time
	FinishedAt *time.Time
}

// NewExtendJob creates a running ExtendJob
func NewExtendJob(id, faqID string, createdAt time.Time) *ExtendJob {
	return &ExtendJob{
		ID:        id,
		FaqID:     faqID,
		Status:    ExtendJobRunning,
		CreatedAt: createdAt,
	}
}

// Finished reports whether the job has left the running state.
func (j *ExtendJob) Finished() bool {
	return j.Status != ExtendJobRunning
}

// Complete moves a running job to done with the number of added items.
func (j *ExtendJob) Complete(added int, at time.Time) error {
	if j.Finished() {
		return fmt.Errorf("extend job %s already %s", j.ID, j.Status)
	}
	j.Status = ExtendJobDone
	j.Added = &added
	j.FinishedAt = &at
	return nil
}

// Fail moves a running job to error with the given message.
func (j *ExtendJob) Fail(msg string, at time.Time) error {
	if j.Finished() {
		return fmt.Errorf("extend job %s already %s", j.ID, j.Status)
	}
	j.Status = ExtendJobError
	j.Error = msg
	j.FinishedAt = &at
	return nil
}

// Expired reports whether the job is older than ExtendJobTTL at now.
func (j *ExtendJob) Expired(now time.Time) bool {
	return now.Sub(j.CreatedAt) > ExtendJobTTL
}

// Clone returns a copy that shares no pointers with j.
func (j *ExtendJob) Clone() *ExtendJob {
	if j == nil {
		return nil
	}
	c := *j
	if j.Added != nil {
		added := *j.Added
		c.Added = &added
	}
	if j.FinishedAt != nil {
		at := *j.FinishedAt
		c.FinishedAt = &at
	}
	return &c
}

// ValidateExtendJob validates an ExtendJob instance
func ValidateExtendJob(j *ExtendJob) error {
	if j == nil {
		return fmt.Errorf("extend job cannot be nil")
	}

	if j.ID == "" {
		return fmt.Errorf("extend job ID is required")
	}

	if j.FaqID == "" {
		return fmt.Errorf("extend job FaqID is required")
	}

	if !isValidExtendJobStatus(j.Status) {
		return fmt.Errorf("extend job Status is invalid: %s", j.Status)
	}

	return nil
}

// ParseExtendJobStatus converts a stored status string.
func ParseExtendJobStatus(s string) (ExtendJobStatus, error) {
	st := ExtendJobStatus(s)
	if !isValidExtendJobStatus(st) {
		return "", ErrInvalidJobStatus
	}
	return st, nil
}

// isValidExtendJobStatus checks if an ExtendJobStatus is valid
func isValidExtendJobStatus(s ExtendJobStatus) bool {
	switch s {
	case ExtendJobRunning, ExtendJobDone, ExtendJobError:
		return true
	}
	return false
}
