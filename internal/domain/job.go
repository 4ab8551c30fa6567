package domain

import "time"

// JobStatus enumerates the workflow states surfaced to the presentation layer.
type JobStatus string

const (
	JobStatusIdle       JobStatus = "idle"
	JobStatusValidating JobStatus = "validating"
	JobStatusGenerating JobStatus = "generating"
	JobStatusPolling    JobStatus = "polling"
	JobStatusSuccess    JobStatus = "success"
	JobStatusError      JobStatus = "error"
)

// CanSubmit reports whether a new generation may start from this state.
func (s JobStatus) CanSubmit() bool {
	switch s {
	case JobStatusIdle, JobStatusSuccess, JobStatusError:
		return true
	default:
		return false
	}
}

// Busy reports whether a network round trip owned by the workflow is in flight.
func (s JobStatus) Busy() bool {
	switch s {
	case JobStatusValidating, JobStatusGenerating, JobStatusPolling:
		return true
	default:
		return false
	}
}

// CredentialStatus is the outcome of the last credential probe.
type CredentialStatus string

const (
	CredentialUnchecked CredentialStatus = "unchecked"
	CredentialValid     CredentialStatus = "valid"
	CredentialInvalid   CredentialStatus = "invalid"
)

// GenerationRecord is the journal entry for one generation attempt. It never
// carries the credential or the video bytes.
type GenerationRecord struct {
	ID             string
	Model          string
	Prompt         string
	AspectRatio    AspectRatio
	Resolution     Resolution
	SafetyPolicy   SafetyPolicy
	NegativePrompt string
	Status         JobStatus
	OperationName  string
	ErrorMessage   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
