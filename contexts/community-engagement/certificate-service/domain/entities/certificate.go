package entities

import "time"

type BatchMode string

const (
	BatchModeLocal    BatchMode = "local"
	BatchModeDeferred BatchMode = "deferred"
)

type CodeAnchor string

const (
	CodeAnchorLeft  CodeAnchor = "left"
	CodeAnchorRight CodeAnchor = "right"
)

// Recipient is one roster entry for a certificate batch.
type Recipient struct {
	Name  string
	Email string
}

// Respondent is a row of the respondent projection owned by the portal's
// CRUD layer. The certificate service only reads it.
type Respondent struct {
	ActivityID     string
	RespondentType string
	Name           string
	Email          string
}

// CertificateRecord is one issued certificate per (activity, recipient) pair.
// Identifier is a pure function of the triple; the record itself captures
// name/email as they were at render time and is never re-derived.
type CertificateRecord struct {
	Identifier     string
	ActivityID     string
	RecipientName  string
	RecipientEmail string
	StorageURL     string
	IssuedAt       time.Time
	UpdatedAt      time.Time
}

type BatchFailure struct {
	RecipientName  string
	RecipientEmail string
	Reason         string
}

// BatchResult is the terminal state of one batch run. Partial success is a
// valid terminal state: every recipient lands in SuccessCount or Failures.
type BatchResult struct {
	ActivityID   string
	SuccessCount int
	Failures     []BatchFailure
}

type BatchJobStatus string

const (
	BatchJobStatusPending BatchJobStatus = "pending"
	BatchJobStatusRunning BatchJobStatus = "running"
	BatchJobStatusDone    BatchJobStatus = "done"
	BatchJobStatusFailed  BatchJobStatus = "failed"
)

// BatchJob is one durable deferred-mode unit of work. Payload holds the
// serialized batch command so the worker can replay the job in full.
type BatchJob struct {
	ID           string
	ActivityID   string
	Status       BatchJobStatus
	Payload      []byte
	SuccessCount int
	FailureCount int
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
