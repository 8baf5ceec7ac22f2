package errors

import "errors"

var (
	ErrEmptyRecipientList      = errors.New("certificate batch has no recipients")
	ErrMissingTemplate         = errors.New("certificate template image is required")
	ErrInvalidSignatureSet     = errors.New("certificate batch requires exactly two signature images or none")
	ErrInvalidBatchInput       = errors.New("invalid certificate batch input")
	ErrRecordNotFound          = errors.New("certificate record not found")
	ErrBatchJobNotFound        = errors.New("certificate batch job not found")
	ErrNoDeliverableRecipients = errors.New("no certificate records with recipient contact details")
	ErrLocalRunnerStopped      = errors.New("local batch runner is not accepting jobs")
)
