package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RecipientDTO struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type StandardLayoutDTO struct {
	BaseFontSize             float64 `json:"base_font_size"`
	MinFontSize              float64 `json:"min_font_size"`
	BaseNameLength           int     `json:"base_name_length"`
	ScaleRatio               float64 `json:"scale_ratio"`
	VerticalBase             float64 `json:"vertical_base"`
	VerticalAdjustmentFactor float64 `json:"vertical_adjustment_factor"`
}

type CursiveBreakpointDTO struct {
	MaxNameLength    int     `json:"max_name_length"`
	FontSize         float64 `json:"font_size"`
	VerticalPosition float64 `json:"vertical_position"`
}

type LayoutDTO struct {
	Variant  string                 `json:"variant"`
	Standard *StandardLayoutDTO     `json:"standard,omitempty"`
	Cursive  []CursiveBreakpointDTO `json:"cursive,omitempty"`
}

// RunBatchRequest carries the batch inputs. Binary assets are base64-encoded
// by the standard JSON codec.
type RunBatchRequest struct {
	Recipients      []RecipientDTO `json:"recipients,omitempty"`
	RespondentTypes []string       `json:"respondent_types,omitempty"`
	Template        []byte         `json:"template"`
	Signatures      [][]byte       `json:"signatures,omitempty"`
	Layout          *LayoutDTO     `json:"layout,omitempty"`
	CodeAnchor      string         `json:"code_anchor,omitempty"`
	Mode            string         `json:"mode"`
	DeliverAfter    bool           `json:"deliver_after,omitempty"`
}

type BatchFailureDTO struct {
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	Reason         string `json:"reason"`
}

type RunBatchResponse struct {
	ActivityID   string            `json:"activity_id"`
	Mode         string            `json:"mode"`
	JobID        string            `json:"job_id,omitempty"`
	Status       string            `json:"status,omitempty"`
	SuccessCount int               `json:"success_count"`
	Failures     []BatchFailureDTO `json:"failures,omitempty"`
	Archive      []byte            `json:"archive,omitempty"`
}

type CertificateRecordDTO struct {
	Identifier     string `json:"identifier"`
	ActivityID     string `json:"activity_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	StorageURL     string `json:"storage_url,omitempty"`
	IssuedAt       string `json:"issued_at"`
}

type VerificationResponse struct {
	Valid  bool                  `json:"valid"`
	Record *CertificateRecordDTO `json:"record,omitempty"`
}

type RecordListResponse struct {
	ActivityID string                 `json:"activity_id"`
	Records    []CertificateRecordDTO `json:"records"`
}

type DispatchResponse struct {
	ActivityID string `json:"activity_id"`
	Enqueued   bool   `json:"enqueued"`
}
