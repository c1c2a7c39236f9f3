package domain

// ErrorCode identifies the kind of failure a pipeline stage reported.
// The vocabulary is closed; unrecognized codes are classified by the
// default decision row, never rejected.
type ErrorCode string

const (
	ErrorCodeNetwork    ErrorCode = "NETWORK_ERROR"
	ErrorCodeTimeout    ErrorCode = "TIMEOUT_ERROR"
	ErrorCodeMemory     ErrorCode = "MEMORY_ERROR"
	ErrorCodeOCR        ErrorCode = "OCR_ERROR"
	ErrorCodeParse      ErrorCode = "PARSE_ERROR"
	ErrorCodeAIService  ErrorCode = "AI_SERVICE_ERROR"
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
)

// Severity indicates how serious a processing error is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ProcessingError is a failure reported by an external pipeline component.
// Errors are immutable once created and only ever appended.
type ProcessingError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
	Context  string    `json:"context,omitempty"`
}
