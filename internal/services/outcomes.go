package services

// Conversion outcomes reported in the conversions_total metric.
const (
	OutcomeSuccess        = "success"
	OutcomeInvalidRequest = "invalid_request"
	OutcomeUnreadableFile = "unreadable_file"
	OutcomeInvalidInput   = "invalid_input"
	OutcomeTimeout        = "timeout"
	OutcomeWriteFailed    = "write_failed"
)
