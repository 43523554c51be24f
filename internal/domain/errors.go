package domain

// Stable error codes surfaced to the CRM client. The Salesforce flow
// branches on these strings, so they never change shape.
const (
	ErrCodeMissingBillNumber   = "MISSING_BILL_NUMBER"
	ErrCodeInvalidBillFormat   = "INVALID_BILL_FORMAT"
	ErrCodeBillNotFound        = "BILL_NOT_FOUND"
	ErrCodeBillFetchFailed     = "BILL_FETCH_FAILED"
	ErrCodeBillFetchError      = "BILL_FETCH_ERROR"
	ErrCodeTimeout             = "TIMEOUT"
	ErrCodePDFExtractionFailed = "PDF_EXTRACTION_FAILED"
)
