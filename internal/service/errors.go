package service

import (
	"fmt"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

// AnalysisError is a pipeline failure tagged with a stable error code for
// the HTTP boundary. Result carries partial context (bill number, exists
// flag) when the failure shape includes one.
type AnalysisError struct {
	Code    string
	Message string
	Result  *domain.AnalysisResult
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

func analysisErr(code, message string, err error) *AnalysisError {
	return &AnalysisError{Code: code, Message: message, Err: err}
}
