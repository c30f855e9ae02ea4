package executor

import "fmt"

const (
	CodeValidation         = "VALIDATION"
	CodeScenarioNotFound   = "SCENARIO_NOT_FOUND"
	CodeRunNotFound        = "RUN_NOT_FOUND"
	CodeRunActive          = "RUN_ACTIVE"
	CodeNavigationTimeout  = "NAVIGATION_TIMEOUT"
	CodeElementNotFound    = "ELEMENT_NOT_FOUND"
	CodeLoadWaitTimeout    = "LOAD_WAIT_TIMEOUT"
	CodeAssertionFailed    = "ASSERTION_FAILED"
	CodeSessionUnavailable = "SESSION_UNAVAILABLE"
)

// CodedError is a typed error used for stable API mapping and executor
// policy decisions.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
}

func (e *CodedError) Unwrap() error { return e.Cause }

// NewError builds a CodedError.
func NewError(code, msg string, cause error) error {
	return &CodedError{Code: code, Message: msg, Cause: cause}
}
