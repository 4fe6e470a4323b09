package page

import (
	"errors"
	"fmt"
	"strings"
)

const (
	CodeValidation         = "VALIDATION"
	CodeElementNotFound    = "ELEMENT_NOT_FOUND"
	CodeNavigationTimeout  = "NAVIGATION_TIMEOUT"
	CodeNetwork            = "NETWORK_ERROR"
	CodeSessionUnavailable = "SESSION_UNAVAILABLE"
	CodeNotFound           = "NOT_FOUND"
	CodeBusy               = "RUN_IN_PROGRESS"
)

// CodedError is a typed error used for stable mapping across the CLI and API.
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

// HasCode reports whether err (or anything it wraps) is a CodedError with code.
func HasCode(err error, code string) bool {
	var coded *CodedError
	return errors.As(err, &coded) && coded.Code == code
}

// Strategy names how a Locator value is interpreted.
type Strategy string

const (
	ByCSS             Strategy = "css"
	ByID              Strategy = "id"
	ByName            Strategy = "name"
	ByXPath           Strategy = "xpath"
	ByLinkText        Strategy = "link_text"
	ByPartialLinkText Strategy = "partial_link_text"
)

var knownStrategies = map[Strategy]bool{
	ByCSS:             true,
	ByID:              true,
	ByName:            true,
	ByXPath:           true,
	ByLinkText:        true,
	ByPartialLinkText: true,
}

// Locator identifies one element within a rendered page.
type Locator struct {
	By    Strategy `json:"by" yaml:"by"`
	Value string   `json:"value" yaml:"value"`
}

// CSS is shorthand for a css-selector Locator.
func CSS(selector string) Locator { return Locator{By: ByCSS, Value: selector} }

// ID is shorthand for an element-id Locator.
func ID(id string) Locator { return Locator{By: ByID, Value: id} }

// Validate rejects unknown strategies and empty values.
func (l Locator) Validate() error {
	if !knownStrategies[l.By] {
		return NewError(CodeValidation, fmt.Sprintf("unknown locator strategy %q", l.By), nil)
	}
	if strings.TrimSpace(l.Value) == "" {
		return NewError(CodeValidation, "locator value is required", nil)
	}
	return nil
}

// String renders the locator the way failure messages show it.
func (l Locator) String() string {
	return fmt.Sprintf("%s=%s", l.By, l.Value)
}
