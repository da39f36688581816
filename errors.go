package coursedoc

import (
	"errors"
	"fmt"
)

// Wrap wraps an error by prepending additional text.
// The text can contain formatting parameters.
func Wrap(err error, msg string, v ...interface{}) error {
	msg = fmt.Sprintf(msg, v...)
	return fmt.Errorf("%v: %w", msg, err)
}

type notFound struct {
	message string
}

func (n notFound) Error() string {
	return n.message
}

// NewNotFound creates an error for a missing project or cache entry.
func NewNotFound(msg string, v ...interface{}) error {
	return notFound{fmt.Sprintf(msg, v...)}
}

// IsNotFound checks if the given error is a "not found" error.
func IsNotFound(err error) bool {
	var e notFound
	return errors.As(err, &e)
}

type emptyInput struct{}

func (emptyInput) Error() string {
	return "no sections to include in the document"
}

// NewEmptyInput creates the error returned when an export is requested
// without any sections.
func NewEmptyInput() error {
	return emptyInput{}
}

// IsEmptyInput checks if the given error is an "empty input" error.
func IsEmptyInput(err error) bool {
	var e emptyInput
	return errors.As(err, &e)
}

type decodeError struct {
	sectionID string
	cause     error
}

func (d decodeError) Error() string {
	return fmt.Sprintf("failed to decode image for section %q: %v", d.sectionID, d.cause)
}

func (d decodeError) Unwrap() error {
	return d.cause
}

// NewDecodeError creates an error for an image that could not be decoded.
func NewDecodeError(sectionID string, cause error) error {
	return decodeError{sectionID, cause}
}

// IsDecodeError checks if the given error is an image decode error.
func IsDecodeError(err error) bool {
	var e decodeError
	return errors.As(err, &e)
}

type renderError struct {
	message string
	cause   error
}

func (r renderError) Error() string {
	if r.cause == nil {
		return r.message
	}
	return fmt.Sprintf("%v: %v", r.message, r.cause)
}

func (r renderError) Unwrap() error {
	return r.cause
}

// NewRenderError creates an error for a failure while drawing a page.
func NewRenderError(cause error, msg string, v ...interface{}) error {
	return renderError{fmt.Sprintf(msg, v...), cause}
}

// IsRenderError checks if the given error is a render error.
func IsRenderError(err error) bool {
	var e renderError
	return errors.As(err, &e)
}

// ExportFailedMessage is the user facing text for a failed export.
const ExportFailedMessage = "generation failed, please retry"

type exportError struct {
	cause error
}

func (e exportError) Error() string {
	return fmt.Sprintf("%v (%v)", ExportFailedMessage, e.cause)
}

func (e exportError) Unwrap() error {
	return e.cause
}

// NewExportError wraps a failure that prevented the artifact from being
// produced.
func NewExportError(cause error) error {
	return exportError{cause}
}

// IsExportError checks if the given error is a terminal export error.
func IsExportError(err error) bool {
	var e exportError
	return errors.As(err, &e)
}

type validationError struct {
	message string
}

func (v validationError) Error() string {
	return v.message
}

// NewValidationError creates an error of from the given format string.
func NewValidationError(msg string, v ...interface{}) error {
	return validationError{fmt.Sprintf(msg, v...)}
}

// IsValidationError checks if the given error is a validation error.
func IsValidationError(err error) bool {
	var e validationError
	return errors.As(err, &e)
}

type configurationError struct {
	message string
}

func (c configurationError) Error() string {
	return "configuration error: " + c.message
}

// NewConfigurationError creates an error for missing or invalid settings.
func NewConfigurationError(msg string, v ...interface{}) error {
	return configurationError{fmt.Sprintf(msg, v...)}
}

// IsConfigurationError checks if the given error is a configuration error.
func IsConfigurationError(err error) bool {
	var e configurationError
	return errors.As(err, &e)
}

// UpstreamKind classifies failures of the summarization service.
type UpstreamKind int

const (
	UpstreamOther UpstreamKind = iota
	UpstreamAuth
	UpstreamRateLimit
	UpstreamServer
	UpstreamMalformed
)

func (k UpstreamKind) String() string {
	switch k {
	case UpstreamAuth:
		return "authentication failed"
	case UpstreamRateLimit:
		return "rate limit reached"
	case UpstreamServer:
		return "server error"
	case UpstreamMalformed:
		return "malformed response"
	default:
		return "request failed"
	}
}

type upstreamError struct {
	kind  UpstreamKind
	cause error
}

func (u upstreamError) Error() string {
	if u.cause == nil {
		return "summarization service: " + u.kind.String()
	}
	return fmt.Sprintf("summarization service: %v: %v", u.kind, u.cause)
}

func (u upstreamError) Unwrap() error {
	return u.cause
}

// NewUpstreamError creates an error for a failed summarization request.
func NewUpstreamError(kind UpstreamKind, cause error) error {
	return upstreamError{kind, cause}
}

// UpstreamKindOf returns the kind of an upstream error.
// The second return value is false if err is not an upstream error.
func UpstreamKindOf(err error) (UpstreamKind, bool) {
	var e upstreamError
	if errors.As(err, &e) {
		return e.kind, true
	}
	return UpstreamOther, false
}
