package httptools

import (
	"errors"
	"fmt"
)

// InvalidAttemptsError is returned if a request is supplied with an attempt bound of less than one; this is treated as
// a programming error and fails before any request is dispatched.
type InvalidAttemptsError struct {
	attempts int
}

func (e *InvalidAttemptsError) Error() string {
	return fmt.Sprintf("attempts must be at least one, got %d", e.attempts)
}

// InvalidFilePayloadError is returned if a file payload contains a content handle which can't be rewound; it fails
// before any request is dispatched.
type InvalidFilePayloadError struct {
	name    string
	content any
}

func (e *InvalidFilePayloadError) Error() string {
	return fmt.Sprintf("file payload '%s' must contain a seekable content handle, got %T", e.name, e.content)
}

// RetriesExhaustedError is returned if the request was attempted the maximum number of times without receiving a
// successful status; the final response is carried for caller inspection.
type RetriesExhaustedError struct {
	method   Method
	endpoint Endpoint
	attempts int
	response *Response
	err      error
}

func (e *RetriesExhaustedError) Error() string {
	msg := fmt.Sprintf("'%s' request to '%s' failed after %d attempts", e.method, e.endpoint, e.attempts)
	if e.response != nil {
		msg += fmt.Sprintf(" with final status %d", e.response.StatusCode)
	}

	if e.err != nil {
		msg += fmt.Sprintf(": %s", e.err)
	}

	return msg
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.err
}

// Response returns the response from the final attempt, may be <nil> if the final attempt failed at the transport
// level.
func (e *RetriesExhaustedError) Response() *Response {
	return e.response
}

// IsRetriesExhausted returns a boolean indicating whether the given error is a 'RetriesExhaustedError'.
func IsRetriesExhausted(err error) bool {
	var retriesExhausted *RetriesExhaustedError
	return err != nil && errors.As(err, &retriesExhausted)
}

// SocketClosedInFlightError is returned if the client socket was closed during an active request. This is usually due
// to socket being closed by the remote host in the event of a fatal error.
type SocketClosedInFlightError struct {
	method   string
	endpoint string
}

func (e *SocketClosedInFlightError) Error() string {
	return fmt.Sprintf("error executing '%s' request to '%s' socket closed in flight, check the logs for more details",
		e.method, e.endpoint)
}

// UnexpectedEndOfBodyError is returned if the length of the request body does not match the expected length. This may
// happen in the event that the 'Content-Length' header value is incorrectly set.
type UnexpectedEndOfBodyError struct {
	method   Method
	endpoint Endpoint
	expected int64
	got      int
}

func (e *UnexpectedEndOfBodyError) Error() string {
	return fmt.Sprintf("unexpected EOF whilst reading response body for '%s' request to '%s', expected %d bytes but "+
		"got %d", e.method, e.endpoint, e.expected, e.got)
}

// UnknownX509Error is returned when the dispatched request receives a generic (unhandled) x509 error.
type UnknownX509Error struct {
	inner error
}

func (e *UnknownX509Error) Unwrap() error {
	return e.inner
}

func (e *UnknownX509Error) Error() string {
	return e.inner.Error()
}

// UnexpectedStatusCodeError is returned if a request was executed successfully, however, we received a response status
// code which was unexpected.
type UnexpectedStatusCodeError struct {
	Status   int
	method   Method
	endpoint Endpoint
	Body     []byte
}

func (e *UnexpectedStatusCodeError) Error() string {
	msg := fmt.Sprintf("unexpected status code %d for '%s' request to '%s'", e.Status, e.method, e.endpoint)
	if len(e.Body) == 0 {
		msg += ", check the logs for more details"
	} else {
		msg += fmt.Sprintf(", %s", e.Body)
	}

	return msg
}

// AuthorizationError is returned if we receive a 403 status code which means the credentials are correct but they
// don't have the needed permissions.
type AuthorizationError struct {
	method   Method
	endpoint Endpoint
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("permission error executing '%s' request to '%s', user missing required permissions", e.method,
		e.endpoint)
}

// AuthenticationError is returned if we received a 401 status code i.e. the users credentials are incorrect.
type AuthenticationError struct {
	method   Method
	endpoint Endpoint
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication error executing '%s' request to '%s' check credentials", e.method, e.endpoint)
}

// InternalServerError is returned if we received a 500 status code.
type InternalServerError struct {
	method   Method
	endpoint Endpoint
	Body     []byte
}

func (e *InternalServerError) Error() string {
	if e.Body != nil {
		return fmt.Sprintf("internal server error executing '%s' request to '%s': %s", e.method, e.endpoint, e.Body)
	}

	return fmt.Sprintf("internal server error executing '%s' request to '%s' check the logs for more details",
		e.method, e.endpoint)
}

// EndpointNotFoundError is returned if we received a 404 status code.
type EndpointNotFoundError struct {
	method   Method
	endpoint Endpoint
}

func (e *EndpointNotFoundError) Error() string {
	return fmt.Sprintf("received an unexpected 404 status executing '%s' request to '%s' check the logs for "+
		"more details", e.method, e.endpoint)
}

// IsEndpointNotFound returns a boolean indicating whether the given error is an 'EndpointNotFoundError'.
func IsEndpointNotFound(err error) bool {
	var notFound *EndpointNotFoundError
	return err != nil && errors.As(err, &notFound)
}
