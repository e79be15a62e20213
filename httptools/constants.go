package httptools

import (
	"net/http"
	"time"
)

// Method is a readability wrapper around the supported HTTP methods.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodHead   Method = http.MethodHead
	MethodDelete Method = http.MethodDelete
	MethodPut    Method = http.MethodPut
)

// ContentType is a readability wrapper around the content type of a request body.
type ContentType string

const (
	ContentTypeJSON       ContentType = "application/json"
	ContentTypeURLEncoded ContentType = "application/x-www-form-urlencoded"
)

const (
	// DefaultClientTimeout is the timeout for client connection/single operations i.e. this doesn't include retries.
	DefaultClientTimeout = time.Minute

	// DefaultRequestAttempts is the number of times to attempt a request before giving up. When dispatching another
	// attempt the overall request timeout is not reset, however, the connection/client level timeout is.
	DefaultRequestAttempts = 3
)
