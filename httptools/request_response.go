package httptools

import (
	"io"
	"net/http"
	"net/url"
	"time"
)

// Request encapsulates the parameters/options which are required when sending a REST request; invalid option
// combinations are surfaced as typed errors before any request is dispatched.
type Request struct {
	// Method is the HTTP method used when dispatching the request.
	Method Method

	// Endpoint is the path the request is dispatched to, it's appended to the client's host.
	Endpoint Endpoint

	// Body is the raw request body, ignored when one or more file payloads are supplied.
	Body []byte

	// Header is a set of additional headers set on the request, these may be overridden by the client e.g. the
	// 'Authorization' header.
	Header map[string]string

	// QueryParameters will be encoded and postfixed to the request URL.
	QueryParameters url.Values

	// ContentType of the request body. There is no default, a request with a body and no content type will be sent
	// with an empty 'Content-Type' header. Ignored when file payloads are supplied, the multipart content type with
	// the generated boundary is used instead.
	ContentType ContentType

	// Files is a list of file payloads which will be sent as a multipart form body. The form is rebuilt from scratch
	// before every attempt since a multipart body and its boundary cannot be safely reused verbatim.
	Files []FilePayload

	// Attempts is the maximum number of times the request is dispatched before giving up; it must be at least one.
	// Note that attempting a request multiple times repeats the full request including any file payloads, so whether
	// retrying is safe from the remote's perspective is down to the caller.
	Attempts int

	// Timeout is the timeout for a single attempt, when unset the client level timeout applies. A value of -1 means
	// no timeout at all.
	Timeout time.Duration

	// NoRetryOnStatusCodes is a list of status codes which should not be retried; by default every non-2xx status is
	// retried, with no distinction between the codes.
	NoRetryOnStatusCodes []int
}

// validate returns a typed error for argument mistakes which are programming errors; these fail before any request is
// dispatched.
func (r *Request) validate() error {
	if r.Attempts < 1 {
		return &InvalidAttemptsError{attempts: r.Attempts}
	}

	for _, file := range r.Files {
		if err := file.validate(); err != nil {
			return err
		}
	}

	return nil
}

// FilePayload is a named file sent as a multipart form field keyed by its name.
type FilePayload struct {
	// Name is the filename, also used as the form field name.
	Name string

	// Content is the file content. The handle must be seekable so it can be rewound to the start before each attempt;
	// it is read, not consumed, meaning the caller retains ownership and may reuse it once the request completes.
	Content io.Reader
}

// validate ensures the payload content is a rewindable handle, rejecting anything else with an error naming the
// offending content's dynamic type.
func (f *FilePayload) validate() error {
	if _, ok := f.Content.(io.ReadSeeker); !ok {
		return &InvalidFilePayloadError{name: f.Name, content: f.Content}
	}

	return nil
}

// Response encapsulates a REST response; the body has been fully read meaning it may be inspected without worrying
// about resource cleanup.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}
