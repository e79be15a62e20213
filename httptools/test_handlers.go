package httptools

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestHandlers is a readability wrapper around the endpoint handlers for a test portal.
type TestHandlers map[string]http.HandlerFunc

// Add a new handler to the endpoint handlers, note that the method is required to ensure unique handlers for each
// endpoint.
func (e TestHandlers) Add(method, endpoint string, handler http.HandlerFunc) {
	e[fmt.Sprintf("%s:%s", method, endpoint)] = handler
}

// Handle utility function which handles the provided request returning a boolean indicating whether a handler was
// found.
func (e TestHandlers) Handle(writer http.ResponseWriter, request *http.Request) {
	handler, ok := e[fmt.Sprintf("%s:%s", request.Method, request.URL.Path)]
	if !ok {
		writer.WriteHeader(http.StatusNotFound)
		return
	}

	handler(writer, request)
}

// NewTestHandler creates the most basic type of handler which will respond with the provided status/body.
func NewTestHandler(t *testing.T, status int, body []byte) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerWithRetries builds upon the basic handler by simulating a flaky/busy endpoint which forces retries a
// configurable number of times before providing a valid response.
func NewTestHandlerWithRetries(t *testing.T, numFailures, failureStatus, successStatus int,
	body []byte,
) http.HandlerFunc {
	var requests int

	return func(writer http.ResponseWriter, request *http.Request) {
		defer func() { requests++ }()

		status := failureStatus
		if requests >= numFailures {
			status = successStatus
		}

		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerWithCounter wraps the basic handler whilst incrementing the given counter for each request received;
// this should be used to validate exactly how many requests were dispatched.
func NewTestHandlerWithCounter(t *testing.T, status int, body []byte, requests *int) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		*requests++

		writer.WriteHeader(status)

		_, err := writer.Write(body)
		require.NoError(t, err)
	}
}

// NewTestHandlerWithEOF creates a handler which will cause an EOF error when attempting to read the body.
func NewTestHandlerWithEOF(t *testing.T) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Length", "1")

		writer.WriteHeader(http.StatusOK)

		_, err := writer.Write(make([]byte, 0))
		require.NoError(t, err)
	}
}

// NewTestHandlerWithHijack creates a handler which will hijack the connection an immediately close it; this is
// simulating a socket closed in flight error.
func NewTestHandlerWithHijack(t *testing.T) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		hijacker, ok := writer.(http.Hijacker)
		require.True(t, ok)

		conn, _, err := hijacker.Hijack()
		require.NoError(t, err)
		require.NoError(t, conn.Close())
	}
}

// NewTestHandlerWithMultipart creates a handler which parses a multipart form request and stores the received file
// contents, keyed by form field name, in the provided map. This should be used to validate that the form was rebuilt
// correctly for each attempt.
func NewTestHandlerWithMultipart(t *testing.T, status int, body []byte, fields map[string][]byte) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		reader, err := request.MultipartReader()
		require.NoError(t, err)

		for {
			part, err := reader.NextPart()
			if err != nil {
				break
			}

			var buffer bytes.Buffer

			_, err = io.Copy(&buffer, part)
			require.NoError(t, err)

			fields[part.FormName()] = buffer.Bytes()
		}

		writer.WriteHeader(status)

		_, err = writer.Write(body)
		require.NoError(t, err)
	}
}
