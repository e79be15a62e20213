package httptools

import (
	"bufio"
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/skynetlabs/skyportal/aprov"
	"github.com/skynetlabs/skyportal/errutil"
	"github.com/skynetlabs/skyportal/netutil"
)

// NewHTTPClient returns a new HTTP client with the given client/transport.
//
// NOTE: This is used to ensure that all uses of a HTTP client use the same configuration.
func NewHTTPClient(timeout time.Duration, transport http.RoundTripper) *http.Client {
	return &http.Client{Timeout: timeout, Transport: transport}
}

// ReadBody returns the entire response body returning an informative error in the case where the response body is less
// than the expected length.
func ReadBody(method Method, endpoint Endpoint, reader io.Reader, contentLength int64) ([]byte, error) {
	body, err := io.ReadAll(bufio.NewReader(reader))
	if err == nil {
		return body, nil
	}

	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, &UnexpectedEndOfBodyError{
			method:   method,
			endpoint: endpoint,
			expected: contentLength,
			got:      len(body),
		}
	}

	return nil, err
}

// SetAuthHeaders is a utility function which sets all the request headers which are provided by the 'AuthProvider'.
//
// NOTE: Basic authentication is only configured when the provider returns non-empty credentials.
func SetAuthHeaders(req http.Request, host string, authProvider aprov.Provider) *http.Request {
	username, password := authProvider.GetCredentials(host)
	if username != "" || password != "" {
		req.SetBasicAuth(username, password)
	}

	// Set the 'User-Agent' so that we can trace how these requests are handled by the remote service
	req.Header.Set("User-Agent", authProvider.GetUserAgent())

	return &req
}

// buildMultipartBody constructs a multipart form body from the given file payloads, rewinding each content handle to
// the start beforehand; each payload becomes a form field keyed by its filename.
//
// NOTE: This must be re-run before every attempt, the generated boundary and the consumed content handles mean a
// multipart body cannot be reused verbatim.
func buildMultipartBody(files []FilePayload) ([]byte, ContentType, error) {
	var (
		buffer bytes.Buffer
		writer = multipart.NewWriter(&buffer)
	)

	for _, file := range files {
		seeker, ok := file.Content.(io.ReadSeeker)
		if !ok {
			return nil, "", &InvalidFilePayloadError{name: file.Name, content: file.Content}
		}

		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to rewind file payload '%s': %w", file.Name, err)
		}

		part, err := writer.CreateFormFile(file.Name, file.Name)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form field for file payload '%s': %w", file.Name, err)
		}

		if _, err := io.Copy(part, seeker); err != nil {
			return nil, "", fmt.Errorf("failed to copy file payload '%s': %w", file.Name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart form: %w", err)
	}

	return buffer.Bytes(), ContentType(writer.FormDataContentType()), nil
}

// HandleRequestError is a utility function which converts a failed REST request error (hard failure as returned by the
// standard library) into a more useful/user friendly error.
func HandleRequestError(req *http.Request, err error) error {
	// String comparisons aren't ideal for error handling, but this allows us to handle future x509 error types without
	// modification.
	if strings.HasPrefix(errutil.Unwrap(err).Error(), "x509") {
		return &UnknownX509Error{inner: err}
	}

	// If we receive an EOF error, wrap it with a useful error message containing the method/endpoint
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &SocketClosedInFlightError{method: req.Method, endpoint: req.URL.Path}
	}

	return err
}

// HandleResponseError is a utility function which converts a failed REST request (soft failure i.e. the request itself
// was successful) into a more useful/user friendly error.
func HandleResponseError(method Method, endpoint Endpoint, statusCode int, body []byte) error {
	switch statusCode {
	case http.StatusForbidden:
		return &AuthorizationError{method: method, endpoint: endpoint}
	case http.StatusUnauthorized:
		return &AuthenticationError{method: method, endpoint: endpoint}
	case http.StatusInternalServerError:
		return &InternalServerError{method: method, endpoint: endpoint, Body: body}
	case http.StatusNotFound:
		return &EndpointNotFoundError{method: method, endpoint: endpoint}
	}

	return &UnexpectedStatusCodeError{Status: statusCode, method: method, endpoint: endpoint, Body: body}
}

// ShouldRetry returns a boolean indicating whether the request which returned the given error should be retried.
func ShouldRetry(err error) bool {
	var (
		socketClosed *SocketClosedInFlightError
		unknownAuth  *x509.UnknownAuthorityError
	)

	return netutil.IsTemporaryError(err) || errors.As(err, &socketClosed) || errors.As(err, &unknownAuth)
}
