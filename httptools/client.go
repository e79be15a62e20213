package httptools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skynetlabs/skyportal/aprov"
	"github.com/skynetlabs/skyportal/errutil"
	"github.com/skynetlabs/skyportal/log"
	"github.com/skynetlabs/skyportal/maths"
	"github.com/skynetlabs/skyportal/netutil"
	"github.com/skynetlabs/skyportal/retry"

	"golang.org/x/exp/slices"
)

// Client is a generalized client for sending and receiving http requests that wraps various functionality such as error
// handling, logging as well as robust and customizable request retrying.
type Client struct {
	client         *http.Client
	host           string
	reqResLogLevel log.Level
	logger         log.WrappedLogger
	authProvider   aprov.Provider

	retryer *retry.Retryer
}

// ClientOptions wraps all optional parameters for client creation.
type ClientOptions struct {
	// ReqResLogLevel is the level at which each request dispatch/response should be logged at.
	// Default is TRACE.
	ReqResLogLevel log.Level

	// Retryer is used to overwrite the default retryer if there is a need for it. This means any retryer related
	// parameters in the request object will be ignored and only this retryer will be used as is.
	//
	// The default retryer configuration is:
	// - MaxRetries: as defined by the request attempts
	// - MinDelay: 50ms
	// - MaxDelay: 2.5s
	// - ShouldRetry: a function that retries any non-2xx status and temporary transport errors
	Retryer *retry.Retryer
}

// NewClient creates a new generic REST client.
//
// Parameters:
//   - client: client is the base http client that should be used to send/receive requests.
//   - host: host is the base URL all request endpoints are appended to.
//   - authProvider: authProvider is the authentication provider object that returns the credentials required to send a
//     request to an endpoint.
//   - logger: logger is the passed Logger struct that implements the Log method for logger the user wants to use.
//   - options: options is an object that contains optional parameters for the client.
func NewClient(client *http.Client, host string, authProvider aprov.Provider, logger log.Logger,
	options ClientOptions,
) *Client {
	return &Client{
		client:         client,
		host:           host,
		reqResLogLevel: options.ReqResLogLevel,
		authProvider:   authProvider,
		retryer:        options.Retryer,
		logger:         log.NewWrappedLogger(logger),
	}
}

// Host returns the base URL requests are dispatched to.
func (c *Client) Host() string {
	return c.host
}

// GetBaseHTTPClient returns the http.Client that the client object uses. It only returns a read only copy of the
// client, not a pointer to the actual client.
func (c *Client) GetBaseHTTPClient() http.Client {
	return *c.client
}

// Execute the given request to completion, using the provided context, reading the entire response body whilst
// honoring request level attempts/timeout. The first response with a status code in [200, 300) is returned; the body
// is not otherwise inspected, parsing it is down to the caller.
func (c *Client) Execute(ctx context.Context, request *Request) (*Response, error) {
	resp, err := c.Do(ctx, request) //nolint:bodyclose
	if err != nil {
		return nil, err
	}

	defer c.CleanupResp(resp)

	response := &Response{StatusCode: resp.StatusCode, Header: resp.Header}

	response.Body, err = ReadBody(request.Method, request.Endpoint, resp.Body, resp.ContentLength)
	if err != nil {
		return response, fmt.Errorf("failed to read response body: %w", err)
	}

	return response, nil
}

// Do converts and executes the provided request returning the raw HTTP response. In general users should prefer to use
// the 'Execute' function which handles closing resources and returns more informative errors.
//
// Each attempt is strictly sequential, attempt n+1 does not begin until attempt n's outcome is known. A non-2xx
// response triggers a retry regardless of its status code whilst a transport-level failure is only retried when it's
// classified as temporary; intermediate failed responses are drained and closed before the next attempt. A non-2xx
// response which was exempted from retrying via 'NoRetryOnStatusCodes' is still a failure and is returned as the
// corresponding typed response error.
//
// NOTE: If the returned error is nil, the Response will contain a non-nil Body which the caller is expected to close.
func (c *Client) Do(ctx context.Context, request *Request) (*http.Response, error) {
	if err := request.validate(); err != nil {
		return nil, err
	}

	retryer := c.retryer
	if retryer == nil {
		retryer = c.newDefaultRetryer(request)
	}

	payload, err := retryer.DoWithContext(
		ctx,
		func(ctx *retry.Context) (any, error) { return c.buildAndDo(ctx, request) }, //nolint:bodyclose
	)

	resp, _ := payload.(*http.Response)

	if err == nil && netutil.IsSuccess(resp.StatusCode) {
		return resp, nil
	}

	// The request failed, meaning the response won't be returned to the user, ensure it's cleaned up
	defer c.CleanupResp(resp)

	// A non-2xx status let through the retryer without error, surface it as a typed response error
	if err == nil {
		body, _ := ReadBody(request.Method, request.Endpoint, resp.Body, resp.ContentLength)
		return nil, HandleResponseError(request.Method, request.Endpoint, resp.StatusCode, body)
	}

	// Retries exhausted, convert the error into something more informative which carries the final response
	if retry.IsRetriesExhausted(err) {
		err = c.exhausted(request, resp, errors.Unwrap(err))
	}

	return nil, err
}

// exhausted builds the error returned once every attempt has failed; the final response, when there is one, is read
// into a 'Response' so the caller may inspect the status/body/headers without worrying about resource cleanup.
func (c *Client) exhausted(request *Request, resp *http.Response, inner error) error {
	exhausted := &RetriesExhaustedError{
		method:   request.Method,
		endpoint: request.Endpoint,
		attempts: request.Attempts,
		err:      inner,
	}

	if resp == nil {
		return exhausted
	}

	body, _ := ReadBody(request.Method, request.Endpoint, resp.Body, resp.ContentLength)

	exhausted.response = &Response{StatusCode: resp.StatusCode, Body: body, Header: resp.Header}
	exhausted.err = HandleResponseError(request.Method, request.Endpoint, resp.StatusCode, body)

	return exhausted
}

// newDefaultRetryer given a specific request creates a default retryer that respects the parameters in the request.
func (c *Client) newDefaultRetryer(request *Request) *retry.Retryer {
	shouldRetry := func(ctx *retry.Context, payload any, err error) bool {
		if resp, ok := payload.(*http.Response); ok && resp != nil {
			return c.shouldRetryWithResponse(ctx, request, resp)
		}

		return c.shouldRetryWithError(ctx, request, err)
	}

	logRetry := func(ctx *retry.Context, payload any, err error) {
		msg := fmt.Sprintf("(REST) (Attempt %d) (%s) Retrying request to endpoint '%s'", ctx.Attempt(),
			request.Method, request.Endpoint)

		if err != nil {
			msg = fmt.Sprintf("%s: which failed due to error: %s", msg, err)
		} else {
			msg = fmt.Sprintf("%s: which failed with status code %d", msg, payload.(*http.Response).StatusCode)
		}

		// We don't log at error level because we expect some requests to fail and be explicitly handled by the caller.
		c.logger.Warnf(msg)
	}

	cleanup := func(payload any) {
		resp, ok := payload.(*http.Response)
		if !ok || resp == nil {
			return
		}

		c.CleanupResp(resp)
	}

	retryer := retry.NewRetryer(retry.RetryerOptions{
		MaxRetries:  request.Attempts,
		ShouldRetry: shouldRetry,
		Log:         logRetry,
		Cleanup:     cleanup,
	})

	return &retryer
}

// buildAndDo is a convenience which prepares then performs the provided request.
func (c *Client) buildAndDo(ctx *retry.Context, request *Request) (*http.Response, error) {
	prep, err := c.prepare(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare request: %w", err)
	}

	resp, err := c.perform(ctx, prep, request.Timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to perform request: %w", err)
	}

	return resp, nil
}

// prepare converts the request into a raw HTTP request which can be dispatched to the remote service. Uses the same
// context meaning the request timeout is not reset by retries.
//
// NOTE: Prepared requests are not reused between attempts, a request with file payloads has its multipart form body
// rebuilt from scratch here, after rewinding each content handle to the start.
func (c *Client) prepare(ctx *retry.Context, request *Request) (*http.Request, error) {
	var (
		body        = request.Body
		contentType = request.ContentType
	)

	if len(request.Files) != 0 {
		var err error

		body, contentType, err = buildMultipartBody(request.Files)
		if err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, string(request.Method), c.host+string(request.Endpoint),
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// If we received one or more non-nil query parameters ensure that they will be postfixed to the request URL.
	if len(request.QueryParameters) != 0 {
		req.URL.RawQuery = request.QueryParameters.Encode()
	}

	// Using 'Set' overwrites an existing values set in the header, set these values first so that the settings below
	// take precedence.
	for key, value := range request.Header {
		req.Header.Set(key, value)
	}

	req = SetAuthHeaders(*req, c.host, c.authProvider)

	if contentType != "" {
		req.Header.Set("Content-Type", string(contentType))
	}

	return req, nil
}

// perform synchronously executes the provided request returning the response and any error that occurred during the
// process.
func (c *Client) perform(ctx *retry.Context, req *http.Request, timeout time.Duration) (*http.Response, error) {
	c.logger.Log(c.reqResLogLevel, "(REST) (Attempt %d) (%s) Dispatching request to '%s'", ctx.Attempt(), req.Method,
		req.URL)

	client := c.client

	// We only use the custom timeout if it is bigger than the client one. This is so that it can be overridden via
	// the request when required.
	if timeout == -1 || timeout > client.Timeout {
		client = NewHTTPClient(time.Duration(maths.Max(0, int(timeout))), client.Transport)
	}

	resp, err := client.Do(req)
	if err == nil {
		c.logger.Log(c.reqResLogLevel, "(REST) (Attempt %d) (%s) (%d) Received response from '%s'", ctx.Attempt(),
			req.Method, resp.StatusCode, req.URL)

		return resp, nil
	}

	c.logger.Errorf("(REST) (Attempt %d) (%s) Failed to perform request to '%s': %s", ctx.Attempt(), req.Method,
		req.URL, err)

	return nil, HandleRequestError(req, err)
}

// shouldRetryWithError returns a boolean indicating whether the given error is retryable.
func (c *Client) shouldRetryWithError(ctx *retry.Context, request *Request, err error) bool {
	c.logger.Warnf("(REST) (Attempt %d) (%s) Request to endpoint '%s' failed due to error: %s", ctx.Attempt(),
		request.Method, request.Endpoint, err)

	return ShouldRetry(err)
}

// shouldRetryWithResponse returns a boolean indicating whether the given request is retryable.
//
// NOTE: Any non-2xx status warrants another attempt, a 404 is treated no differently to a 503; callers which know
// better may opt out per status code via 'NoRetryOnStatusCodes'.
func (c *Client) shouldRetryWithResponse(ctx *retry.Context, request *Request, resp *http.Response) bool {
	// We've got a successful status code, don't retry
	if netutil.IsSuccess(resp.StatusCode) {
		return false
	}

	c.logger.Warnf("(REST) (Attempt %d) (%s) Request to endpoint '%s' failed with status code %d", ctx.Attempt(),
		request.Method, request.Endpoint, resp.StatusCode)

	return !slices.Contains(request.NoRetryOnStatusCodes, resp.StatusCode)
}

// CleanupResp drains the response body and ensures it's closed.
func (c *Client) CleanupResp(resp *http.Response) {
	if resp == nil {
		return
	}

	defer resp.Body.Close()

	_, err := io.Copy(io.Discard, resp.Body)
	if err == nil ||
		errors.Is(err, http.ErrBodyReadAfterClose) ||
		errutil.Contains(err, "http: read on closed response body") {
		return
	}

	c.logger.Warnf("(REST) Failed to drain response body due to unexpected error: %s", err)
}
