package skynet

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/skynetlabs/skyportal/aprov"
	"github.com/skynetlabs/skyportal/httptools"
	"github.com/skynetlabs/skyportal/log"
	"github.com/skynetlabs/skyportal/ratelimit"
	"github.com/skynetlabs/skyportal/syncutil"

	"golang.org/x/time/rate"
)

// Client is a Skynet client which uploads files to the network through an HTTP portal gateway.
//
// The underlying session is constructed lazily upon first use and shared between all calls made through one client
// instance; concurrent first use results in exactly one session being created.
type Client struct {
	portalURL      string
	authProvider   aprov.Provider
	logger         log.Logger
	reqResLogLevel log.Level
	timeout        time.Duration

	barrier syncutil.InitBarrier
	client  *httptools.Client
}

// ClientOptions wraps the optional parameters for client creation; they're immutable for the client's lifetime.
type ClientOptions struct {
	// APIKey is a credential which, when supplied, is sent as HTTP basic authentication with every request issued by
	// this client.
	APIKey string

	// PortalURL overrides the default portal all request paths, and all derived skylink URLs, are built from.
	PortalURL string

	// Logger is the logger used by the client, when not supplied logging is skipped.
	Logger log.Logger

	// ReqResLogLevel is the level at which each request dispatch/response should be logged at.
	// Default is TRACE.
	ReqResLogLevel log.Level

	// Timeout is the client level timeout for a single attempt.
	// Default is one minute.
	Timeout time.Duration
}

// NewClient creates a new Skynet client using the given options.
func NewClient(options ClientOptions) *Client {
	portalURL := options.PortalURL
	if portalURL == "" {
		portalURL = DefaultPortalURL
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = httptools.DefaultClientTimeout
	}

	return &Client{
		portalURL:      strings.TrimSuffix(portalURL, "/"),
		authProvider:   &aprov.Static{Username: options.APIKey, UserAgent: userAgent},
		logger:         options.Logger,
		reqResLogLevel: options.ReqResLogLevel,
		timeout:        timeout,
		barrier:        syncutil.NewInitBarrier(),
	}
}

// PortalURL returns the base URL of the portal this client dispatches requests to.
func (c *Client) PortalURL() string {
	return c.portalURL
}

// session returns the underlying REST client, lazily constructing it upon first use.
func (c *Client) session() *httptools.Client {
	if c.barrier.Wait() {
		c.client = httptools.NewClient(
			httptools.NewHTTPClient(c.timeout, http.DefaultTransport),
			c.portalURL,
			c.authProvider,
			c.logger,
			httptools.ClientOptions{ReqResLogLevel: c.reqResLogLevel},
		)

		c.barrier.Success()
	}

	return c.client
}

// Close releases the underlying session's idle connections. The client remains usable, a new session is transparently
// constructed upon next use.
//
// NOTE: Close must not be called concurrently with in-flight uploads.
func (c *Client) Close() {
	if c.barrier.Wait() {
		// The session was never constructed, return the token so a future use may construct it
		c.barrier.Failed()
		return
	}

	client := c.client.GetBaseHTTPClient()
	client.CloseIdleConnections()

	c.client = nil
	c.barrier = syncutil.NewInitBarrier()
}

// UploadOptions wraps the optional parameters for a single upload.
type UploadOptions struct {
	// Attempts is the maximum number of times the upload is dispatched before giving up.
	// Default is 3.
	//
	// NOTE: A retried upload repeats the full request, payload included, so retrying is not side-effect free from the
	// portal's perspective.
	Attempts int

	// Timeout bounds a single attempt, when unset the client level timeout applies.
	Timeout time.Duration

	// RateLimit throttles the number of payload bytes read per second when supplied.
	RateLimit *rate.Limiter
}

// Upload uploads the given file to the portal, returning a response referencing the uploaded content.
func (c *Client) Upload(ctx context.Context, file File) (*UploadResponse, error) {
	return c.UploadWithOptions(ctx, file, UploadOptions{})
}

// UploadWithOptions uploads the given file to the portal honoring the provided options.
//
// The upload is dispatched as a 'POST' to the skyfile endpoint with the file attached as a single multipart form
// field keyed by its filename; the first response with a status code in [200, 300) is parsed into an
// 'UploadResponse'.
func (c *Client) UploadWithOptions(ctx context.Context, file File, options UploadOptions) (*UploadResponse, error) {
	attempts := options.Attempts
	if attempts == 0 {
		attempts = httptools.DefaultRequestAttempts
	}

	content := file.Content
	if options.RateLimit != nil {
		if seeker, ok := content.(io.ReadSeeker); ok {
			content = ratelimit.NewRateLimitedReadSeeker(ctx, seeker, options.RateLimit)
		}
	}

	request := &httptools.Request{
		Method:   httptools.MethodPost,
		Endpoint: EndpointSkyfile.Format(file.Name),
		Files:    []httptools.FilePayload{{Name: file.Name, Content: content}},
		Attempts: attempts,
		Timeout:  options.Timeout,
	}

	response, err := c.session().Execute(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file '%s': %w", file.Name, err)
	}

	return parseUploadResponse(c.portalURL, response.Body)
}

// UploadReader is a convenience which uploads the given payload under the given filename.
func (c *Client) UploadReader(ctx context.Context, name string, reader io.ReadSeeker) (*UploadResponse, error) {
	return c.Upload(ctx, NewFile(name, reader))
}

// UploadBytes is a convenience which uploads the given in-memory payload under the given filename.
func (c *Client) UploadBytes(ctx context.Context, name string, data []byte) (*UploadResponse, error) {
	return c.UploadReader(ctx, name, bytes.NewReader(data))
}
