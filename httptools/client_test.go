package httptools

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skynetlabs/skyportal/aprov"
	"github.com/skynetlabs/skyportal/log"
	"github.com/skynetlabs/skyportal/retry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	username  = "username"
	password  = "password"
	userAgent = "user-agent"
)

// testClient returns the default client for testing, dispatching requests to the given host.
func testClient(host string) *Client {
	return NewClient(
		http.DefaultClient,
		host,
		&aprov.Static{Username: username, Password: password, UserAgent: userAgent},
		log.StdoutLogger{},
		ClientOptions{},
	)
}

func TestNewClient(t *testing.T) {
	type test struct {
		desc     string
		options  ClientOptions
		expected *Client
	}

	tests := []test{
		{
			desc: "CreatedClientWithDefaultOptions",
			expected: &Client{
				client:       http.DefaultClient,
				host:         "host",
				logger:       log.NewWrappedLogger(log.StdoutLogger{}),
				authProvider: &aprov.Static{Username: username, Password: password, UserAgent: userAgent},
			},
		},
		{
			desc: "CreatedClientWithCustomRetryLogLevel",
			options: ClientOptions{
				ReqResLogLevel: log.LevelInfo,
			},
			expected: &Client{
				client:         http.DefaultClient,
				host:           "host",
				reqResLogLevel: log.LevelInfo,
				logger:         log.NewWrappedLogger(log.StdoutLogger{}),
				authProvider:   &aprov.Static{Username: username, Password: password, UserAgent: userAgent},
			},
		},
		{
			desc: "CreatedClientWithCustomRetryer",
			options: ClientOptions{
				Retryer: &retry.Retryer{},
			},
			expected: &Client{
				client:       http.DefaultClient,
				host:         "host",
				logger:       log.NewWrappedLogger(log.StdoutLogger{}),
				authProvider: &aprov.Static{Username: username, Password: password, UserAgent: userAgent},
				retryer:      &retry.Retryer{},
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			client := NewClient(
				http.DefaultClient,
				"host",
				&aprov.Static{Username: username, Password: password, UserAgent: userAgent},
				log.StdoutLogger{},
				tc.options,
			)
			assert.Equal(t, tc.expected, client)
		})
	}
}

func TestClientExecute(t *testing.T) {
	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", NewTestHandler(t, http.StatusOK, []byte("body")))

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	response, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodGet,
		Endpoint: "/endpoint",
		Attempts: 1,
	})

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, []byte("body"), response.Body)
}

func TestClientExecuteSetsAuthHeaders(t *testing.T) {
	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
		user, pass, ok := request.BasicAuth()
		require.True(t, ok)
		require.Equal(t, username, user)
		require.Equal(t, password, pass)
		require.Equal(t, userAgent, request.UserAgent())

		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	_, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodGet,
		Endpoint: "/endpoint",
		Attempts: 1,
	})

	require.NoError(t, err)
}

func TestClientExecuteWithoutCredentials(t *testing.T) {
	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
		_, _, ok := request.BasicAuth()
		require.False(t, ok)

		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	client := NewClient(http.DefaultClient, server.URL, &aprov.Static{UserAgent: userAgent}, log.StdoutLogger{},
		ClientOptions{})

	_, err := client.Execute(context.Background(), &Request{Method: MethodGet, Endpoint: "/endpoint", Attempts: 1})
	require.NoError(t, err)
}

func TestClientExecuteRetriesUntilSuccessful(t *testing.T) {
	type test struct {
		name     string
		failures int
		attempts int
	}

	tests := []*test{
		{
			name:     "SucceedsFirstAttempt",
			failures: 0,
			attempts: 3,
		},
		{
			name:     "SucceedsSecondAttempt",
			failures: 1,
			attempts: 3,
		},
		{
			name:     "SucceedsFinalAttempt",
			failures: 2,
			attempts: 3,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var requests int

			handlers := make(TestHandlers)
			handlers.Add(http.MethodGet, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
				defer func() { requests++ }()

				status := http.StatusServiceUnavailable
				if requests >= test.failures {
					status = http.StatusOK
				}

				writer.WriteHeader(status)
			})

			server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
			defer server.Close()

			response, err := testClient(server.URL).Execute(context.Background(), &Request{
				Method:   MethodGet,
				Endpoint: "/endpoint",
				Attempts: test.attempts,
			})

			require.NoError(t, err)
			require.Equal(t, http.StatusOK, response.StatusCode)

			// No further requests should take place after the first successful response
			require.Equal(t, test.failures+1, requests)
		})
	}
}

func TestClientExecuteExhaustsAttempts(t *testing.T) {
	type test struct {
		name     string
		attempts int
	}

	tests := []*test{
		{
			name:     "SingleAttempt",
			attempts: 1,
		},
		{
			name:     "DefaultAttempts",
			attempts: DefaultRequestAttempts,
		},
		{
			name:     "ManyAttempts",
			attempts: 5,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var requests int

			handlers := make(TestHandlers)
			handlers.Add(
				http.MethodGet,
				"/endpoint",
				NewTestHandlerWithCounter(t, http.StatusBadGateway, []byte("final body"), &requests),
			)

			server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
			defer server.Close()

			_, err := testClient(server.URL).Execute(context.Background(), &Request{
				Method:   MethodGet,
				Endpoint: "/endpoint",
				Attempts: test.attempts,
			})

			var exhausted *RetriesExhaustedError

			require.ErrorAs(t, err, &exhausted)
			require.Equal(t, test.attempts, requests)

			// The error must carry the response from the final attempt for caller inspection
			require.NotNil(t, exhausted.Response())
			require.Equal(t, http.StatusBadGateway, exhausted.Response().StatusCode)
			require.Equal(t, []byte("final body"), exhausted.Response().Body)

			require.Contains(t, exhausted.Error(), "'GET' request to '/endpoint'")
			require.Contains(t, exhausted.Error(), "failed after")
			require.Contains(t, exhausted.Error(), "502")
		})
	}
}

func TestClientExecuteRetriesAnyNonSuccessStatusUniformly(t *testing.T) {
	for _, status := range []int{http.StatusNotFound, http.StatusInternalServerError, http.StatusServiceUnavailable} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var requests int

			handlers := make(TestHandlers)
			handlers.Add(http.MethodGet, "/endpoint", NewTestHandlerWithCounter(t, status, nil, &requests))

			server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
			defer server.Close()

			_, err := testClient(server.URL).Execute(context.Background(), &Request{
				Method:   MethodGet,
				Endpoint: "/endpoint",
				Attempts: 3,
			})

			require.True(t, IsRetriesExhausted(err))
			require.Equal(t, 3, requests)
		})
	}
}

func TestClientExecuteNoRetryOnStatusCodes(t *testing.T) {
	var requests int

	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", NewTestHandlerWithCounter(t, http.StatusNotFound, nil, &requests))

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	response, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:               MethodGet,
		Endpoint:             "/endpoint",
		Attempts:             3,
		NoRetryOnStatusCodes: []int{http.StatusNotFound},
	})

	// The exempted status must not be retried, but it's still a failure, never a successful response
	require.True(t, IsEndpointNotFound(err))
	require.Nil(t, response)
	require.Equal(t, 1, requests)
}

func TestClientExecuteInvalidAttempts(t *testing.T) {
	for _, attempts := range []int{0, -1, -42} {
		var requests int

		handlers := make(TestHandlers)
		handlers.Add(http.MethodGet, "/endpoint", NewTestHandlerWithCounter(t, http.StatusOK, nil, &requests))

		server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
		defer server.Close()

		_, err := testClient(server.URL).Execute(context.Background(), &Request{
			Method:   MethodGet,
			Endpoint: "/endpoint",
			Attempts: attempts,
		})

		var invalidAttempts *InvalidAttemptsError

		require.ErrorAs(t, err, &invalidAttempts)

		// The precondition check must fail before any request is dispatched
		require.Zero(t, requests)
	}
}

func TestClientExecuteInvalidFilePayload(t *testing.T) {
	var requests int

	handlers := make(TestHandlers)
	handlers.Add(http.MethodPost, "/endpoint", NewTestHandlerWithCounter(t, http.StatusOK, nil, &requests))

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	_, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodPost,
		Endpoint: "/endpoint",
		Attempts: 3,
		Files:    []FilePayload{{Name: "file.txt", Content: bytes.NewBuffer([]byte("not seekable"))}},
	})

	var invalidPayload *InvalidFilePayloadError

	require.ErrorAs(t, err, &invalidPayload)
	require.Contains(t, err.Error(), "*bytes.Buffer")

	require.Zero(t, requests)
}

func TestClientExecuteRebuildsMultipartFormForEachAttempt(t *testing.T) {
	var (
		requests int
		received = make(map[string][]byte)
	)

	handlers := make(TestHandlers)
	handlers.Add(http.MethodPost, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
		defer func() { requests++ }()

		status := http.StatusServiceUnavailable
		if requests >= 2 {
			status = http.StatusOK
		}

		NewTestHandlerWithMultipart(t, status, nil, received)(writer, request)
	})

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	response, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodPost,
		Endpoint: "/endpoint",
		Attempts: 3,
		Files:    []FilePayload{{Name: "file.txt", Content: bytes.NewReader([]byte("file contents"))}},
	})

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode)
	require.Equal(t, 3, requests)

	// The content handle must have been rewound for the final attempt, the full contents should have arrived
	require.Equal(t, []byte("file contents"), received["file.txt"])
}

func TestClientExecuteRetriesTemporaryTransportError(t *testing.T) {
	var (
		requests int
		handlers = make(TestHandlers)
	)

	handlers.Add(http.MethodGet, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
		requests++

		if requests == 1 {
			NewTestHandlerWithHijack(t)(writer, request)
			return
		}

		NewTestHandler(t, http.StatusOK, []byte("body"))(writer, request)
	})

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	response, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodGet,
		Endpoint: "/endpoint",
		Attempts: 3,
	})

	require.NoError(t, err)
	require.Equal(t, []byte("body"), response.Body)
	require.Equal(t, 2, requests)
}

func TestClientExecuteContextCancelled(t *testing.T) {
	var requests int

	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", NewTestHandlerWithCounter(t, http.StatusOK, nil, &requests))

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient(server.URL).Execute(ctx, &Request{Method: MethodGet, Endpoint: "/endpoint", Attempts: 3})

	require.True(t, retry.IsRetriesAborted(err))
	require.Zero(t, requests)
}

func TestClientExecuteQueryParameters(t *testing.T) {
	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", func(writer http.ResponseWriter, request *http.Request) {
		require.Equal(t, "value", request.URL.Query().Get("key"))

		writer.WriteHeader(http.StatusOK)
	})

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	_, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:          MethodGet,
		Endpoint:        "/endpoint",
		Attempts:        1,
		QueryParameters: map[string][]string{"key": {"value"}},
	})

	require.NoError(t, err)
}

func TestClientExecuteReadBodyEOF(t *testing.T) {
	handlers := make(TestHandlers)
	handlers.Add(http.MethodGet, "/endpoint", NewTestHandlerWithEOF(t))

	server := httptest.NewServer(http.HandlerFunc(handlers.Handle))
	defer server.Close()

	_, err := testClient(server.URL).Execute(context.Background(), &Request{
		Method:   MethodGet,
		Endpoint: "/endpoint",
		Attempts: 1,
	})

	var unexpectedEOB *UnexpectedEndOfBodyError

	require.ErrorAs(t, err, &unexpectedEOB)
}
