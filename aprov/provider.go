package aprov

// Provider is an interface which allows the credentials used when authenticating against a remote service to be
// supplied/updated dynamically at runtime.
type Provider interface {
	// GetCredentials returns the username/password which should be used to authenticate against the given host.
	//
	// NOTE: Either or both of the returned credentials may be empty, in which case no authentication takes place.
	GetCredentials(host string) (string, string)

	// GetUserAgent returns the 'User-Agent' which should be used for all dispatched requests.
	GetUserAgent() string
}
