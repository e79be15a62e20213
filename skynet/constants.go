package skynet

import (
	"github.com/skynetlabs/skyportal/httptools"
)

const (
	// DefaultPortalURL is the portal used by clients which aren't configured with one.
	DefaultPortalURL = "https://siasky.net"

	// userAgent identifies the library on every dispatched request.
	userAgent = "skyportal/1.0.0"
)

// EndpointSkyfile is the endpoint files are uploaded to, parameterized by filename.
const EndpointSkyfile httptools.Endpoint = "/skynet/skyfile/%s"
