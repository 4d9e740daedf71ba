// Package constants holds shared tunables for the apigee CLI.
package constants

import (
	"time"
)

// HTTP Client Timeouts
const (
	// HTTPIdleConnTimeout - how long to keep idle connections open (90 seconds)
	HTTPIdleConnTimeout = 90 * time.Second

	// HTTPTLSHandshakeTimeout - timeout for TLS handshake (30 seconds)
	HTTPTLSHandshakeTimeout = 30 * time.Second

	// HTTPExpectContinueTimeout - timeout for 100-continue response (1 second)
	HTTPExpectContinueTimeout = 1 * time.Second

	// HTTPDialTimeout - timeout for establishing connection (30 seconds)
	HTTPDialTimeout = 30 * time.Second

	// HTTPDialKeepAlive - keep-alive period for dialer (30 seconds)
	HTTPDialKeepAlive = 30 * time.Second

	// HTTPRequestTimeout - overall timeout for a single management API call.
	// Resource files are small scripts, so a whole request fits well within this.
	HTTPRequestTimeout = 120 * time.Second
)

// Management API
const (
	// APIVersionPrefix is prepended to every management API path.
	APIVersionPrefix = "/v1"

	// DefaultResourceType is the resource file type used when none is given (JavaScript).
	DefaultResourceType = "jsc"

	// DefaultUploadSuffix selects files for upload when no name filter is given.
	DefaultUploadSuffix = ".js"
)
