package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits for the transport layer. These cover transient failures only;
// the 401 re-authentication policy is fixed at one attempt.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// API path constants.
const (
	// APIPrefix is the version path segment every base URL ends with.
	APIPrefix = "api/v0/"

	// DefaultControllerHost is the URL fallback when neither an explicit URL
	// nor VIRL2_URL is given.
	DefaultControllerHost = "virl2"
)

// Environment variable names used during configuration resolution.
const (
	EnvURL      = "VIRL2_URL"
	EnvUsername = "VIRL2_USER"
	EnvPassword = "VIRL2_PASS"
	EnvCABundle = "CA_BUNDLE"
)
