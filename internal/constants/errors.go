package constants

import "errors"

// CLI validation errors.
var (
	ErrLabIDRequired        = errors.New("lab ID is required")
	ErrTopologyPathRequired = errors.New("topology file path is required")
	ErrUsernameRequired     = errors.New("username is required")
	ErrNotRegularFile       = errors.New("path is not a regular file")
)
