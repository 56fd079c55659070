// Package virl2client provides the main entry point for creating VIRL2 API
// clients. New resolves configuration from explicit arguments, the VIRL2_URL,
// VIRL2_USER, VIRL2_PASS, and CA_BUNDLE environment variables, and built-in
// defaults, in that order, normalizes the controller URL to the api/v0 base,
// and performs the initial authentication.
package virl2client
