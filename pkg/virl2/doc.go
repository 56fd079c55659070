// Package virl2 provides types, interfaces, and helpers for working with the
// VIRL2 network-simulation platform REST API.
//
// # Overview
//
// The virl2 package defines the domain types (Lab, Topology, Node, Link), the
// client configuration, and the error kinds raised by the library. A concrete
// implementation of the Client interface is provided by the virl2client
// package, which wires configuration resolution, transport, and
// authentication. Most consumers should import virl2client to construct a
// client and then interact with the interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/virl2-client/pkg/virl2"
//	  "github.com/fivetwenty-io/virl2-client/pkg/virl2client"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := virl2client.New(ctx, &virl2.Config{
//	    URL:      "https://virl2.example.com",
//	    Username: "virl2",
//	    Password: "secret",
//	  })
//	  if err != nil { log.Fatal(err) }
//
//	  lab, err := cli.ImportLabFromPath(ctx, "topology.ng")
//	  if err != nil { log.Fatal(err) }
//	  _ = lab
//	}
//
// Construction falls back to the VIRL2_URL, VIRL2_USER, VIRL2_PASS, and
// CA_BUNDLE environment variables for any field not set explicitly; explicit
// arguments always win.
//
// # Errors
//
// Construction-time failures (unresolvable credentials, malformed URLs, and
// authentication failures when Config.RaiseForAuthFailure is set) are
// reported as *InitializationError. Failures of individual API calls are
// reported as *APIError carrying the HTTP status and response body. Helpers
// such as IsUnauthorized and IsNotFound make it easy to branch on common
// cases.
//
// # Sessions
//
// The client holds a bearer token obtained from the authenticate endpoint and
// transparently re-authenticates exactly once when a request comes back 401.
// A second 401 after re-authentication is surfaced to the caller. A client
// instance is meant to be used from a single goroutine.
package virl2
