// Package client talks to the accountkeeper gRPC service. It keeps the
// session token returned by Login and attaches it to every later call.
package client
