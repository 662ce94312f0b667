// Package api provides the provisioning gateway HTTP server.
//
// Every request under the endpoint base is authenticated with HTTP Basic
// auth, checked against the caller's permission patterns and routed to the
// central server that owns the object, or to all of them for lists.
package api
