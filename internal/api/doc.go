// Package api exposes job operations as a transport-neutral facade with
// JSON-friendly DTOs, shared by the HTTP server and the CLI client.
package api
