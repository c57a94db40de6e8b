// Package daemon runs the chorus background service: single-instance
// locking, interrupted-job recovery, the cleanup sweeper, and the HTTP API.
package daemon
