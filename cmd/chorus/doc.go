// Command chorus is the CLI client for a running chorusd daemon: submitting
// jobs, polling their progress, and downloading finished videos.
package main
