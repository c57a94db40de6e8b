// Command chorusd runs the chorus daemon: the job store, the generation
// pipeline, and the HTTP API.
package main
