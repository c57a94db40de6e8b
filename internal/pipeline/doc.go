// Package pipeline drives a job through its fixed stage sequence, persisting
// a checkpoint after every stage so progress survives a restart.
package pipeline
