// Package logging configures structured slog output for chorus and provides
// shared attribute helpers plus context-derived log fields.
package logging
