// Package stages defines the contracts between the pipeline executor and the
// external stage collaborators (fetch, separate, lyrics, render), plus the
// failure taxonomy the executor records onto failed jobs.
package stages
