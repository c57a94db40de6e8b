// Package jobs defines the durable karaoke job record, its lifecycle state
// machine, and the SQLite-backed store that owns the persistent copy.
//
// Records move Pending -> Processing -> {Completed | Failed}. Terminal records
// are immutable and progress never decreases; both rules are enforced by the
// transition methods on Record, which every mutation path goes through.
package jobs
