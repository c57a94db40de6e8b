// Package lyrics acquires a transcript for a track. It tries an online lyric
// lookup first and falls back to transcribing the isolated vocal stem.
// Acquisition never fails a job: an empty transcript is a valid outcome.
package lyrics
