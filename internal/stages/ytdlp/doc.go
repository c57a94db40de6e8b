// Package ytdlp fetches source media by shelling out to yt-dlp, extracting a
// WAV audio asset into the job's work directory.
package ytdlp
