// Package render produces the final karaoke video with ffmpeg, burning the
// transcript in as subtitles over the instrumental mix.
package render
