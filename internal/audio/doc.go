// Package audio downloads the audio track of a video into a scratch
// directory with yt-dlp.
//
// Acquirer first asks yt-dlp to extract an MP3, and when that exits non-zero
// retries once with a direct best-audio download that needs no ffmpeg. Each
// attempt is bounded by its own timeout. Failures carry services markers so
// the orchestrator can tell a timeout from a missing binary or an empty
// download.
package audio
