// Package opensubtitles is a thin client for the OpenSubtitles REST API v1:
// login, per-language search, and two-step download with gzip detection. It
// also provides the on-disk payload cache and the retry helpers callers use to
// respect the service's rate limits.
package opensubtitles
