// Package subtitles extracts dialogue from marketplace subtitle files.
//
// Source logs in to OpenSubtitles, searches every configured language,
// picks the most downloaded file in the preferred language and caches the
// decoded payload. Extractor writes that payload to the title's scratch
// directory, turns its SRT blocks into raw segments with Parse and drops
// uploader credits with DropCredits.
package subtitles
