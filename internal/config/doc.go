// Package config loads, normalizes, and validates reelscript configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// GEMINI_API_KEY and OPENSUBTITLES_API_KEY. The Config value is passed
// explicitly into every extractor and catalog constructor; nothing reads
// settings from the environment after Load returns.
package config
