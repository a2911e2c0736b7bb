// Package textutil provides text normalization helpers shared by the
// extractors and the catalog.
//
// The primary use cases are:
//   - Normalizing dialogue lines to NFC with collapsed whitespace
//   - Deriving URL-safe slugs for catalog titles
//   - Sanitizing filenames for scratch directories
package textutil
