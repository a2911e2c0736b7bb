// Package catalog persists titles and their canonical dialogue segments.
//
// Replace swaps a title's segment set inside one transaction: the new rows
// are written under the next generation number, the title's generation
// marker is advanced, and rows from older generations are deleted before
// commit. Readers always see exactly one extraction pass per title.
//
// Two backends are provided. SQLite (modernc.org/sqlite) is the default
// single-file store; Postgres goes through a pgx connection pool. Open picks
// one from the catalog section of the configuration.
package catalog
