// Package ingest sequences one title through validate, acquire, extract,
// normalize and persist, and drives batches of titles one at a time.
//
// Extractors are registered per kind ("ai", "subtitles") together with the
// normalizer that labels their output and the pause inserted after each of
// their titles in a batch. Every title ends in a Result carrying the stage
// and reason code of its first failure; a failed title never stops a batch.
// Each title gets its own scratch directory under the staging directory,
// removed as soon as extraction returns.
package ingest
