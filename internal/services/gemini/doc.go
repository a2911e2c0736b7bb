// Package gemini provides a REST client for the Gemini Files and
// generateContent APIs.
//
// # Entry Points
//
// New: construct a client from Config.
// Client.UploadFile: resumable upload of a local media file.
// Client.GetFile: read the processing state of an uploaded file.
// Client.Generate: ask a model about an uploaded file with a text prompt.
// Client.DeleteFile: remove an uploaded file.
//
// # Retry Behaviour
//
// Uploads, file reads and generation retry on HTTP 408/429/5xx and network
// timeouts with exponential backoff (base 2s, max 30s, up to 4 attempts by
// default), honouring Retry-After. Context cancellation aborts retries
// immediately. Deletion is attempted once.
package gemini
