// Package transcribe turns a video's audio into raw dialogue segments with a
// hosted speech model.
//
// Transcriber uploads the audio, waits for it to become usable, asks for a
// romanised transcript as a JSON array of timed phrases and always deletes
// the remote file afterwards. Model output is tolerated loosely: Markdown
// fences are stripped, a bracketed array is salvaged from surrounding prose,
// and timings may be numbers or numeric strings. Extractor chains the audio
// acquirer and the transcriber behind the pipeline's extractor contract.
package transcribe
