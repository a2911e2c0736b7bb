package transcribe

// Prompt asks for a romanised, code-switch-preserving transcript as a bare
// JSON array of timed phrases.
const Prompt = `You are transcribing Tamil movie dialogue audio.

TASK: Transcribe every spoken word in this audio as Tanglish.

TANGLISH RULES:
- Romanize Tamil words phonetically as they sound (e.g., "naan" not "nan", "paaru" not "paru")
- Keep English words exactly as spoken in English
- Preserve code-switching naturally (Tamil to English mid-sentence is common)
- Include character names as spoken
- Capture emotional tone words (ayyo, da, di, machan, dei, ba, etc.)
- Skip music, background noise, non-speech
- One entry per natural phrase/sentence (2-10 seconds each)

OUTPUT FORMAT (JSON array only, no markdown):
[
  {"start_seconds": 0.0, "end_seconds": 3.5, "text": "naan romba tired-a irukken da"},
  {"start_seconds": 3.5, "end_seconds": 7.0, "text": "enna pannuvom sollu machan"}
]

IMPORTANT:
- Output ONLY the JSON array, nothing else
- If you cannot transcribe clearly, skip that segment
- Minimum 3 characters per text entry
`
