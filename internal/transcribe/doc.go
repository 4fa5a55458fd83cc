// Package transcribe turns an extracted audio file into timed caption
// segments.
//
// Two engines are provided: WhisperX runs the whisperx CLI through uvx and
// reads its JSON output, and OpenAI calls a Whisper-compatible transcription
// API. New selects the engine named in the configuration.
package transcribe
