// Package live runs streaming captioning sessions.
//
// A Controller owns at most one session at a time. Start builds a recognizer
// for the selected language from the Registry and launches a worker that
// reads fixed-size audio chunks, feeds them to the recognizer, and folds the
// results into the session text. Final results are corrected, appended,
// persisted to every TranscriptSink, and journaled; partial results are only
// shown to observers. Stop cancels the session and waits a bounded time for
// the worker before returning the controller to Idle.
package live
