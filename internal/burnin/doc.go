// Package burnin renders captions into a video.
//
// Run probes the source, extracts and transcribes its audio, segments the
// transcript into frame-timed cues, then decodes every frame, draws the
// active cue, and encodes the result with the source audio. Input and
// transcription failures abort before any output is written. Frames are
// annotated in parallel batches and written strictly in order.
package burnin
