// Package captions turns transcript segments into frame-timed caption cues
// and answers the per-frame questions needed to burn them in: which cue is
// active and where its text goes.
//
// Segmenter packs words into lines that fit the frame width and splits each
// segment's frame span across its lines by character share. ActiveCue and
// CueIndex resolve the cue for a frame with identical results; the index is
// meant for long videos. Layout computes centered, width-scaled placement.
// Everything here is pure and safe for concurrent use once built.
package captions
