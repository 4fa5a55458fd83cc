// Package audio captures microphone input through ffmpeg as mono signed
// 16-bit PCM for the live recognizer.
package audio
