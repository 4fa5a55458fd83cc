// Package media wraps ffprobe and ffmpeg for the burn pipeline.
//
// Probe reads the video geometry and frame rate, ExtractAudio produces the
// 16 kHz mono WAV fed to transcription, and FrameReader/FrameWriter stream
// raw RGBA frames through ffmpeg pipes. The writer re-attaches the audio of
// the source video when muxing the output.
//
// Tool exposes the same operations behind configurable binary paths so the
// burn pipeline can depend on an interface and swap in fakes.
package media
