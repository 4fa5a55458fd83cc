// Command captioner burns timed captions into videos and runs live
// microphone subtitles.
//
//	captioner burn input.mp4 --output captioned.mp4 --srt captions.srt
//	captioner live --language hindi --serve
//	captioner sessions
//	captioner doctor
//	captioner config init
package main
