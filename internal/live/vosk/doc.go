// Package vosk connects live sessions to a vosk-server instance over its
// websocket protocol: a JSON config message, binary PCM chunks answered by
// one JSON result each, and an eof message on close.
package vosk
