// Package liveapi exposes a running live captioning controller over HTTP.
//
// Routes:
//
//	GET  /api/status      controller snapshot
//	GET  /api/transcript  current text
//	GET  /api/events      server-sent events, one "text" event per update
//	GET  /api/sessions    recent journal entries
//	POST /api/live/start  start a session
//	POST /api/live/stop   stop the running session
//
// Server implements live.Observer; subscribe it to the controller to feed
// the event stream.
package liveapi
