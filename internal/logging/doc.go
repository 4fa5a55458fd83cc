// Package logging builds the slog loggers used by every captioner command.
//
// Console output is one line per record with the live session id and the
// component promoted to the front; JSON output uses ts/level/msg keys.
// WarnWithContext and ErrorWithContext attach event_type, error_hint and
// impact so warnings can be filtered and acted on.
package logging
