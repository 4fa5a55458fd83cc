// Package services defines shared error and context helpers consumed by the
// caption pipeline and the live controller.
//
// Error markers classify failures (bad input, failed transcription, missing
// tools) so the CLI can map them to exit codes, and the context helpers stamp
// session IDs, stage names, and correlation identifiers for logging.
package services
