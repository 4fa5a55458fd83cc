// Package preflight checks the directories and services captioner depends
// on before a run and for the doctor command.
//
// Checks are gated by configuration: the Redis mirror is only checked when
// enabled, the OpenAI key only when that engine is selected.
package preflight
