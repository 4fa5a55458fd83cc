// Package transcript persists the running live transcript.
//
// FileStore owns a single UTF-8 text file that is atomically overwritten with
// the trimmed transcript on every save and guarded by an advisory lock so two
// live sessions never write the same file. RedisMirror copies each save into a
// Redis key and publishes it on a channel for other consumers.
package transcript
