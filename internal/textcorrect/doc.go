// Package textcorrect post-processes recognizer output before it is shown or
// persisted: sentence capitalization, a trailing terminal mark, and a small
// table of whole-word token fixes per language.
//
// Correct is pure and safe for concurrent use.
package textcorrect
