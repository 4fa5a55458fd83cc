// Package language names the caption languages the recognizer and text
// corrector understand and maps them to ISO codes and x/text tags.
//
// Only English and Hindi are supported. Parse accepts ISO 639-1, ISO 639-2,
// and word forms so config files and CLI flags can use whichever is handy.
package language
