// Package render draws caption text onto RGBA frames with the Go Regular
// font. Font scale 1 corresponds to the configured pixel size.
package render
