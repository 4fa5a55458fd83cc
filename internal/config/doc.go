// Package config loads, normalizes, and validates captioner configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as OPENAI_API_KEY. The
// Config type gathers every knob the burn pipeline, the live controller, and
// the CLI need so they are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
