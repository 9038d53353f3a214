// Package config loads, normalizes, and validates filmtrack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the FILMTRACK_DATA_DIR
// environment fallback. The Config type centralizes every knob the storage
// engine, lock manager, sync resolver, and CLI need so the data directory and
// its companion files are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
