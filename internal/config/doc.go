// Package config loads, normalizes, and validates Toksmith configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads an optional .env file, and honours
// environment fallbacks such as REDDIT_CLIENT_ID or HUME_API_KEY. The Config
// type centralizes every knob the daemon and CLI need so provider clients can
// be constructed once at process start.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
