// Command toksmith is the command-line entry point for the Toksmith content
// pipeline.
//
// `toksmith serve` runs the daemon (worker pool plus HTTP API). Every other
// command works directly against the shared sqlite database, so jobs queued
// from the CLI are picked up by a running daemon and project stages can be
// driven without one.
package main
