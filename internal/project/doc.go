// Package project drives a video project through its stages.
//
// A project is created PENDING and scraped synchronously to SCRAPED, or
// created directly at SCRAPED from user text. Confirm generates the dialogue
// script and GenerateAudio synthesizes it. Status only moves forward; a failed
// script or audio stage leaves the status where it was and records last_error,
// which the next successful stage clears. Only a failed initial scrape moves a
// project to FAILED, because nothing can follow it.
package project
