// Package audio synthesizes speech for every line of a Script.
//
// Lines that already point at an existing file are skipped. A failed line is
// logged and counted, and synthesis moves on; the caller sees failures as
// lines whose AudioFilePath is still empty.
package audio
