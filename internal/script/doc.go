// Package script turns scraped content into a narrated dialogue Script.
//
// BuildPrompt renders content into a deterministic prompt, a Provider returns
// raw model output, and Parse validates that output before any DialogueLine is
// built. Generator ties the three together under a per-call timeout.
package script
