// Package llm provides an OpenRouter chat client used as a script provider.
//
// Client implements script.Provider: it sends the system and user prompts
// with max_tokens and temperature, asks for a JSON object response, and
// returns the first non-empty message content.
//
// # Retry Behaviour
//
// Requests are attempted once by default. When llm.retry_attempts is raised,
// the client retries HTTP 408/429/5xx errors, empty completions, and network
// timeouts with exponential backoff (base 1s, max 10s). Context cancellation
// aborts retries immediately.
//
// HealthCheck issues a tiny JSON ping and is used by the doctor command.
package llm
