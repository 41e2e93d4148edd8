// Package stackoverflow scrapes StackOverflow question pages into
// ScrapedContent. Post bodies are converted to Markdown so code blocks survive
// into the script prompt.
package stackoverflow
