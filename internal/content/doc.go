// Package content defines the canonical shape of scraped material.
//
// Every source adapter produces a ScrapedContent; projects and jobs persist it
// as JSON and the script generator reads it back. The package also owns the
// direct-text path (FromScript) and the generic comment-tree walker shared by
// adapters.
package content
