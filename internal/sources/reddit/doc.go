// Package reddit adapts Reddit threads into ScrapedContent using go-reddit.
package reddit
