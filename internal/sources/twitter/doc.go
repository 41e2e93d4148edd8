// Package twitter adapts Twitter/X threads into ScrapedContent via API v2.
//
// Requests authenticate with a bearer token, either configured directly or
// minted through the OAuth2 client-credentials grant. The root tweet is read
// with author expansion and replies come from a recent-search query on the
// conversation id.
package twitter
