package pricewatch

import (
	"context"
	"strings"
)

// UserAgents is the fixed rotation pool fetchers draw from. The attempt
// number selects the entry, so retries of the same URL present as different
// browsers.
var UserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (Version/17.4 Safari/605.1.15)",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// UserAgentFor returns the user agent to present on the given zero-based
// attempt.
func UserAgentFor(attempt int) string {
	return UserAgents[attempt%len(UserAgents)]
}

// blockSignatures mark response bodies that carried an anti-bot challenge
// instead of content. Matching is case-insensitive.
var blockSignatures = []string{
	"captcha",
	"enter the characters you see below",
	"access denied",
	"robot check",
	"are you a robot",
	"cf-browser-verification",
	"cf-challenge",
	"checking your browser",
	"pardon our interruption",
}

// MatchBlockSignature returns the first block signature found in body, or ""
// when the body looks like real content.
func MatchBlockSignature(body string) string {
	lower := strings.ToLower(body)
	for _, sig := range blockSignatures {
		if strings.Contains(lower, sig) {
			return sig
		}
	}
	return ""
}

// Fetcher retrieves the raw HTML of a product page.
type Fetcher interface {
	// Fetch returns the HTML of the page at url. The zero-based attempt
	// number lets implementations rotate the user agent and proxy across
	// retries of the same URL.
	//
	// Returns EBLOCKED when the response body matches a block or challenge
	// signature, ENOTFOUND when the page does not exist, EUNAVAILABLE for
	// server errors and network failures, and EINTERNAL for other
	// unexpected statuses.
	Fetch(ctx context.Context, url string, platform Platform, attempt int) (string, error)

	// Close releases resources held by the fetcher.
	Close() error
}

// HostLimiter throttles outbound requests per host.
type HostLimiter interface {
	// Wait blocks until a request to host may proceed, or returns an error
	// when ctx is done first.
	Wait(ctx context.Context, host string) error
}
