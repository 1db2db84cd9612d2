// Package goquery implements platform extractors on top of CSS selectors.
//
// Each extractor prefers an embedded structured-data Product block and
// falls back to an ordered list of selector strategies per field; the
// first strategy yielding a non-empty value wins.
package goquery

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dbalogun/pricewatch"
)

// A tryFunc attempts one extraction strategy against the parsed page and
// returns "" when its selector does not match.
type tryFunc func(doc *goquery.Document) string

// firstMatch folds over strategies in order and returns the first non-empty
// result.
func firstMatch(doc *goquery.Document, strategies []tryFunc) string {
	for _, try := range strategies {
		if v := try(doc); v != "" {
			return v
		}
	}
	return ""
}

// text yields the collapsed text of the first node matching selector.
func text(selector string) tryFunc {
	return func(doc *goquery.Document) string {
		return pricewatch.CollapseWhitespace(doc.Find(selector).First().Text())
	}
}

// lastText yields the collapsed text of the last node matching selector.
// Breadcrumb trails put the most specific category last.
func lastText(selector string) tryFunc {
	return func(doc *goquery.Document) string {
		return pricewatch.CollapseWhitespace(doc.Find(selector).Last().Text())
	}
}

// attr yields the named attribute of the first node matching selector.
func attr(selector, name string) tryFunc {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return strings.TrimSpace(v)
	}
}

// parseDoc parses HTML into a goquery document.
func parseDoc(html string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, pricewatch.Errorf(pricewatch.EINVALID, "failed to parse HTML: %v", err)
	}
	return doc, nil
}

var (
	ratingOutOfPattern   = regexp.MustCompile(`([0-9]+(?:[.,][0-9]+)?)\s*(?:out of\s*5|/\s*5)`)
	ratingLeadingPattern = regexp.MustCompile(`^([0-9]+(?:[.,][0-9]+)?)`)
)

// parseRating reads a 0-5 star rating from forms like "4.3 out of 5
// stars", "4.3/5" or a bare leading number. Returns nil when the text
// encodes no usable rating.
func parseRating(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	m := ratingOutOfPattern.FindStringSubmatch(text)
	if m == nil {
		m = ratingLeadingPattern.FindStringSubmatch(text)
	}
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil || v < 0 || v > 5 {
		return nil
	}
	return &v
}

// parseRatingCount reads a digits-only count from text like "1,234
// ratings". Absent or unparsable counts read as 0.
func parseRatingCount(text string) int {
	var b strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.Atoi(b.String())
	if err != nil {
		return 0
	}
	return n
}

// resolveImageURL makes an extracted image reference absolute against the
// platform's canonical host.
func resolveImageURL(raw string, platform pricewatch.Platform) string {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return ""
	case strings.HasPrefix(raw, "//"):
		return "https:" + raw
	case strings.HasPrefix(raw, "/"):
		return "https://" + platform.Host() + raw
	default:
		return raw
	}
}

// advisoryCurrency resolves the extractor's currency hint: a symbol or code
// literal in the price text, then the page host, then the platform default.
// The mapper later re-resolves currency authoritatively.
func advisoryCurrency(priceText, pageURL string, platform pricewatch.Platform) string {
	if code, ok := pricewatch.ExtractCurrency(priceText); ok {
		return code
	}
	if u, err := url.Parse(pageURL); err == nil {
		if code, ok := pricewatch.CurrencyForHost(u.Hostname()); ok {
			return code
		}
	}
	return platform.DefaultCurrency()
}
