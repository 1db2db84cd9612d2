package goquery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.Extractor = (*JumiaExtractor)(nil)

// JumiaExtractor extracts product fields from Jumia product pages. Jumia
// markup leans on utility classes (-fs20, -b, -prxs) that shift between
// layout revisions, so every field carries several fallbacks.
type JumiaExtractor struct{}

// NewJumiaExtractor creates a new JumiaExtractor.
func NewJumiaExtractor() *JumiaExtractor {
	return &JumiaExtractor{}
}

var jumiaTitleStrategies = []tryFunc{
	text("h1.-fs20"),
	text("section.col12 h1"),
	text("div.-pvs h1"),
	text("h1.title"),
	attr(`meta[name="twitter:title"]`, "content"),
}

var jumiaPriceStrategies = []tryFunc{
	text("span.-b.-ubpt.-tal.-fs24"),
	text("span.-b.-ltr.-tal.-fs20"),
	text("div.-hr.-mtxs.-pvs span.-b"),
	text("span.-b.-fs24"),
	text("span.price"),
	attr(`meta[property="product:price:amount"]`, "content"),
}

var jumiaRatingStrategies = []tryFunc{
	text("div.stars._m._al"),
	text("div.stars"),
	jumiaStarsClassRating,
}

var jumiaRatingCountStrategies = []tryFunc{
	text(`a[href="#reviews"]`),
	text("p.-fs16.-pts"),
	text("div.-df.-i-ctr.-pbs a"),
}

var jumiaImageStrategies = []tryFunc{
	attr("img.-fw.-fh", "data-src"),
	attr("img.-fw.-fh", "src"),
	attr("#imgs img", "data-src"),
	attr("#imgs img", "src"),
	attr(`meta[property="og:image"]`, "content"),
}

var jumiaCategoryStrategies = []tryFunc{
	lastText("div.brcbs a.cbs"),
	lastText("div.brcbs a"),
	lastText("nav.brcbs a"),
}

// Extract parses product fields from a Jumia page. Returns EEXTRACTION
// when neither structured data nor any selector yields a title or price.
func (e *JumiaExtractor) Extract(ctx context.Context, html string, pageURL string) (*pricewatch.RawExtraction, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	raw := &pricewatch.RawExtraction{}
	if ld := findProductLD(doc); ld != nil {
		applyLD(raw, ld)
	}

	if raw.Title == "" {
		raw.Title = firstMatch(doc, jumiaTitleStrategies)
	}
	if raw.Title == "" {
		return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "jumia: no title found at %s", pageURL)
	}

	if raw.Price.Amount <= 0 {
		priceText := firstMatch(doc, jumiaPriceStrategies)
		if priceText == "" {
			return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "jumia: no price found at %s", pageURL)
		}
		amount, err := pricewatch.ParsePrice(priceText)
		if err != nil {
			return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "jumia: unparsable price %q at %s", priceText, pageURL)
		}
		raw.Price.Amount = amount
		if raw.Price.Currency == "" {
			raw.Price.Currency = advisoryCurrency(priceText, pageURL, pricewatch.Jumia)
		}
	}
	if raw.Price.Currency == "" {
		raw.Price.Currency = advisoryCurrency("", pageURL, pricewatch.Jumia)
	}

	if raw.Rating == nil {
		raw.Rating = parseRating(firstMatch(doc, jumiaRatingStrategies))
	}
	if raw.RatingCount == 0 {
		raw.RatingCount = parseRatingCount(firstMatch(doc, jumiaRatingCountStrategies))
	}
	if raw.ImageURL == "" {
		raw.ImageURL = firstMatch(doc, jumiaImageStrategies)
	}
	raw.ImageURL = resolveImageURL(raw.ImageURL, pricewatch.Jumia)
	if raw.Category == "" {
		raw.Category = firstMatch(doc, jumiaCategoryStrategies)
	}
	if raw.PlatformID == "" {
		raw.PlatformID = jumiaSKU(pageURL, doc)
	}

	return raw, nil
}

var jumiaStarsClassPattern = regexp.MustCompile(`(?:^|\s)_s([0-9](?:[._][0-9])?)(?:\s|$)`)

// jumiaStarsClassRating reads Jumia's class-encoded star widgets, where
// "stars _s4" carries the star count in the class name.
func jumiaStarsClassRating(doc *goquery.Document) string {
	cls, ok := doc.Find("div.stars").First().Attr("class")
	if !ok {
		return ""
	}
	m := jumiaStarsClassPattern.FindStringSubmatch(cls)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], "_", ".")
}

var jumiaSKUPattern = regexp.MustCompile(`-([A-Za-z0-9]{6,})\.html$`)

// jumiaSKU finds the product's SKU: the code before ".html" in the URL
// path, then the sku query parameter, then DOM attributes. Absent is not
// an error.
func jumiaSKU(rawURL string, doc *goquery.Document) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if m := jumiaSKUPattern.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
		if sku := u.Query().Get("sku"); sku != "" {
			return sku
		}
	}
	if v, ok := doc.Find("[data-sku]").First().Attr("data-sku"); ok && v != "" {
		return v
	}
	return ""
}
