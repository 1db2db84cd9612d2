package goquery

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dbalogun/pricewatch"
)

var _ pricewatch.Extractor = (*AmazonExtractor)(nil)

// AmazonExtractor extracts product fields from Amazon product pages.
// Strategy lists run in order: earlier entries target the current desktop
// layout, later ones cover legacy and mobile variants.
type AmazonExtractor struct{}

// NewAmazonExtractor creates a new AmazonExtractor.
func NewAmazonExtractor() *AmazonExtractor {
	return &AmazonExtractor{}
}

var amazonTitleStrategies = []tryFunc{
	text("#productTitle"),
	text("#btAsinTitle"),
	text("h1#title span"),
	text("h1.product-title-word-break"),
	attr(`meta[name="title"]`, "content"),
}

var amazonPriceStrategies = []tryFunc{
	text("#corePrice_feature_div span.a-offscreen"),
	text("#corePriceDisplay_desktop_feature_div span.a-offscreen"),
	text("span.a-price span.a-offscreen"),
	amazonWholeFraction,
	text("#priceblock_ourprice"),
	text("#priceblock_dealprice"),
	text("#priceblock_saleprice"),
	text("#price_inside_buybox"),
}

var amazonRatingStrategies = []tryFunc{
	attr("#acrPopover", "title"),
	text(`span[data-hook="rating-out-of-text"]`),
	text("i.a-icon-star span.a-icon-alt"),
	text("i.a-icon-star-small span.a-icon-alt"),
}

var amazonRatingCountStrategies = []tryFunc{
	text("#acrCustomerReviewText"),
	text(`span[data-hook="total-review-count"]`),
	text("#ratings-summary a span"),
}

var amazonImageStrategies = []tryFunc{
	attr("#landingImage", "src"),
	attr("#landingImage", "data-old-hires"),
	attr("#imgBlkFront", "src"),
	attr("#main-image", "src"),
	attr("#imgTagWrapperId img", "src"),
}

var amazonCategoryStrategies = []tryFunc{
	lastText("#wayfinding-breadcrumbs_feature_div ul li:not(.a-breadcrumb-divider) a"),
	lastText("#wayfinding-breadcrumbs_container a"),
	lastText("ul.a-unordered-list.a-horizontal a.a-link-normal"),
}

// Extract parses product fields from an Amazon page. Returns EEXTRACTION
// when neither structured data nor any selector yields a title or price.
func (e *AmazonExtractor) Extract(ctx context.Context, html string, pageURL string) (*pricewatch.RawExtraction, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, err
	}

	raw := &pricewatch.RawExtraction{}
	if ld := findProductLD(doc); ld != nil {
		applyLD(raw, ld)
	}

	if raw.Title == "" {
		raw.Title = firstMatch(doc, amazonTitleStrategies)
	}
	if raw.Title == "" {
		return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "amazon: no title found at %s", pageURL)
	}

	if raw.Price.Amount <= 0 {
		priceText := firstMatch(doc, amazonPriceStrategies)
		if priceText == "" {
			return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "amazon: no price found at %s", pageURL)
		}
		amount, err := pricewatch.ParsePrice(priceText)
		if err != nil {
			return nil, pricewatch.Errorf(pricewatch.EEXTRACTION, "amazon: unparsable price %q at %s", priceText, pageURL)
		}
		raw.Price.Amount = amount
		if raw.Price.Currency == "" {
			raw.Price.Currency = advisoryCurrency(priceText, pageURL, pricewatch.Amazon)
		}
	}
	if raw.Price.Currency == "" {
		raw.Price.Currency = advisoryCurrency("", pageURL, pricewatch.Amazon)
	}

	if raw.Rating == nil {
		raw.Rating = parseRating(firstMatch(doc, amazonRatingStrategies))
	}
	if raw.RatingCount == 0 {
		raw.RatingCount = parseRatingCount(firstMatch(doc, amazonRatingCountStrategies))
	}
	if raw.ImageURL == "" {
		raw.ImageURL = firstMatch(doc, amazonImageStrategies)
	}
	raw.ImageURL = resolveImageURL(raw.ImageURL, pricewatch.Amazon)
	if raw.Category == "" {
		raw.Category = firstMatch(doc, amazonCategoryStrategies)
	}
	if raw.PlatformID == "" {
		raw.PlatformID = amazonASIN(pageURL, doc)
	}

	return raw, nil
}

// amazonWholeFraction joins Amazon's split price markup, where the integer
// and fraction parts live in separate spans.
func amazonWholeFraction(doc *goquery.Document) string {
	whole := pricewatch.CollapseWhitespace(doc.Find("span.a-price-whole").First().Text())
	if whole == "" {
		return ""
	}
	whole = strings.TrimSuffix(whole, ".")
	frac := pricewatch.CollapseWhitespace(doc.Find("span.a-price-fraction").First().Text())
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

var (
	asinPathPattern = regexp.MustCompile(`/(?:dp|gp/product|gp/aw/d|product)/([A-Z0-9]{10})(?:[/?]|$)`)
	asinPattern     = regexp.MustCompile(`^[A-Z0-9]{10}$`)
)

// amazonASIN finds the product's ASIN: in the URL path, then the asin
// query parameter, then DOM attributes. Absent is not an error.
func amazonASIN(rawURL string, doc *goquery.Document) string {
	u, err := url.Parse(rawURL)
	if err == nil {
		if m := asinPathPattern.FindStringSubmatch(u.Path); m != nil {
			return m[1]
		}
		if asin := u.Query().Get("asin"); asinPattern.MatchString(asin) {
			return asin
		}
	}
	if v, ok := doc.Find("input#ASIN").Attr("value"); ok && asinPattern.MatchString(v) {
		return v
	}
	if v, ok := doc.Find("[data-asin]").First().Attr("data-asin"); ok && asinPattern.MatchString(v) {
		return v
	}
	return ""
}
