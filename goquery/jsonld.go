package goquery

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dbalogun/pricewatch"
)

// productLD is the subset of a schema.org Product block this package reads.
type productLD struct {
	Title       string
	Price       float64
	Currency    string
	Image       string
	Rating      *float64
	RatingCount int
	SKU         string
	Category    string
}

// findProductLD scans script[type="application/ld+json"] blocks for a
// Product entity. Single objects, top-level arrays and @graph containers
// are all handled; the first Product found wins. Returns nil when the page
// embeds no Product block.
func findProductLD(doc *goquery.Document) *productLD {
	var found *productLD
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		var data any
		if err := json.Unmarshal([]byte(raw), &data); err != nil {
			// Skip invalid JSON, keep scanning other scripts.
			return true
		}
		for _, obj := range ldObjects(data) {
			if p := parseProductLD(obj); p != nil {
				found = p
				return false
			}
		}
		return true
	})
	return found
}

// applyLD copies every field the Product block supplies onto raw. Selector
// fallbacks later fill only what is still missing.
func applyLD(raw *pricewatch.RawExtraction, ld *productLD) {
	raw.Title = pricewatch.CollapseWhitespace(ld.Title)
	raw.Price.Amount = ld.Price
	raw.Price.Currency = ld.Currency
	raw.ImageURL = ld.Image
	raw.Rating = ld.Rating
	raw.RatingCount = ld.RatingCount
	raw.PlatformID = ld.SKU
	raw.Category = ld.Category
}

// ldObjects flattens a decoded JSON-LD payload into candidate objects,
// descending into top-level arrays and @graph containers.
func ldObjects(data any) []map[string]any {
	switch v := data.(type) {
	case []any:
		var objs []map[string]any
		for _, item := range v {
			if m, ok := item.(map[string]any); ok {
				objs = append(objs, m)
			}
		}
		return objs
	case map[string]any:
		objs := []map[string]any{v}
		if graph, ok := v["@graph"].([]any); ok {
			for _, item := range graph {
				if m, ok := item.(map[string]any); ok {
					objs = append(objs, m)
				}
			}
		}
		return objs
	default:
		return nil
	}
}

// parseProductLD reads a Product entity, or returns nil when obj is not
// one.
func parseProductLD(obj map[string]any) *productLD {
	if !typeIs(obj, "Product") {
		return nil
	}

	p := &productLD{}
	p.Title, _ = obj["name"].(string)
	p.Price, p.Currency = offerPrice(obj)
	p.Image = ldImage(obj)
	p.Rating, p.RatingCount = ldRating(obj)
	p.Category, _ = obj["category"].(string)

	if sku, ok := obj["sku"].(string); ok && sku != "" {
		p.SKU = sku
	} else if id, ok := obj["productID"].(string); ok {
		p.SKU = id
	}
	return p
}

// typeIs checks a JSON-LD @type, which may be a string or a list.
func typeIs(obj map[string]any, want string) bool {
	switch t := obj["@type"].(type) {
	case string:
		return t == want
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok && s == want {
				return true
			}
		}
	}
	return false
}

// offerPrice reads the price and currency from a Product's offers, which
// may be a single Offer, a list, or an AggregateOffer with lowPrice.
func offerPrice(obj map[string]any) (float64, string) {
	switch v := obj["offers"].(type) {
	case []any:
		for _, o := range v {
			if m, ok := o.(map[string]any); ok {
				if amount, currency := priceFromOffer(m); amount > 0 {
					return amount, currency
				}
			}
		}
	case map[string]any:
		return priceFromOffer(v)
	}
	return 0, ""
}

func priceFromOffer(m map[string]any) (float64, string) {
	currency, _ := m["priceCurrency"].(string)
	for _, key := range []string{"price", "lowPrice"} {
		switch p := m[key].(type) {
		case float64:
			if p > 0 {
				return p, currency
			}
		case string:
			if amount, err := pricewatch.ParsePrice(p); err == nil && amount > 0 {
				return amount, currency
			}
		}
	}
	return 0, currency
}

// ldImage reads a Product image, which may be a string, a list, or an
// ImageObject.
func ldImage(obj map[string]any) string {
	switch v := obj["image"].(type) {
	case string:
		return v
	case []any:
		if len(v) > 0 {
			if s, ok := v[0].(string); ok {
				return s
			}
		}
	case map[string]any:
		if s, ok := v["url"].(string); ok {
			return s
		}
	}
	return ""
}

// ldRating reads a Product's aggregateRating value and review count.
func ldRating(obj map[string]any) (*float64, int) {
	agg, ok := obj["aggregateRating"].(map[string]any)
	if !ok {
		return nil, 0
	}

	var rating *float64
	switch v := agg["ratingValue"].(type) {
	case float64:
		if v >= 0 && v <= 5 {
			rating = &v
		}
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", "."), 64); err == nil && f >= 0 && f <= 5 {
			rating = &f
		}
	}

	var count int
	for _, key := range []string{"reviewCount", "ratingCount"} {
		switch v := agg[key].(type) {
		case float64:
			count = int(v)
		case string:
			count = parseRatingCount(v)
		}
		if count > 0 {
			break
		}
	}
	return rating, count
}
