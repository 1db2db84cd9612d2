package pricewatch

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// ProductID derives the deterministic identifier for a product: the
// uppercase platform name joined to a truncated xxHash of url + title. The
// same page and title always produce the same ID, so repeated scrapes
// update one record instead of accumulating duplicates.
func ProductID(platform Platform, url, title string) string {
	sum := fmt.Sprintf("%016x", xxhash.Sum64String(url+title))
	return strings.ToUpper(string(platform)) + "-" + sum[:12]
}

// CollapseWhitespace trims text and folds internal whitespace runs into
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// MapExtraction converts a raw extraction into a canonical product record.
// Title and price are required; optional fields that fail validation are
// discarded rather than failing the product. Returns EINVALID when a
// required field is empty or outside platform bounds.
func MapExtraction(raw *RawExtraction, platform Platform, rawURL string) (*NormalizedProduct, error) {
	if raw == nil {
		return nil, Errorf(EINVALID, "no extraction to map")
	}
	if !platform.Valid() {
		return nil, Errorf(EUNSUPPORTED, "unknown platform %q", platform)
	}

	title := CollapseWhitespace(raw.Title)
	if len([]rune(title)) < MinTitleLength {
		return nil, Errorf(EINVALID, "title %q shorter than %d characters", title, MinTitleLength)
	}
	if runes := []rune(title); len(runes) > MaxTitleLength {
		title = string(runes[:MaxTitleLength-3]) + "..."
	}

	if raw.Price.Amount <= 0 {
		return nil, Errorf(EINVALID, "price missing or non-positive")
	}
	if min, max := platform.PriceBounds(); raw.Price.Amount < min || raw.Price.Amount > max {
		return nil, Errorf(EINVALID, "price %.2f outside %s bounds [%v, %v]", raw.Price.Amount, platform, min, max)
	}

	rating := raw.Rating
	if rating != nil && (*rating < 0 || *rating > 5) {
		rating = nil
	}
	ratingCount := raw.RatingCount
	if ratingCount < 0 {
		ratingCount = 0
	}

	product := &NormalizedProduct{
		ID:           ProductID(platform, rawURL, title),
		URL:          rawURL,
		Title:        title,
		Price:        Price{Amount: raw.Price.Amount, Currency: ResolveCurrency(raw.Price.Currency, platform, rawURL)},
		Category:     ClassifyCategory(platform, raw.Category, title),
		Platform:     platform,
		PlatformID:   raw.PlatformID,
		ImageURL:     raw.ImageURL,
		Rating:       rating,
		RatingCount:  ratingCount,
		Completeness: Completeness(raw),
		ScrapedAt:    time.Now().UTC(),
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	return product, nil
}

// ResolveCurrency is the authoritative currency assignment. The extractor's
// value is advisory: it is kept only when it is a known code; otherwise the
// URL's host and then the platform default decide, falling back to USD.
func ResolveCurrency(advisory string, platform Platform, rawURL string) string {
	if KnownCurrency(advisory) {
		return advisory
	}
	if u, err := url.Parse(rawURL); err == nil {
		if code, ok := CurrencyForHost(u.Hostname()); ok {
			return code
		}
	}
	if code := platform.DefaultCurrency(); code != "" {
		return code
	}
	return "USD"
}

// ValidationResult reports required-field problems and the completeness
// score for a raw extraction.
type ValidationResult struct {
	Valid        bool     `json:"valid"`
	Errors       []string `json:"errors,omitempty"`
	Completeness float64  `json:"completeness"`
}

// ValidateExtraction checks a raw extraction without mapping it. Callers
// may run it before or independently of MapExtraction.
func ValidateExtraction(raw *RawExtraction) ValidationResult {
	if raw == nil {
		return ValidationResult{Errors: []string{"no extraction"}}
	}

	var errs []string
	if CollapseWhitespace(raw.Title) == "" {
		errs = append(errs, "title is empty")
	}
	if raw.Price.Amount <= 0 {
		errs = append(errs, "price is missing or non-positive")
	}
	if raw.Rating != nil && (*raw.Rating < 0 || *raw.Rating > 5) {
		errs = append(errs, "rating outside 0-5")
	}
	if raw.RatingCount < 0 {
		errs = append(errs, "rating count is negative")
	}

	return ValidationResult{
		Valid:        len(errs) == 0,
		Errors:       errs,
		Completeness: Completeness(raw),
	}
}

// completenessChecklist is the weighted field list behind the data-quality
// score. Required fields weigh more than optional ones.
var completenessChecklist = []struct {
	Weight    float64
	Populated func(raw *RawExtraction) bool
}{
	{0.2, func(r *RawExtraction) bool { return CollapseWhitespace(r.Title) != "" }},
	{0.2, func(r *RawExtraction) bool { return r.Price.Amount > 0 }},
	{0.15, func(r *RawExtraction) bool { return r.Price.Currency != "" }},
	{0.15, func(r *RawExtraction) bool { return r.Category != "" }},
	{0.1, func(r *RawExtraction) bool { return r.ImageURL != "" }},
	{0.1, func(r *RawExtraction) bool { return r.Rating != nil }},
	{0.1, func(r *RawExtraction) bool { return r.RatingCount > 0 }},
}

// Completeness scores how much of the field checklist raw populates, as a
// 0-1 fraction rounded to two decimals.
func Completeness(raw *RawExtraction) float64 {
	var total, got float64
	for _, c := range completenessChecklist {
		total += c.Weight
		if c.Populated(raw) {
			got += c.Weight
		}
	}
	return math.Round(got/total*100) / 100
}

// categoryBucket is one classification target with its match keywords.
type categoryBucket struct {
	Name     string
	Keywords []string
}

var amazonTaxonomy = []categoryBucket{
	{"Electronics", []string{"electronics", "cell phones", "phone", "laptop", "computer", "tablet", "headphone", "camera", "television", "monitor", "speaker", "smartwatch"}},
	{"Books", []string{"book", "paperback", "hardcover", "kindle", "novel"}},
	{"Clothing", []string{"clothing", "shirt", "dress", "shoe", "sneaker", "jacket", "apparel"}},
	{"Home & Kitchen", []string{"kitchen", "furniture", "cookware", "appliance", "bedding", "vacuum"}},
	{"Beauty", []string{"beauty", "makeup", "skincare", "shampoo", "fragrance"}},
	{"Toys & Games", []string{"toy", "board game", "puzzle", "lego", "playset"}},
	{"Sports & Outdoors", []string{"sports", "fitness", "outdoor", "camping", "bicycle"}},
	{"Grocery", []string{"grocery", "snack", "coffee", "tea"}},
}

var jumiaTaxonomy = []categoryBucket{
	{"Phones & Tablets", []string{"phone", "smartphone", "tablet", "mobile"}},
	{"Electronics", []string{"electronics", "television", "home theatre", "audio", "speaker", "decoder"}},
	{"Computing", []string{"computing", "laptop", "computer", "printer", "monitor"}},
	{"Appliances", []string{"appliance", "fridge", "refrigerator", "microwave", "blender", "washing machine", "air conditioner"}},
	{"Fashion", []string{"fashion", "shoe", "sneaker", "dress", "shirt", "watch", "bag"}},
	{"Health & Beauty", []string{"beauty", "makeup", "skincare", "fragrance", "health"}},
	{"Home & Office", []string{"furniture", "kitchen", "bedding", "office", "decor"}},
	{"Supermarket", []string{"supermarket", "grocery", "beverage", "drink", "food"}},
	{"Baby Products", []string{"baby", "diaper", "stroller"}},
}

func taxonomyFor(platform Platform) []categoryBucket {
	switch platform {
	case Amazon:
		return amazonTaxonomy
	case Jumia:
		return jumiaTaxonomy
	default:
		return nil
	}
}

// ClassifyCategory maps raw category text and the product title onto the
// platform's taxonomy. Each bucket scores the summed length of its keywords
// found in the combined text; the highest score wins and ties keep the
// earlier bucket. With no keyword hits the raw category is kept as-is, or
// "General" when the page supplied none.
func ClassifyCategory(platform Platform, rawCategory, title string) string {
	text := strings.ToLower(rawCategory + " " + title)

	var best string
	var bestScore int
	for _, bucket := range taxonomyFor(platform) {
		score := 0
		for _, kw := range bucket.Keywords {
			if strings.Contains(text, kw) {
				score += len(kw)
			}
		}
		if score > bestScore {
			best, bestScore = bucket.Name, score
		}
	}
	if bestScore == 0 {
		if c := CollapseWhitespace(rawCategory); c != "" {
			return c
		}
		return "General"
	}
	return best
}
