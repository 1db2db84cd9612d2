package pricewatch

import (
	"net/url"
	"strings"
)

// Platform identifies a supported e-commerce marketplace.
type Platform string

// Supported platforms.
const (
	Amazon Platform = "amazon"
	Jumia  Platform = "jumia"
)

// MaxURLLength bounds accepted product URLs.
const MaxURLLength = 500

// Platforms returns every supported platform in declaration order.
func Platforms() []Platform {
	return []Platform{Amazon, Jumia}
}

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	switch p {
	case Amazon, Jumia:
		return true
	default:
		return false
	}
}

// String returns the platform's lowercase name.
func (p Platform) String() string {
	return string(p)
}

var amazonDomains = []string{
	"amazon.com", "amazon.co.uk", "amazon.de", "amazon.fr", "amazon.it",
	"amazon.es", "amazon.ca", "amazon.com.au", "amazon.co.jp", "amazon.in",
}

var jumiaDomains = []string{
	"jumia.com.ng", "jumia.co.ke", "jumia.com.eg", "jumia.ma", "jumia.ci",
	"jumia.sn", "jumia.com.gh", "jumia.ug", "jumia.co.tz",
}

// Domains returns the domain suffixes owned by the platform. A host belongs
// to the platform when it equals a suffix or ends with "." + suffix.
func (p Platform) Domains() []string {
	switch p {
	case Amazon:
		return amazonDomains
	case Jumia:
		return jumiaDomains
	default:
		return nil
	}
}

// OwnsHost reports whether host belongs to the platform's domain set.
func (p Platform) OwnsHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range p.Domains() {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// PriceBounds returns the [min, max] range a mapped price must fall within.
// Jumia prices are quoted in low-denomination currencies so the upper bound
// is far looser than Amazon's.
func (p Platform) PriceBounds() (min, max float64) {
	switch p {
	case Amazon:
		return 0.01, 1_000_000
	case Jumia:
		return 1, 50_000_000
	default:
		return 0, 0
	}
}

// DefaultCurrency returns the currency assumed when neither the price text
// nor the URL's host resolves one.
func (p Platform) DefaultCurrency() string {
	switch p {
	case Amazon:
		return "USD"
	case Jumia:
		return "NGN"
	default:
		return ""
	}
}

// AcceptLanguage returns the Accept-Language header value fetchers present
// for the platform's primary storefront locale.
func (p Platform) AcceptLanguage() string {
	switch p {
	case Amazon:
		return "en-US,en;q=0.9"
	case Jumia:
		return "en-NG,en;q=0.8,fr;q=0.5"
	default:
		return ""
	}
}

// Host returns the platform's canonical host, used to resolve relative and
// protocol-relative image URLs.
func (p Platform) Host() string {
	switch p {
	case Amazon:
		return "www.amazon.com"
	case Jumia:
		return "www.jumia.com.ng"
	default:
		return ""
	}
}

// DetectPlatform maps a product URL to its platform by domain suffix match.
// Returns EINVALID if the URL is malformed and EUNSUPPORTED if the host
// belongs to no known platform.
func DetectPlatform(rawURL string) (Platform, error) {
	host, err := parseHost(rawURL)
	if err != nil {
		return "", err
	}
	for _, p := range Platforms() {
		if p.OwnsHost(host) {
			return p, nil
		}
	}
	return "", Errorf(EUNSUPPORTED, "unsupported platform for host %q", host)
}

// ValidateURL verifies that rawURL is a well-formed product URL whose host
// belongs to platform.
func ValidateURL(rawURL string, platform Platform) error {
	if !platform.Valid() {
		return Errorf(EUNSUPPORTED, "unknown platform %q", platform)
	}
	host, err := parseHost(rawURL)
	if err != nil {
		return err
	}
	if !platform.OwnsHost(host) {
		return Errorf(EINVALID, "host %q does not belong to platform %s", host, platform)
	}
	return nil
}

func parseHost(rawURL string) (string, error) {
	if rawURL == "" {
		return "", Errorf(EINVALID, "url required")
	}
	if len(rawURL) > MaxURLLength {
		return "", Errorf(EINVALID, "url exceeds %d characters", MaxURLLength)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", Errorf(EINVALID, "malformed url %q", rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", Errorf(EINVALID, "url scheme must be http or https")
	}
	if u.Hostname() == "" {
		return "", Errorf(EINVALID, "url host required")
	}
	return u.Hostname(), nil
}
