package pricewatch

import (
	"strconv"
	"strings"
)

// Price is a decimal amount in a specific currency. The amount is
// pre-validation when carried inside a RawExtraction; platform bounds are
// applied during mapping.
type Price struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Validate returns an error if the price violates general bounds. Platform
// bounds are checked separately by the mapper.
func (p Price) Validate() error {
	if p.Amount < 0 {
		return Errorf(EINVALID, "price amount must be non-negative")
	}
	if p.Amount >= 1e9 {
		return Errorf(EINVALID, "price amount %v out of range", p.Amount)
	}
	if len(p.Currency) != 3 {
		return Errorf(EINVALID, "currency must be a 3-letter ISO code, got %q", p.Currency)
	}
	return nil
}

// currencySymbols maps symbols and code literals that appear in price text
// to ISO 4217 codes. Ordered so that longer, more specific markers match
// before single-character ones.
var currencySymbols = []struct {
	Symbol string
	Code   string
}{
	{"FCFA", "XOF"},
	{"KSh", "KES"},
	{"TSh", "TZS"},
	{"USh", "UGX"},
	{"EGP", "EGP"},
	{"GH₵", "GHS"},
	{"DH", "MAD"},
	{"₦", "NGN"},
	{"₵", "GHS"},
	{"£", "GBP"},
	{"€", "EUR"},
	{"¥", "JPY"},
	{"₹", "INR"},
	{"$", "USD"},
}

// currencyHosts maps domain suffixes to the currency products are quoted in
// on that marketplace.
var currencyHosts = []struct {
	Suffix string
	Code   string
}{
	{"amazon.co.uk", "GBP"},
	{"amazon.de", "EUR"},
	{"amazon.fr", "EUR"},
	{"amazon.it", "EUR"},
	{"amazon.es", "EUR"},
	{"amazon.ca", "CAD"},
	{"amazon.com.au", "AUD"},
	{"amazon.co.jp", "JPY"},
	{"amazon.in", "INR"},
	{"amazon.com", "USD"},
	{"jumia.com.ng", "NGN"},
	{"jumia.co.ke", "KES"},
	{"jumia.com.eg", "EGP"},
	{"jumia.ma", "MAD"},
	{"jumia.ci", "XOF"},
	{"jumia.sn", "XOF"},
	{"jumia.com.gh", "GHS"},
	{"jumia.ug", "UGX"},
	{"jumia.co.tz", "TZS"},
}

var knownCurrencies = func() map[string]bool {
	m := make(map[string]bool)
	for _, s := range currencySymbols {
		m[s.Code] = true
	}
	for _, h := range currencyHosts {
		m[h.Code] = true
	}
	for _, p := range Platforms() {
		m[p.DefaultCurrency()] = true
	}
	return m
}()

// KnownCurrency reports whether code is a currency this system can resolve.
func KnownCurrency(code string) bool {
	return knownCurrencies[code]
}

// ExtractCurrency scans price text for a currency symbol or code literal and
// returns the matching ISO code.
func ExtractCurrency(text string) (string, bool) {
	for _, s := range currencySymbols {
		if strings.Contains(text, s.Symbol) {
			return s.Code, true
		}
	}
	return "", false
}

// CurrencyForHost resolves a currency from a marketplace host by domain
// suffix match.
func CurrencyForHost(host string) (string, bool) {
	host = strings.ToLower(host)
	for _, h := range currencyHosts {
		if host == h.Suffix || strings.HasSuffix(host, "."+h.Suffix) {
			return h.Code, true
		}
	}
	return "", false
}

// ParsePrice converts raw price text to a decimal amount. Text is first
// reduced to digits and separators, then separators are disambiguated:
// when both a comma and a dot are present the one appearing last is the
// decimal separator; a lone comma is decimal only when exactly two digits
// follow it; a lone dot is decimal when at most two digits follow it.
//
// The lone-separator rules misparse prices quoted to three decimals, such
// as "1,234" meaning 1.234; both marketplaces quote prices to two decimals
// so the heuristic holds for the inputs this system sees.
func ParsePrice(text string) (float64, error) {
	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, Errorf(EINVALID, "no digits in price text %q", text)
	}

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')

	var normalized string
	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			normalized = decimalAt(s, comma)
		} else {
			normalized = decimalAt(s, dot)
		}
	case comma >= 0:
		if len(s)-comma-1 == 2 {
			normalized = decimalAt(s, comma)
		} else {
			normalized = strings.ReplaceAll(s, ",", "")
		}
	case dot >= 0:
		if len(s)-dot-1 <= 2 {
			normalized = decimalAt(s, dot)
		} else {
			normalized = strings.ReplaceAll(s, ".", "")
		}
	default:
		normalized = s
	}

	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, Errorf(EINVALID, "unparsable price text %q", text)
	}
	return amount, nil
}

// decimalAt strips every separator from s and restores a single decimal
// point at the position held by the separator at index sep.
func decimalAt(s string, sep int) string {
	drop := func(r rune) rune {
		if r == '.' || r == ',' {
			return -1
		}
		return r
	}
	return strings.Map(drop, s[:sep]) + "." + strings.Map(drop, s[sep+1:])
}
