// Package pricewatch provides resilient extraction and prioritized
// rescraping of e-commerce product data. It detects the platform behind a
// product URL, fetches pages through rotating proxies with block-aware
// retries, extracts fields from structured data with ordered selector
// fallbacks, normalizes the result into a canonical record, and ranks
// catalog entries by how urgently they need rescraping.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, redis/).
package pricewatch
