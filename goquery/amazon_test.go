package goquery_test

import (
	"context"
	"testing"

	"github.com/dbalogun/pricewatch"
	"github.com/dbalogun/pricewatch/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmazonExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts all fields from the current desktop layout", func(t *testing.T) {
		t.Parallel()

		html := `<!DOCTYPE html>
<html>
<head><title>Amazon.com: Echo Dot</title></head>
<body>
<div id="wayfinding-breadcrumbs_feature_div">
	<ul>
		<li><a href="/electronics">Electronics</a></li>
		<li class="a-breadcrumb-divider">&rsaquo;</li>
		<li><a href="/smart-home">Smart Home</a></li>
	</ul>
</div>
<h1><span id="productTitle">  Echo Dot (5th Gen)   Smart speaker with Alexa  </span></h1>
<div id="acrPopover" title="4.7 out of 5 stars"></div>
<span id="acrCustomerReviewText">31,456 ratings</span>
<div id="corePrice_feature_div">
	<span class="a-price"><span class="a-offscreen">$49.99</span></span>
</div>
<div id="imgTagWrapperId"><img id="landingImage" src="https://m.media-amazon.com/images/I/echo-dot.jpg"/></div>
</body>
</html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B08N5WRWNW")

		require.NoError(t, err)
		assert.Equal(t, "Echo Dot (5th Gen) Smart speaker with Alexa", raw.Title)
		assert.Equal(t, 49.99, raw.Price.Amount)
		assert.Equal(t, "USD", raw.Price.Currency)
		require.NotNil(t, raw.Rating)
		assert.Equal(t, 4.7, *raw.Rating)
		assert.Equal(t, 31456, raw.RatingCount)
		assert.Equal(t, "https://m.media-amazon.com/images/I/echo-dot.jpg", raw.ImageURL)
		assert.Equal(t, "Smart Home", raw.Category)
		assert.Equal(t, "B08N5WRWNW", raw.PlatformID)
	})

	t.Run("falls back through the title selector chain", func(t *testing.T) {
		t.Parallel()

		// Neither #productTitle nor #btAsinTitle is present; the third
		// strategy in the chain matches.
		html := `<html><body>
<h1 id="title"><span>Fallback Title Product</span></h1>
<span class="a-price"><span class="a-offscreen">$12.99</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B000000001")

		require.NoError(t, err)
		assert.Equal(t, "Fallback Title Product", raw.Title)
	})

	t.Run("structured data price wins over selector price", func(t *testing.T) {
		t.Parallel()

		html := `<html><head>
<script type="application/ld+json">
{"@context":"https://schema.org","@type":"Product","name":"Echo Dot (5th Gen)","sku":"B08N5WRWNW","offers":{"@type":"Offer","price":"39.99","priceCurrency":"USD"}}
</script>
</head><body>
<span id="productTitle">Echo Dot (5th Gen)</span>
<span class="a-price"><span class="a-offscreen">$49.99</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B08N5WRWNW")

		require.NoError(t, err)
		assert.Equal(t, 39.99, raw.Price.Amount)
		assert.Equal(t, "USD", raw.Price.Currency)
		assert.Equal(t, "B08N5WRWNW", raw.PlatformID)
	})

	t.Run("joins split whole and fraction price spans", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Kindle Paperwhite</span>
<span class="a-price-whole">139.</span><span class="a-price-fraction">99</span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B08KTZ8249")

		require.NoError(t, err)
		assert.Equal(t, 139.99, raw.Price.Amount)
	})

	t.Run("resolves currency from price text symbol", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Kettle</span>
<span class="a-price"><span class="a-offscreen">£24.99</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.co.uk/dp/B07GJ4FJ44")

		require.NoError(t, err)
		assert.Equal(t, "GBP", raw.Price.Currency)
	})

	t.Run("resolves currency from host when text has no symbol", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Wasserkocher</span>
<span class="a-price"><span class="a-offscreen">29,99</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.de/dp/B07GJ4FJ44")

		require.NoError(t, err)
		assert.Equal(t, 29.99, raw.Price.Amount)
		assert.Equal(t, "EUR", raw.Price.Currency)
	})

	t.Run("resolves protocol-relative image against the canonical host", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">USB Cable</span>
<span class="a-price"><span class="a-offscreen">$7.99</span></span>
<img id="landingImage" src="//m.media-amazon.com/images/I/cable.jpg"/>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B01GGKYN0A")

		require.NoError(t, err)
		assert.Equal(t, "https://m.media-amazon.com/images/I/cable.jpg", raw.ImageURL)
	})

	t.Run("reads the ASIN from the query parameter", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Monitor</span>
<span class="a-price"><span class="a-offscreen">$219.00</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/product-page?asin=B09G9FPHY6")

		require.NoError(t, err)
		assert.Equal(t, "B09G9FPHY6", raw.PlatformID)
	})

	t.Run("reads the ASIN from the hidden form input", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Monitor</span>
<span class="a-price"><span class="a-offscreen">$219.00</span></span>
<input id="ASIN" type="hidden" value="B09G9FPHY6"/>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/some-page")

		require.NoError(t, err)
		assert.Equal(t, "B09G9FPHY6", raw.PlatformID)
	})

	t.Run("missing rating is nil, not a failure", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Unrated Gadget</span>
<span class="a-price"><span class="a-offscreen">$15.00</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		raw, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B000000002")

		require.NoError(t, err)
		assert.Nil(t, raw.Rating)
		assert.Zero(t, raw.RatingCount)
	})

	t.Run("fails extraction when no title is found", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span class="a-price"><span class="a-offscreen">$49.99</span></span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		_, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B08N5WRWNW")

		require.Error(t, err)
		assert.Equal(t, pricewatch.EEXTRACTION, pricewatch.ErrorCode(err))
	})

	t.Run("fails extraction when no price is found", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<span id="productTitle">Echo Dot (5th Gen)</span>
</body></html>`

		e := goquery.NewAmazonExtractor()
		_, err := e.Extract(context.Background(), html, "https://www.amazon.com/dp/B08N5WRWNW")

		require.Error(t, err)
		assert.Equal(t, pricewatch.EEXTRACTION, pricewatch.ErrorCode(err))
	})
}
