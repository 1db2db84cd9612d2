package pricewatch_test

import (
	"testing"

	"github.com/dbalogun/pricewatch"
	"github.com/stretchr/testify/assert"
)

func TestUserAgentFor(t *testing.T) {
	t.Parallel()

	t.Run("rotates across attempts", func(t *testing.T) {
		t.Parallel()

		first := pricewatch.UserAgentFor(0)
		second := pricewatch.UserAgentFor(1)

		assert.NotEmpty(t, first)
		assert.NotEmpty(t, second)
		assert.NotEqual(t, first, second)
	})

	t.Run("wraps around the pool", func(t *testing.T) {
		t.Parallel()

		n := len(pricewatch.UserAgents)
		assert.Equal(t, pricewatch.UserAgentFor(0), pricewatch.UserAgentFor(n))
	})
}

func TestMatchBlockSignature(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want string
	}{
		{"amazon captcha page", "<html><body>Enter the characters you see below</body></html>", "enter the characters you see below"},
		{"cloudflare challenge", "<div id='cf-browser-verification'></div>", "cf-browser-verification"},
		{"access denied, mixed case", "<h1>Access Denied</h1>", "access denied"},
		{"ordinary product page", "<html><body><h1>Echo Dot</h1><span>$49.99</span></body></html>", ""},
		{"empty body", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, pricewatch.MatchBlockSignature(tt.body))
		})
	}
}
