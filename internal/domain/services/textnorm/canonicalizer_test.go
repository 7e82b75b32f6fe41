package textnorm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/pkg/logger"
)

func newTestCanonicalizer() *Canonicalizer {
	return New(nil, logger.NewDefault())
}

func TestCanonicalize_Leetspeak(t *testing.T) {
	c := newTestCanonicalizer()
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"digit substitution", "fr33 offer", "free offer"},
		{"mixed digits", "b1tc01n wallet", "bitcoin wallet"},
		{"at sign", "p@yp@l account", "paypal account"},
		{"dollar sign", "send ca$h", "send cash"},
		{"lone digits untouched", "send 500 rupees", "send 500 rupees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Canonicalize(ctx, tt.input))
		})
	}
}

func TestCanonicalize_ProtectedSpans(t *testing.T) {
	c := newTestCanonicalizer()
	ctx := context.Background()

	// Phone numbers and long digit runs must survive leet folding.
	out := c.Canonicalize(ctx, "call me at 9876543210 urgently")
	assert.Contains(t, out, "9876543210")

	out = c.Canonicalize(ctx, "account 123456789012 is blocked")
	assert.Contains(t, out, "123456789012")
}

func TestCanonicalize_URLDeobfuscation(t *testing.T) {
	c := newTestCanonicalizer()
	ctx := context.Background()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"hxxp scheme", "open hxxps://evil.example", "open https://evil.example"},
		{"starred scheme", "open h**ps://evil.example", "open https://evil.example"},
		{"bracket dot", "visit paypal[.]com", "visit paypal.com"},
		{"worded dot", "visit paypal[dot]com", "visit paypal.com"},
		{"spelled dot", "go to google dot com", "go to google.com"},
		{"escaped slash", `https:\/\/evil.example`, "https://evil.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Canonicalize(ctx, tt.input))
		})
	}
}

func TestCanonicalize_CharSpacing(t *testing.T) {
	c := newTestCanonicalizer()

	out := c.Canonicalize(context.Background(), "h t t p : / / x . c o m")
	assert.Equal(t, "http://x.com", out)

	// Normal short words stay separate.
	out = c.Canonicalize(context.Background(), "I am ok")
	assert.Equal(t, "i am ok", out)
}

func TestCanonicalize_Homoglyphs(t *testing.T) {
	c := newTestCanonicalizer()

	// Cyrillic а/о/р lookalikes fold to Latin.
	out := c.Canonicalize(context.Background(), "раypаl verification")
	assert.Equal(t, "paypal verification", out)
}

func TestCanonicalize_ZeroWidth(t *testing.T) {
	c := newTestCanonicalizer()

	out := c.Canonicalize(context.Background(), "ver​ify y‌our acc‍ount")
	assert.Equal(t, "verify your account", out)

	out = c.Canonicalize(context.Background(), "\uFEFFverify acc​ount")
	assert.Equal(t, "verify account", out)
}

func TestCanonicalize_DevanagariNukta(t *testing.T) {
	c := newTestCanonicalizer()
	ctx := context.Background()

	// Precomposed U+095B and decomposed ja plus combining nukta both fold
	// onto the bare consonant.
	assert.Equal(t, "जरूरी", c.Canonicalize(ctx, "ज़रूरी"))
	assert.Equal(t, "जरूरी", c.Canonicalize(ctx, "ज़रूरी"))
}

func TestCanonicalize_Idempotent(t *testing.T) {
	c := newTestCanonicalizer()
	ctx := context.Background()

	inputs := []string{
		"Your SBI acc0unt is bl0cked, verify at hxxp://evil[.]com",
		"p@y Rs 500 to fraud@paytm",
		"U R G E N T call 9876543210",
	}
	for _, input := range inputs {
		once := c.Canonicalize(ctx, input)
		twice := c.Canonicalize(ctx, once)
		assert.Equal(t, once, twice, "canonicalization must be idempotent for %q", input)
	}
}

func TestCanonicalize_Empty(t *testing.T) {
	c := newTestCanonicalizer()
	assert.Equal(t, "", c.Canonicalize(context.Background(), ""))
}

func TestCanonicalizeLight_PreservesShape(t *testing.T) {
	out := CanonicalizeLight("Pay to  scam@paytm ​ NOW")
	// Case, digits and @ survive; zero-width and whitespace runs do not.
	assert.Equal(t, "Pay to scam@paytm NOW", out)
}

func TestDecodeHexPayloads(t *testing.T) {
	// "http://evil.co" hex-encoded.
	encoded := "687474703a2f2f6576696c2e636f"
	out := DecodeHexPayloads("visit " + encoded + " now")
	assert.Contains(t, out, "http://evil.co")

	// Random hex that does not decode to a URL stays as-is.
	out = DecodeHexPayloads("ref 0011223344556677 thanks")
	assert.Contains(t, out, "0011223344556677")
}

func TestReport_StageOutputs(t *testing.T) {
	c := newTestCanonicalizer()
	report := c.Report(context.Background(), "FR33 m0ney")

	require.Contains(t, report, "original")
	require.Contains(t, report, "stage11_final")
	assert.Equal(t, "FR33 m0ney", report["original"])
	assert.Equal(t, "free money", report["stage11_final"])
}
