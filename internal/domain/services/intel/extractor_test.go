package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/domain/models"
)

func TestExtractDirect(t *testing.T) {
	t.Run("classifies UPI handles apart from emails", func(t *testing.T) {
		result := ExtractDirect("Pay to fraud@paytm and email me at help@support-desk.com")

		assert.Equal(t, []string{"fraud@paytm"}, result.UPIIDs)
		assert.Equal(t, []string{"help@support-desk.com"}, result.Emails)
	})

	t.Run("dotless domains count as payment handles", func(t *testing.T) {
		result := ExtractDirect("send money to victim9@okhdfcbank today")

		assert.Equal(t, []string{"victim9@okhdfcbank"}, result.UPIIDs)
		assert.Empty(t, result.Emails)
	})

	t.Run("bank account and IFSC", func(t *testing.T) {
		result := ExtractDirect("transfer to account 123456789012 IFSC SBIN0001234")

		assert.Equal(t, []string{"123456789012"}, result.BankAccounts)
		assert.Equal(t, []string{"SBIN0001234"}, result.IFSCCodes)
		assert.Empty(t, result.PhoneNumbers)
	})

	t.Run("phones by pattern and exact ten-digit runs", func(t *testing.T) {
		result := ExtractDirect("call me on 9876543210 or +919812345678")

		assert.ElementsMatch(t, []string{"9876543210", "+919812345678"}, result.PhoneNumbers)
		assert.Empty(t, result.BankAccounts)
	})

	t.Run("phone digit runs are not accounts", func(t *testing.T) {
		result := ExtractDirect("call +919812345678 and pay into account 123456789012")

		assert.Equal(t, []string{"+919812345678"}, result.PhoneNumbers)
		assert.Equal(t, []string{"123456789012"}, result.BankAccounts)
	})

	t.Run("links with trailing punctuation trimmed", func(t *testing.T) {
		result := ExtractDirect("visit https://evil-bank.com/login. or www.phish.in")

		assert.ElementsMatch(t,
			[]string{"https://evil-bank.com/login", "www.phish.in"},
			result.PhishingLinks)
	})

	t.Run("reference identifiers", func(t *testing.T) {
		result := ExtractDirect("my CASE 12345, number POL-88821, order ORD 4455667")

		assert.Equal(t, []string{"CASE 12345"}, result.CaseIDs)
		assert.Equal(t, []string{"POL-88821"}, result.PolicyNumbers)
		assert.Equal(t, []string{"ORD 4455667"}, result.OrderNumbers)
	})

	t.Run("never extracts names", func(t *testing.T) {
		result := ExtractDirect("this is Rajesh Kumar from the bank")
		assert.Empty(t, result.Names)
	})
}

func TestExtractAdversarial(t *testing.T) {
	t.Run("split digit sequences", func(t *testing.T) {
		cases := map[string]string{
			"single spaced": "number is 9 8 7 6 5 4 3 2 1 0 ok",
			"grouped":       "call 98765 43210 please",
			"dashed":        "call 987-654-3210 please",
			"comma":         "use 98765,43210",
		}
		for name, text := range cases {
			t.Run(name, func(t *testing.T) {
				result := ExtractAdversarial(text)
				assert.Contains(t, result.PhoneNumbers, "9876543210")
			})
		}
	})

	t.Run("number words", func(t *testing.T) {
		result := ExtractAdversarial("nine eight seven six five four three two one zero")
		assert.Equal(t, []string{"9876543210"}, result.PhoneNumbers)
	})

	t.Run("hxxp and bracket dots", func(t *testing.T) {
		result := ExtractAdversarial("go to hxxps://evil[.]com and http://bad[.]site[.]com")

		assert.Contains(t, result.PhishingLinks, "https://evil.com")
		assert.Contains(t, result.PhishingLinks, "http://bad.site.com")
	})

	t.Run("spelled out URLs", func(t *testing.T) {
		result := ExtractAdversarial("visit phish dot com slash login")
		assert.Contains(t, result.PhishingLinks, "http://phish.com/login")
	})

	t.Run("spaced domains with known TLDs only", func(t *testing.T) {
		result := ExtractAdversarial("go to evilsite . com now")
		assert.Contains(t, result.PhishingLinks, "http://evilsite.com")

		result = ExtractAdversarial("about 3 . 5 percent")
		assert.Empty(t, result.PhishingLinks)
	})

	t.Run("email domains do not leak as links", func(t *testing.T) {
		result := ExtractAdversarial("contact me at scammer@gmail.com")
		assert.Empty(t, result.PhishingLinks)
	})
}

func TestMerge(t *testing.T) {
	t.Run("normalizes and deduplicates phones", func(t *testing.T) {
		merged := Merge(&models.Intel{
			PhoneNumbers: []string{"+91 98765 43210", "9876543210", "12345"},
		})
		assert.Equal(t, []string{"9876543210"}, merged.PhoneNumbers)
	})

	t.Run("normalizes URLs", func(t *testing.T) {
		merged := Merge(&models.Intel{
			PhishingLinks: []string{"Evil.com/", "evil.com", "https://evil.com"},
		})
		assert.ElementsMatch(t,
			[]string{"http://evil.com", "https://evil.com"},
			merged.PhishingLinks)
	})

	t.Run("collapses doubled schemes", func(t *testing.T) {
		assert.Equal(t, "https://evil.com", NormalizeURL("http://https://evil.com"))
		assert.Equal(t, "http://evil.com", NormalizeURL("https://http://evil.com/"))

		merged := Merge(&models.Intel{
			PhishingLinks: []string{"http://https://evil.com", "https://evil.com"},
		})
		assert.Equal(t, []string{"https://evil.com"}, merged.PhishingLinks)
	})

	t.Run("drops ten-digit account numbers", func(t *testing.T) {
		merged := Merge(&models.Intel{
			BankAccounts: []string{"9876543210", "123456789012", "1234567"},
		})
		assert.Equal(t, []string{"123456789012"}, merged.BankAccounts)
	})

	t.Run("drops links that are just handle domains", func(t *testing.T) {
		merged := Merge(&models.Intel{
			Emails:        []string{"x@gmail.com"},
			PhishingLinks: []string{"gmail.com", "evil.com"},
		})
		assert.Equal(t, []string{"http://evil.com"}, merged.PhishingLinks)
	})

	t.Run("UPI entries require an at sign", func(t *testing.T) {
		merged := Merge(&models.Intel{
			UPIIDs: []string{"fraud@paytm", "notahandle"},
		})
		assert.Equal(t, []string{"fraud@paytm"}, merged.UPIIDs)
	})

	t.Run("title-cases names and uppercases IFSC", func(t *testing.T) {
		merged := Merge(&models.Intel{
			Names:     []string{"ravi kumar"},
			IFSCCodes: []string{"sbin0001234"},
		})
		assert.Equal(t, []string{"Ravi Kumar"}, merged.Names)
		assert.Equal(t, []string{"SBIN0001234"}, merged.IFSCCodes)
	})

	t.Run("merging the same source twice is idempotent", func(t *testing.T) {
		src := &models.Intel{
			UPIIDs:       []string{"fraud@paytm"},
			PhoneNumbers: []string{"9876543210"},
			Emails:       []string{"a@b.com"},
		}
		once := Merge(src)
		twice := Merge(src, src)
		assert.Equal(t, once, twice)
	})
}

func TestApply(t *testing.T) {
	total := models.NewIntel()
	merged := &models.Intel{
		UPIIDs:          []string{"fraud@paytm"},
		PhoneNumbers:    []string{"9876543210"},
		AdditionalIntel: map[string][]string{"aliases": {"Officer Verma"}},
	}

	newCount, breakdown := Apply(total, merged)
	require.Equal(t, 3, newCount)
	assert.Equal(t, 1, breakdown[models.FieldUPIIDs])
	assert.Equal(t, 1, breakdown[models.FieldPhoneNumbers])
	assert.Equal(t, 1, breakdown["additional"])
	assert.Equal(t, []string{"fraud@paytm"}, total.UPIIDs)

	// Applying the same findings again adds nothing.
	newCount, breakdown = Apply(total, merged)
	assert.Zero(t, newCount)
	assert.Empty(t, breakdown)
}

func TestApply_DedupesAcrossCaseAndFormat(t *testing.T) {
	total := models.NewIntel()

	first, _ := Apply(total, &models.Intel{
		UPIIDs:       []string{"Fraud@Paytm"},
		CaseIDs:      []string{"CASE-12345"},
		PhoneNumbers: []string{"+91 98765 43210"},
	})
	require.Equal(t, 3, first)

	// The same artifacts resurfacing in different case or format on a
	// later turn must not grow the aggregate.
	second, _ := Apply(total, &models.Intel{
		UPIIDs:       []string{"fraud@paytm"},
		CaseIDs:      []string{"case-12345"},
		PhoneNumbers: []string{"9876543210"},
	})
	assert.Zero(t, second)
	assert.Equal(t, []string{"Fraud@Paytm"}, total.UPIIDs)
	assert.Equal(t, []string{"CASE-12345"}, total.CaseIDs)
	assert.Equal(t, []string{"+91 98765 43210"}, total.PhoneNumbers)
}
