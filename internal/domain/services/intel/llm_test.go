package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"baitlab/internal/domain/models"
)

func TestValidateExtraction_DropsUntraceableValues(t *testing.T) {
	source := "hello, your parcel is delayed"

	result := models.NewIntel()
	result.UPIIDs = []string{"ghost@paytm"}
	result.PhoneNumbers = []string{"9999999999"}
	result.PhishingLinks = []string{"http://never-mentioned.com"}
	result.Names = []string{"Rakesh Invented"}

	validateExtraction(result, source)

	assert.Empty(t, result.UPIIDs)
	assert.Empty(t, result.PhoneNumbers)
	assert.Empty(t, result.PhishingLinks)
	assert.Empty(t, result.Names)
}

func TestValidateExtraction_KeepsTraceableValues(t *testing.T) {
	source := "I am Officer Vikram Singh, pay to fraud@paytm or call +91 98123-45678. " +
		"Your reference is case 12345, details at hxxp://evil[.]com/login"

	result := models.NewIntel()
	result.UPIIDs = []string{"fraud@paytm"}
	// The model reformats numbers; digits must still trace back.
	result.PhoneNumbers = []string{"9812345678"}
	result.PhishingLinks = []string{"http://evil.com/login"}
	result.Names = []string{"Vikram Singh"}
	result.CaseIDs = []string{"CASE-12345"}

	validateExtraction(result, source)

	assert.Equal(t, []string{"fraud@paytm"}, result.UPIIDs)
	assert.Equal(t, []string{"9812345678"}, result.PhoneNumbers)
	assert.Equal(t, []string{"http://evil.com/login"}, result.PhishingLinks)
	assert.Equal(t, []string{"Vikram Singh"}, result.Names)
	assert.Equal(t, []string{"CASE-12345"}, result.CaseIDs)
}

func TestValidateExtraction_MixedKeepsOnlyReal(t *testing.T) {
	source := "transfer to scam@ybl immediately"

	result := models.NewIntel()
	result.UPIIDs = []string{"scam@ybl", "ghost@paytm"}

	validateExtraction(result, source)

	assert.Equal(t, []string{"scam@ybl"}, result.UPIIDs)
}
