package reporting

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baitlab/internal/config"
	"baitlab/internal/domain/models"
	"baitlab/pkg/logger"
)

func TestBuildFinalReport(t *testing.T) {
	s := models.NewSession("report-1")
	s.Intel.UPIIDs = []string{"fraud@paytm"}
	s.Intel.PhoneNumbers = []string{"9876543210"}
	s.Intel.AdditionalIntel["aliases"] = []string{"Officer Verma"}
	s.Messages = 12

	report := BuildFinalReport(s, true, "notes here")

	assert.Equal(t, "report-1", report.SessionID)
	assert.Equal(t, "completed", report.Status)
	assert.True(t, report.ScamDetected)
	assert.Equal(t, 12, report.TotalMessagesExchanged)
	assert.Equal(t, "notes here", report.AgentNotes)
	assert.Equal(t, []string{"fraud@paytm"}, report.ExtractedIntelligence[models.FieldUPIIDs])
	assert.Equal(t, []string{"9876543210"}, report.ExtractedIntelligence[models.FieldPhoneNumbers])
	// Free-form extras never leave the engine.
	assert.NotContains(t, report.ExtractedIntelligence, "aliases")

	// The report holds copies, not the live slices.
	report.ExtractedIntelligence[models.FieldUPIIDs][0] = "tampered"
	assert.Equal(t, "fraud@paytm", s.Intel.UPIIDs[0])
}

func TestReporterSend(t *testing.T) {
	log := logger.NewDefault()

	t.Run("posts the report as JSON", func(t *testing.T) {
		var received models.FinalReport
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		rep := New(config.ReportingConfig{Enabled: true, Endpoint: srv.URL, Timeout: time.Second}, log)
		require.True(t, rep.Enabled())

		s := models.NewSession("send-1")
		err := rep.Send(context.Background(), BuildFinalReport(s, false, "n"))
		require.NoError(t, err)
		assert.Equal(t, "send-1", received.SessionID)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		rep := New(config.ReportingConfig{Enabled: true, Endpoint: srv.URL}, log)
		err := rep.Send(context.Background(), BuildFinalReport(models.NewSession("send-2"), false, "n"))
		assert.Error(t, err)
	})

	t.Run("disabled reporter sends nothing", func(t *testing.T) {
		rep := New(config.ReportingConfig{}, log)
		assert.False(t, rep.Enabled())
		assert.NoError(t, rep.Send(context.Background(), BuildFinalReport(models.NewSession("send-3"), false, "n")))
	})
}
