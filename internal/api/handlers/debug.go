package handlers

import (
	"encoding/json"
	"net/http"

	"baitlab/internal/domain/services/detection"
	"baitlab/internal/domain/services/intel"
	"baitlab/internal/domain/services/textnorm"
	"baitlab/pkg/logger"
)

// DebugHandler exposes scoring and normalization internals for analyst
// inspection. No session is touched.
type DebugHandler struct {
	canon     *textnorm.Canonicalizer
	detector  *detection.Detector
	extractor *intel.Extractor
	logger    *logger.Logger
}

// NewDebugHandler creates a new DebugHandler
func NewDebugHandler(canon *textnorm.Canonicalizer, detector *detection.Detector, extractor *intel.Extractor, log *logger.Logger) *DebugHandler {
	return &DebugHandler{
		canon:     canon,
		detector:  detector,
		extractor: extractor,
		logger:    log.WithComponent("debug"),
	}
}

type debugRequest struct {
	Text    string   `json:"text"`
	History []string `json:"history,omitempty"`
}

// Score handles POST /api/v1/debug/score: one-shot detection with the
// full signal breakdown and the extraction preview for a single message.
func (h *DebugHandler) Score(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	canonical := h.canon.Canonicalize(r.Context(), req.Text)
	result := h.detector.Detect(r.Context(), req.Text, canonical, req.History)
	extracted := h.extractor.Extract(r.Context(), req.Text)

	writeJSON(w, http.StatusOK, map[string]any{
		"canonical":  canonical,
		"detection":  result,
		"extraction": extracted,
	})
}

// Normalize handles POST /api/v1/debug/normalize: the per-stage
// canonicalization report.
func (h *DebugHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var req debugRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	writeJSON(w, http.StatusOK, h.canon.Report(r.Context(), req.Text))
}
