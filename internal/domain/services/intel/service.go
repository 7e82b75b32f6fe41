package intel

import (
	"context"
	"strings"

	"baitlab/internal/domain/models"
	"baitlab/internal/domain/services/ai"
	"baitlab/pkg/logger"
)

// Extractor runs the three-strategy extraction pipeline and folds the
// results into session state.
type Extractor struct {
	client *ai.Client
	logger *logger.Logger
}

// NewExtractor builds an Extractor. client may be nil; extraction then
// runs on patterns only.
func NewExtractor(client *ai.Client, log *logger.Logger) *Extractor {
	return &Extractor{
		client: client,
		logger: log.WithComponent("intel-extractor"),
	}
}

// Extract runs all strategies on one raw message and merges the results.
func (e *Extractor) Extract(ctx context.Context, raw string) *models.Intel {
	direct := ExtractDirect(raw)
	adversarial := ExtractAdversarial(raw)
	llm := ExtractLLM(ctx, e.client, raw, e.logger)
	return Merge(direct, adversarial, llm)
}

// ExtractAndApply extracts from one message and merges the findings into
// the session's cumulative intel, appending a novelty record so closing
// logic can see whether the conversation is still producing.
func (e *Extractor) ExtractAndApply(ctx context.Context, session *models.Session, raw string) *models.Intel {
	merged := e.Extract(ctx, raw)
	newCount, breakdown := Apply(session.Intel, merged)

	session.NoveltyLog = append(session.NoveltyLog, models.NoveltyRecord{
		Turn:      session.Turn(),
		NewCount:  newCount,
		Breakdown: breakdown,
	})

	if newCount > 0 {
		e.logger.Info().
			Str("session_id", session.ID).
			Int("new_artifacts", newCount).
			Msg("new intelligence extracted")
	}
	return merged
}

// Apply folds merged extraction output into a cumulative aggregate,
// appending only values not already present. Presence is judged on the
// same normalized keys Merge dedupes with, so a value re-extracted in a
// different case or format on a later turn is still a duplicate. Returns
// total new items and a per-field breakdown. The aggregate never shrinks.
func Apply(total, merged *models.Intel) (int, map[string]int) {
	breakdown := map[string]int{}

	lowerKey := func(v string) string { return strings.ToLower(strings.TrimSpace(v)) }
	upperKey := func(v string) string { return strings.ToUpper(strings.TrimSpace(v)) }
	digitKey := func(v string) string { return nonDigitRe.ReplaceAllString(v, "") }

	appendNew := func(dst *[]string, values []string, field string, key func(string) string) {
		existing := make(map[string]struct{}, len(*dst))
		for _, v := range *dst {
			existing[key(v)] = struct{}{}
		}
		for _, v := range values {
			k := key(v)
			if _, dup := existing[k]; !dup {
				existing[k] = struct{}{}
				*dst = append(*dst, v)
				breakdown[field]++
			}
		}
	}

	appendNew(&total.UPIIDs, merged.UPIIDs, models.FieldUPIIDs, lowerKey)
	appendNew(&total.PhoneNumbers, merged.PhoneNumbers, models.FieldPhoneNumbers, NormalizePhone)
	appendNew(&total.PhishingLinks, merged.PhishingLinks, models.FieldPhishingLinks, NormalizeURL)
	appendNew(&total.BankAccounts, merged.BankAccounts, models.FieldBankAccounts, digitKey)
	appendNew(&total.IFSCCodes, merged.IFSCCodes, models.FieldIFSCCodes, upperKey)
	appendNew(&total.Names, merged.Names, models.FieldNames, lowerKey)
	appendNew(&total.Emails, merged.Emails, models.FieldEmails, lowerKey)
	appendNew(&total.CaseIDs, merged.CaseIDs, models.FieldCaseIDs, upperKey)
	appendNew(&total.PolicyNumbers, merged.PolicyNumbers, models.FieldPolicyNumbers, upperKey)
	appendNew(&total.OrderNumbers, merged.OrderNumbers, models.FieldOrderNumbers, upperKey)

	for key, values := range merged.AdditionalIntel {
		existing := total.AdditionalIntel[key]
		seen := make(map[string]struct{}, len(existing))
		for _, v := range existing {
			seen[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
		}
		for _, v := range values {
			lower := strings.ToLower(strings.TrimSpace(v))
			if _, dup := seen[lower]; !dup {
				seen[lower] = struct{}{}
				existing = append(existing, v)
				breakdown["additional"]++
			}
		}
		total.AdditionalIntel[key] = existing
	}

	newCount := 0
	for _, n := range breakdown {
		newCount += n
	}
	return newCount, breakdown
}
