package domain

import "time"

// BillTextExcerptLimit bounds how much extracted bill text is carried on a
// persisted result.
const BillTextExcerptLimit = 3000

// FiscalSummary is the summarizer's output for a fiscal note. TotalImpact is
// signed: negative means net cost to the state, positive means net revenue
// or savings summed across all fiscal years.
type FiscalSummary struct {
	SummaryText string  `json:"fiscal_note_summary"`
	TotalImpact float64 `json:"total_fiscal_impact"`
}

// AnalysisResult is the unit persisted in the cache and returned to the CRM
// client. Exists distinguishes "no such bill published" from server-side
// failures.
type AnalysisResult struct {
	BillNumber         string    `json:"bill_number"`
	BillType           string    `json:"bill_type,omitempty"`
	Session            string    `json:"session"`
	BillURL            string    `json:"bill_url,omitempty"`
	FiscalNoteURL      *string   `json:"fiscal_note_url"`
	BillText           string    `json:"bill_text,omitempty"`
	FiscalNoteSummary  string    `json:"fiscal_note_summary"`
	TotalFiscalImpact  float64   `json:"total_fiscal_impact"`
	HasFiscalNote      bool      `json:"has_fiscal_note"`
	Exists             bool      `json:"exists"`
	Success            bool      `json:"success"`
	CacheHit           bool      `json:"cache_hit"`
	ErrorMessage       string    `json:"error,omitempty"`
	Timestamp          time.Time `json:"timestamp"`
}

// TruncateExcerpt bounds s to BillTextExcerptLimit characters.
func TruncateExcerpt(s string) string {
	if len(s) > BillTextExcerptLimit {
		return s[:BillTextExcerptLimit]
	}
	return s
}
