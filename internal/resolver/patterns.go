package resolver

import "strings"

type DocumentKind string

const (
	KindBill       DocumentKind = "bill"
	KindFiscalNote DocumentKind = "fiscal_note"
)

// PatternKind names which URL naming convention a candidate follows. The
// fallbacks exist because the document host has changed conventions across
// sessions without republishing older documents.
type PatternKind string

const (
	PatternPrimary         PatternKind = "primary"
	PatternNoSessionInName PatternKind = "fallback_no_session_in_name"
	PatternBillsDir        PatternKind = "fallback_bills_dir"
	PatternFlat            PatternKind = "fallback_flat"
	PatternFiscalDir       PatternKind = "fallback_fiscal_dir"
)

// urlTemplate renders a candidate URL from the placeholders {base},
// {session}, {type} and {num}.
type urlTemplate struct {
	Kind     PatternKind
	Template string
}

// Candidate order is a priority: the first responsive URL wins and later
// entries are never probed. Keep new conventions at the top and demote old
// ones instead of deleting them.
var (
	billPatterns = []urlTemplate{
		{PatternPrimary, "{base}/{session}/pdf/TX{session}{type}{num}FIL.pdf"},
		{PatternNoSessionInName, "{base}/{session}/pdf/{type}{num}FIL.pdf"},
		{PatternBillsDir, "{base}/{session}/bills/TX{session}{type}{num}.pdf"},
		{PatternFlat, "{base}/bills/{session}/{type}{num}.pdf"},
	}

	fiscalNotePatterns = []urlTemplate{
		{PatternPrimary, "{base}/{session}/fnote/TX{session}{type}{num}FIL.pdf"},
		{PatternNoSessionInName, "{base}/{session}/fnote/{type}{num}FIL.pdf"},
		{PatternFiscalDir, "{base}/{session}/fiscal/{type}{num}.pdf"},
	}
)

func patternsFor(kind DocumentKind) []urlTemplate {
	if kind == KindFiscalNote {
		return fiscalNotePatterns
	}
	return billPatterns
}

func (t urlTemplate) render(base, session, billType, number string) string {
	replacer := strings.NewReplacer(
		"{base}", strings.TrimSuffix(base, "/"),
		"{session}", session,
		"{type}", billType,
		"{num}", number,
	)
	return replacer.Replace(t.Template)
}
