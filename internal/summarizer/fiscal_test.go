package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	response  string
	err       error
	available bool
	lastInput string
}

func (s *stubGenerator) Generate(_ context.Context, request GenerateRequest) (string, error) {
	s.lastInput = request.Input
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Available() bool { return s.available }

func TestSummarizeFiscalNoteParsesStructuredOutput(t *testing.T) {
	generator := &stubGenerator{
		available: true,
		response:  `{"fiscal_note_summary":"Net cost of $50M over the biennium.","total_fiscal_impact":-50000000}`,
	}
	s := NewFiscalSummarizer(generator, nil)

	summary := s.SummarizeFiscalNote(context.Background(), "fiscal note body")
	if summary.SummaryText != "Net cost of $50M over the biennium." {
		t.Fatalf("unexpected summary text %q", summary.SummaryText)
	}
	if summary.TotalImpact != -50000000 {
		t.Fatalf("unexpected total impact %v", summary.TotalImpact)
	}
}

func TestSummarizeFiscalNoteStripsCodeFences(t *testing.T) {
	generator := &stubGenerator{
		available: true,
		response:  "```json\n{\"fiscal_note_summary\":\"ok\",\"total_fiscal_impact\":12.5}\n```",
	}
	s := NewFiscalSummarizer(generator, nil)

	summary := s.SummarizeFiscalNote(context.Background(), "fiscal note body")
	if summary.SummaryText != "ok" || summary.TotalImpact != 12.5 {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestSummarizeFiscalNoteDegradesWhenBackendUnavailable(t *testing.T) {
	longText := strings.Repeat("x", 5000)
	s := NewFiscalSummarizer(&stubGenerator{available: false}, nil)

	summary := s.SummarizeFiscalNote(context.Background(), longText)
	if summary.SummaryText != longText[:3000] {
		t.Fatalf("expected first 3000 chars as degradation default")
	}
	if summary.TotalImpact != 0 {
		t.Fatalf("expected zero impact, got %v", summary.TotalImpact)
	}
}

func TestSummarizeFiscalNoteDegradesOnBackendError(t *testing.T) {
	s := NewFiscalSummarizer(&stubGenerator{available: true, err: errors.New("boom")}, nil)

	summary := s.SummarizeFiscalNote(context.Background(), "short note")
	if summary.SummaryText != "short note" || summary.TotalImpact != 0 {
		t.Fatalf("unexpected degradation output %+v", summary)
	}
}

func TestSummarizeFiscalNoteDegradesOnMalformedOutput(t *testing.T) {
	s := NewFiscalSummarizer(&stubGenerator{available: true, response: "sorry, I cannot help"}, nil)

	summary := s.SummarizeFiscalNote(context.Background(), "short note")
	if summary.SummaryText != "short note" || summary.TotalImpact != 0 {
		t.Fatalf("unexpected degradation output %+v", summary)
	}
}

func TestSummarizeFiscalNoteEmptyInputYieldsEmptySummary(t *testing.T) {
	s := NewFiscalSummarizer(&stubGenerator{available: true}, nil)
	summary := s.SummarizeFiscalNote(context.Background(), "   ")
	if summary.SummaryText != "" || summary.TotalImpact != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}

func TestTextLimitTiers(t *testing.T) {
	cases := []struct {
		length int
		want   int
	}{
		{1000, 1000},
		{20000, 10000},
		{49999, 10000},
		{50000, 8000},
		{99999, 8000},
		{100000, 6000},
		{149999, 6000},
		{150000, 4000},
		{500000, 4000},
	}
	for _, tc := range cases {
		text := strings.Repeat("a", tc.length)
		if got := textLimitFor(text); got != tc.want {
			t.Fatalf("limit for %d chars: got %d, want %d", tc.length, got, tc.want)
		}
	}
}

func TestPromptCarriesOnlyTheBudgetedExcerpt(t *testing.T) {
	generator := &stubGenerator{
		available: true,
		response:  `{"fiscal_note_summary":"ok","total_fiscal_impact":0}`,
	}
	s := NewFiscalSummarizer(generator, nil)

	text := strings.Repeat("b", 60000)
	s.SummarizeFiscalNote(context.Background(), text)

	if !strings.Contains(generator.lastInput, "first 8000 characters") {
		t.Fatalf("prompt does not state the 8000 character budget")
	}
	if strings.Contains(generator.lastInput, strings.Repeat("b", 8001)) {
		t.Fatalf("prompt carries more than the budgeted excerpt")
	}
}
