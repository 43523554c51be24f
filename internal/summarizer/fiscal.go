package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/atxlegis/bill-analyzer/internal/domain"
)

const (
	promptTemperature = 0.1
	promptMaxTokens   = 2500
)

// FiscalSummarizer turns fiscal-note text into a structured summary. It is
// total: any backend or decode failure resolves to the degradation default
// (a raw-text excerpt with zero impact), never an error.
type FiscalSummarizer struct {
	generator TextGenerator
	logger    *log.Logger
}

func NewFiscalSummarizer(generator TextGenerator, logger *log.Logger) *FiscalSummarizer {
	return &FiscalSummarizer{generator: generator, logger: logger}
}

func (s *FiscalSummarizer) SummarizeFiscalNote(ctx context.Context, text string) domain.FiscalSummary {
	if strings.TrimSpace(text) == "" {
		return domain.FiscalSummary{}
	}
	if s.generator == nil || !s.generator.Available() {
		return degradationDefault(text)
	}

	prompt := buildFiscalPrompt(text, textLimitFor(text))
	response, err := s.generator.Generate(ctx, GenerateRequest{
		Input:       prompt,
		Temperature: promptTemperature,
		MaxTokens:   promptMaxTokens,
	})
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("fiscal summarization degraded: %v", err)
		}
		return degradationDefault(text)
	}

	summary, err := decodeFiscalSummary(response)
	if err != nil {
		if s.logger != nil {
			s.logger.Printf("fiscal summary decode degraded: %v", err)
		}
		return degradationDefault(text)
	}
	return summary
}

// textLimitFor picks the character budget sent to the backend. Bigger
// documents get a smaller excerpt so the call stays inside its latency and
// token budget.
func textLimitFor(text string) int {
	length := len(text)
	switch {
	case length < 50000:
		if length < 10000 {
			return length
		}
		return 10000
	case length < 100000:
		return 8000
	case length < 150000:
		return 6000
	default:
		return 4000
	}
}

func buildFiscalPrompt(text string, limit int) string {
	return fmt.Sprintf(`Analyze this Texas legislative fiscal note and provide a comprehensive summary.

Return ONLY valid JSON (no markdown, no code blocks, no explanation):
{
  "fiscal_note_summary": "Your summary here",
  "total_fiscal_impact": -1234567.89
}

SUMMARY REQUIREMENTS (2-3 paragraphs):

Paragraph 1 - Overview:
- State the total net fiscal impact (positive for revenue/savings, negative for costs)
- Indicate whether impact is significant, moderate, or minimal
- Mention if methodology is dynamic or static scoring (if stated)

Paragraph 2 - Year-by-Year Breakdown:
- List specific amounts for each fiscal year (e.g., "FY2026: -$50.2M, FY2027: -$48.9M")
- Break down by fund type (General Revenue, Federal Funds, Special Funds, etc.)
- Distinguish between one-time and recurring costs

Paragraph 3 - Implementation Details:
- Staffing requirements: Number of FTEs and their annual costs
- Implementation timeline and milestones
- Any notable assumptions or contingencies
- Long-term sustainability considerations

TOTAL FISCAL IMPACT RULES:
- Sum ALL fiscal years mentioned in the note
- Use NEGATIVE numbers for costs/expenses (-1234567.89)
- Use POSITIVE numbers for revenue/savings (1234567.89)
- If no clear total, calculate from year-by-year data
- Include both one-time and recurring amounts

Be specific with dollar amounts and fiscal years. Use clear, professional language suitable for legislators.

Fiscal Note Text (first %d characters):
%s`, limit, text[:limit])
}

// decodeFiscalSummary parses the backend's untrusted output, tolerating an
// optional markdown code fence around the JSON.
func decodeFiscalSummary(response string) (domain.FiscalSummary, error) {
	cleaned := stripCodeFence(response)

	var summary domain.FiscalSummary
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return domain.FiscalSummary{}, fmt.Errorf("decode fiscal summary: %w", err)
	}
	if strings.TrimSpace(summary.SummaryText) == "" {
		return domain.FiscalSummary{}, fmt.Errorf("fiscal summary missing narrative text")
	}
	return summary, nil
}

func stripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) <= 2 {
		return trimmed
	}
	inner := strings.Join(lines[1:len(lines)-1], "\n")
	inner = strings.TrimSpace(inner)
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func degradationDefault(text string) domain.FiscalSummary {
	excerpt := text
	if len(excerpt) > domain.BillTextExcerptLimit {
		excerpt = excerpt[:domain.BillTextExcerptLimit]
	}
	return domain.FiscalSummary{SummaryText: excerpt, TotalImpact: 0}
}
