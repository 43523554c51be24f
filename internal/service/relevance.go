package service

import "strings"

// fiscalKeywords flag bill text that makes a fiscal-note lookup worthwhile.
// Matching is case-insensitive substring; any single hit is enough.
var fiscalKeywords = []string{
	"appropriation", "funding", "budget", "fiscal impact",
	"cost", "revenue", "expenditure", "million", "billion",
	"grant", "allocation", "financial",
}

// IsFiscallyRelevant reports whether the bill text warrants fetching the
// fiscal note.
func IsFiscallyRelevant(billText string) bool {
	lowered := strings.ToLower(billText)
	for _, keyword := range fiscalKeywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
