package services

import (
	"fmt"
	"strings"

	"github.com/rahul4469/propmate/internal/models"
)

// maxSnippetChars keeps extraction prompts small; rates appear early in snippets.
const maxSnippetChars = 1200

// FormatSearchResultsForExtraction renders search hits as the user message of
// the loan offer extraction prompt.
func FormatSearchResultsForExtraction(results []models.SearchResult) string {
	var output strings.Builder

	output.WriteString("Tavily Search Results:\n")
	if len(results) == 0 {
		output.WriteString("(no results)\n")
		return output.String()
	}

	for i, r := range results {
		output.WriteString(fmt.Sprintf("%d. %s\n", i+1, r.Title))
		if r.URL != "" {
			output.WriteString(fmt.Sprintf("   URL: %s\n", r.URL))
		}
		if content := strings.TrimSpace(r.Content); content != "" {
			output.WriteString(fmt.Sprintf("   %s\n", truncate(content, maxSnippetChars)))
		}
		output.WriteString("\n")
	}

	return output.String()
}

func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length-3]) + "..."
}
