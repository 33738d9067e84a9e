package models

// SearchResult is one normalized web-search hit. Order follows provider relevance.
type SearchResult struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}
