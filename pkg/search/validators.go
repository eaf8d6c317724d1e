package search

// BooksQuery represents the query parameters for book search.
type BooksQuery struct {
	Query  string `query:"q" json:"q" validate:"required,min=1,max=100"`
	Limit  int    `query:"limit" json:"limit,omitempty" default:"24" validate:"min=1,max=50"`
	Offset int    `query:"offset" json:"offset,omitempty" validate:"min=0"`
}

// BookSearchResult represents a book in search results.
type BookSearchResult struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle"`
	Authors  string  `json:"authors"`
}

// BooksResponse wraps search results with the total match count.
type BooksResponse struct {
	Results []BookSearchResult `json:"results"`
	Total   int                `json:"total"`
}
