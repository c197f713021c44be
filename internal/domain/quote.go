package domain

import "strings"

// DefaultCategory is assigned to remote records that carry no category.
const DefaultCategory = "General"

// AllCategories is the filter value that selects every quote.
const AllCategories = "all"

// Quote is a single quotation with its category.
// Text is the identity key: two quotes are the same record iff their Text
// values are byte-equal. ID is informational and never used for matching.
type Quote struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Normalize trims surrounding whitespace from user input.
// Stored and remote text is never normalized.
func (q Quote) Normalize() Quote {
	q.Text = strings.TrimSpace(q.Text)
	q.Category = strings.TrimSpace(q.Category)

	return q
}

// Validate checks that text and category are both non-empty.
func (q Quote) Validate() error {
	if q.Text == "" {
		return NewValidationError("text", "must not be empty")
	}

	if q.Category == "" {
		return NewValidationErrorWithValue("category", "must not be empty", q.Text)
	}

	return nil
}

// DefaultQuotes returns the seed set used when storage holds no quotes.
func DefaultQuotes() []Quote {
	return []Quote{
		{ID: "1", Text: "The only limit to our realization of tomorrow is our doubts of today.", Category: "Motivation"},
		{ID: "2", Text: "In the middle of every difficulty lies opportunity.", Category: "Inspiration"},
		{ID: "3", Text: "Life is what happens when you're busy making other plans.", Category: "Life"},
	}
}

// Categories returns the distinct categories of quotes in first-seen order.
func Categories(quotes []Quote) []string {
	seen := make(map[string]struct{}, len(quotes))
	out := make([]string, 0, len(quotes))

	for _, q := range quotes {
		if _, ok := seen[q.Category]; ok {
			continue
		}

		seen[q.Category] = struct{}{}
		out = append(out, q.Category)
	}

	return out
}

// FilterByCategory returns quotes in the given category, or all of them for AllCategories or "".
func FilterByCategory(quotes []Quote, category string) []Quote {
	if category == "" || category == AllCategories {
		return append([]Quote(nil), quotes...)
	}

	out := make([]Quote, 0, len(quotes))

	for _, q := range quotes {
		if q.Category == category {
			out = append(out, q)
		}
	}

	return out
}
