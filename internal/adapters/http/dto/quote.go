package dto

import (
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// QuoteResponse is a quote as rendered by the API.
type QuoteResponse struct {
	ID       string `json:"id,omitempty"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

// ToQuoteResponse converts a domain quote.
func ToQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{ID: q.ID, Text: q.Text, Category: q.Category}
}

// ToQuoteResponses converts a list of domain quotes.
func ToQuoteResponses(quotes []domain.Quote) []QuoteResponse {
	out := make([]QuoteResponse, len(quotes))
	for i, q := range quotes {
		out[i] = ToQuoteResponse(q)
	}

	return out
}

// ListQuotesRequest is the query of GET /quotes.
type ListQuotesRequest struct {
	PaginationRequest

	Category string `form:"category" json:"category"`
}

// AddQuoteRequest is the body of POST /quotes. Both fields are trimmed
// before use and must not be blank.
type AddQuoteRequest struct {
	Text     string `json:"text"     validate:"required,notempty"`
	Category string `json:"category" validate:"required,notempty"`
}

// CategoriesResponse lists the distinct categories and the remembered filter.
type CategoriesResponse struct {
	Categories []string `json:"categories"`
	Selected   string   `json:"selected"`
}

// SelectCategoryRequest is the body of PUT /categories/selected.
type SelectCategoryRequest struct {
	Category string `json:"category" validate:"required,notempty"`
}

// ImportResponse reports the outcome of an import.
type ImportResponse struct {
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
	Message string `json:"message"`
}

// ConflictResponse is one remote-wins overwrite.
type ConflictResponse struct {
	Text           string `json:"text"`
	LocalCategory  string `json:"localCategory"`
	RemoteCategory string `json:"remoteCategory"`
	Message        string `json:"message"`
}

// SyncResponse renders a reconciliation cycle.
type SyncResponse struct {
	CycleID    string             `json:"cycleId"`
	StartedAt  string             `json:"startedAt,omitempty"`
	DurationMS int64              `json:"durationMs"`
	Outcome    string             `json:"outcome"`
	Fetched    int                `json:"fetched"`
	Added      int                `json:"added"`
	Updated    int                `json:"updated"`
	Conflicts  []ConflictResponse `json:"conflicts"`
	Saved      bool               `json:"saved"`
	Skipped    bool               `json:"skipped"`
	Error      string             `json:"error,omitempty"`
}

// ToSyncResponse converts a cycle result.
func ToSyncResponse(r domain.SyncResult) SyncResponse {
	resp := SyncResponse{
		CycleID:    r.CycleID,
		DurationMS: r.Duration.Milliseconds(),
		Outcome:    r.Outcome(),
		Fetched:    r.Fetched,
		Added:      r.Added,
		Updated:    r.Updated,
		Conflicts:  make([]ConflictResponse, len(r.Conflicts)),
		Saved:      r.Saved,
		Skipped:    r.Skipped,
		Error:      r.Error,
	}

	if !r.StartedAt.IsZero() {
		resp.StartedAt = r.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	}

	for i, c := range r.Conflicts {
		resp.Conflicts[i] = ConflictResponse{
			Text:           c.Text,
			LocalCategory:  c.LocalCategory,
			RemoteCategory: c.RemoteCategory,
			Message:        c.Message(),
		}
	}

	return resp
}

// NotificationRequest addresses one notification by id.
type NotificationRequest struct {
	ID string `uri:"id" json:"id" validate:"required,uuid"`
}
