package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the default number of items per page.
const DefaultLimit = 20

// MaxLimit is the maximum allowed items per page.
const MaxLimit = 100

// Cursor errors.
var (
	// ErrInvalidCursor is returned when cursor decoding fails.
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor means no cursor was given: the first page.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest represents pagination parameters from the query string.
type PaginationRequest struct {
	// Cursor is the opaque NextCursor of a previous page.
	Cursor string `form:"cursor"`

	// Limit is the page size (1-100, default 20).
	Limit int `form:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// PaginatedResponse is one page of items.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`

	HasMore bool `json:"hasMore"`
	Total   int  `json:"total"`
}

// CursorData is the position encoded in a cursor. The quote list only ever
// grows at the end, so an offset into it stays valid between pages.
type CursorData struct {
	Offset int `json:"o"`
}

// EncodeCursor encodes cursor data to a URL-safe string.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor decodes a cursor produced by EncodeCursor.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// Paginate returns the page of items selected by req.
func Paginate[T any](items []T, req PaginationRequest) (*PaginatedResponse[T], error) {
	offset := 0

	cursor, err := DecodeCursor(req.Cursor)
	switch {
	case errors.Is(err, ErrNoCursor):
	case err != nil:
		return nil, err
	default:
		offset = min(cursor.Offset, len(items))
	}

	end := min(offset+req.GetLimit(), len(items))

	page := &PaginatedResponse[T]{
		Items:   items[offset:end],
		HasMore: end < len(items),
		Total:   len(items),
	}

	if page.Items == nil {
		page.Items = []T{}
	}

	if page.HasMore {
		page.NextCursor = EncodeCursor(&CursorData{Offset: end})
	}

	return page, nil
}
