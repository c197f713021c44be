// Package acl is the anti-corruption layer between the remote posts endpoint
// and the quote domain.
//
// The remote speaks in "posts" ({userId, id, title, body}) that carry no
// category. Nothing outside this package sees that shape:
//
//   - [RemoteQuoteClient] implements ports.RemoteQuoteSource over a [clients.Client]
//   - [TranslatePost] turns a post into a domain.Quote (body becomes text,
//     a missing category becomes the configured default)
//   - [MapHTTPError] turns transport failures and HTTP statuses into domain errors
//
// Error mapping:
//   - transport failure, circuit open, 5xx, 429 → [domain.ErrUnavailable]
//   - a 2xx body that is not a JSON list of posts → [domain.ErrMalformedResponse]
//   - 404 → [domain.ErrNotFound]
//   - 409 → [domain.ErrConflict]
//   - other 4xx → [domain.ErrValidation]
package acl
