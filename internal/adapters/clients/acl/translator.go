package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

// maxResponseBody caps how much of a success body is decoded.
const maxResponseBody = 8 << 20

// BaseAdapter wraps a clients.Client and maps every failure to a domain error.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a BaseAdapter.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName returns the remote's name as used in errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get fetches path and returns the body of a 2xx response. The caller closes it.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)

	return a.body(resp, err, operation)
}

// Post sends payload to path and returns the body of a 2xx response. The caller closes it.
func (a *BaseAdapter) Post(ctx context.Context, path string, payload []byte, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Post(ctx, path, payload)

	return a.body(resp, err, operation)
}

func (a *BaseAdapter) body(resp *http.Response, err error, operation string) (io.ReadCloser, error) {
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it. A body that does
// not decode is reported as domain.ErrMalformedResponse for service.
func DecodeResponse[T any](body io.ReadCloser, service string) (T, error) {
	var result T

	if body == nil {
		return result, domain.NewMalformedResponseError(service, "empty body")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(io.LimitReader(body, maxResponseBody)).Decode(&result); err != nil {
		return result, domain.NewMalformedResponseError(service, err.Error())
	}

	return result, nil
}

// Translator converts one external record into a domain value.
type Translator[E, D any] func(ext E) (D, error)

// TranslateSlice applies translate to every item, stopping at the first error.
func TranslateSlice[E, D any](items []E, translate Translator[E, D]) ([]D, error) {
	out := make([]D, 0, len(items))

	for i, item := range items {
		d, err := translate(item)
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		out = append(out, d)
	}

	return out, nil
}
