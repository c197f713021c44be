package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
)

// RemoteQuoteClientConfig configures a RemoteQuoteClient.
type RemoteQuoteClientConfig struct {
	// Client is pointed at the remote base URL.
	Client *clients.Client

	// PostsPath is the collection path, e.g. "/posts".
	PostsPath string

	// DefaultCategory is given to posts that carry no category.
	DefaultCategory string

	Logger *slog.Logger
}

// RemoteQuoteClient implements ports.RemoteQuoteSource against a posts API.
type RemoteQuoteClient struct {
	BaseAdapter

	path            string
	defaultCategory string
	logger          *slog.Logger
}

// NewRemoteQuoteClient creates the adapter. It panics without a client.
func NewRemoteQuoteClient(cfg RemoteQuoteClientConfig) *RemoteQuoteClient {
	if cfg.Client == nil {
		panic("RemoteQuoteClient: Client is required")
	}

	path := cfg.PostsPath
	if path == "" {
		path = "/posts"
	}

	category := cfg.DefaultCategory
	if category == "" {
		category = domain.DefaultCategory
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &RemoteQuoteClient{
		BaseAdapter:     NewBaseAdapter(cfg.Client, cfg.Client.Name()),
		path:            path,
		defaultCategory: category,
		logger:          logger,
	}
}

// post is the remote record. Only body is required.
type post struct {
	UserID   int    `json:"userId,omitempty"`
	ID       int    `json:"id,omitempty"`
	Title    string `json:"title,omitempty"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
}

// outgoing is the record pushed back to the remote.
type outgoing struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// TranslatePost returns a Translator that maps a post to a quote, filling in
// defaultCategory when the post has none. The body is used verbatim as text.
func TranslatePost(defaultCategory string) Translator[post, domain.Quote] {
	return func(p post) (domain.Quote, error) {
		if p.Body == "" {
			return domain.Quote{}, domain.NewValidationError("body", "must not be empty")
		}

		q := domain.Quote{Text: p.Body, Category: strings.TrimSpace(p.Category)}
		if q.Category == "" {
			q.Category = defaultCategory
		}

		if p.ID != 0 {
			q.ID = strconv.Itoa(p.ID)
		}

		return q, nil
	}
}

// FetchRemote returns the remote list in server order. Posts with an empty
// body are dropped.
func (c *RemoteQuoteClient) FetchRemote(ctx context.Context) ([]domain.Quote, error) {
	logger := logging.FromContextOr(ctx, c.logger)
	logger.Log(ctx, logging.LevelTrace, "fetching remote quotes", slog.String("path", c.path))

	body, err := c.Get(ctx, c.path, "fetch quotes")
	if err != nil {
		if !domain.IsUnavailable(err) {
			err = domain.NewUnavailableError(c.ServiceName(), err.Error())
		}

		return nil, err
	}

	posts, err := DecodeResponse[[]post](body, c.ServiceName())
	if err != nil {
		return nil, err
	}

	if posts == nil {
		return nil, domain.NewMalformedResponseError(c.ServiceName(), "expected a list, got null")
	}

	kept := posts[:0]
	for _, p := range posts {
		if p.Body != "" {
			kept = append(kept, p)
		}
	}

	if dropped := len(posts) - len(kept); dropped > 0 {
		logger.DebugContext(ctx, "dropped remote records without body", slog.Int("count", dropped))
	}

	quotes, err := TranslateSlice(kept, TranslatePost(c.defaultCategory))
	if err != nil {
		return nil, domain.NewMalformedResponseError(c.ServiceName(), err.Error())
	}

	logger.Log(ctx, logging.LevelTrace, "translated remote records", slog.Int("count", len(quotes)))

	return quotes, nil
}

// PushLocal posts the whole list as [{text, category}].
func (c *RemoteQuoteClient) PushLocal(ctx context.Context, quotes []domain.Quote) error {
	out := make([]outgoing, len(quotes))
	for i, q := range quotes {
		out[i] = outgoing{Text: q.Text, Category: q.Category}
	}

	payload, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding quotes: %w", err)
	}

	body, err := c.Post(ctx, c.path, payload, "push quotes")
	if err != nil {
		return err
	}

	_ = body.Close()

	logging.FromContextOr(ctx, c.logger).DebugContext(ctx, "pushed local quotes", slog.Int("count", len(quotes)))

	return nil
}

// Name identifies the remote in health checks.
func (c *RemoteQuoteClient) Name() string {
	return "remote:" + c.ServiceName()
}

// Check reports whether the posts collection answers with a 2xx.
func (c *RemoteQuoteClient) Check(ctx context.Context) error {
	body, err := c.Get(ctx, c.path, "health check")
	if err != nil {
		return err
	}

	return body.Close()
}
