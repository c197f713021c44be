package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/domain"
)

const noSuchKeyXML = `<?xml version="1.0" encoding="UTF-8"?>
<Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`

// fakeS3 answers the handful of path-style S3 calls the store makes.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    []string
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// /<bucket>/<key...>
	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	respond := func(status int, body string) *http.Response {
		return &http.Response{
			StatusCode: status,
			Header:     http.Header{"Content-Type": {"application/xml"}},
			Body:       io.NopCloser(strings.NewReader(body)),
			Request:    req,
		}
	}

	switch req.Method {
	case http.MethodHead:
		return respond(http.StatusOK, ""), nil
	case http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		f.objects[key] = body
		f.puts = append(f.puts, key)

		return respond(http.StatusOK, ""), nil
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			return respond(http.StatusNotFound, noSuchKeyXML), nil
		}

		resp := respond(http.StatusOK, "")
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))

		return resp, nil
	}

	return respond(http.StatusNotImplemented, ""), nil
}

func newFakeS3Store(t *testing.T) (*S3Store, *fakeS3) {
	t.Helper()

	fake := &fakeS3{objects: make(map[string][]byte)}

	cfg, err := config.LoadDefaultConfig(context.Background(),
		config.WithRegion("us-east-1"),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("AKIA", "SECRET", "")),
	)
	require.NoError(t, err)

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.UsePathStyle = true
		o.BaseEndpoint = aws.String("https://s3.test.local")
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	})

	return NewS3Store(client, "quotes-bucket", "quotesync/"), fake
}

func TestS3Store(t *testing.T) {
	s, fake := newFakeS3Store(t)

	exerciseStore(t, s)

	assert.Contains(t, fake.puts, "quotesync/quotes", "keys are stored under the prefix")
	assert.Equal(t, "storage:s3", s.Name())
}

func TestOpenS3_RequiresBucket(t *testing.T) {
	_, err := OpenS3(context.Background(), S3Options{Region: "us-east-1"})
	require.ErrorIs(t, err, domain.ErrValidation)
}
