package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"legal-ai-relay/internal/domain"
	"legal-ai-relay/internal/domain/ports/adapter"
	"legal-ai-relay/internal/infra/logging"
	"legal-ai-relay/internal/infra/metrics"
)

var _ adapter.DocumentFetcher = (*HTTPDocumentFetcher)(nil)

const acceptHeader = "application/pdf, application/octet-stream;q=0.9, */*;q=0.5"

// HTTPDocumentFetcher downloads documents with a timeout and a hard byte cap.
type HTTPDocumentFetcher struct {
	client   *http.Client
	maxBytes int64
	log      *zerolog.Logger
	dev      bool
}

func NewHTTPDocumentFetcher(timeout time.Duration, maxBytes int64, logger *zerolog.Logger, dev bool) *HTTPDocumentFetcher {
	return NewHTTPDocumentFetcherWithClient(&http.Client{Timeout: timeout}, maxBytes, logger, dev)
}

func NewHTTPDocumentFetcherWithClient(client *http.Client, maxBytes int64, logger *zerolog.Logger, dev bool) *HTTPDocumentFetcher {
	if maxBytes <= 0 {
		maxBytes = 20 << 20
	}
	return &HTTPDocumentFetcher{client: client, maxBytes: maxBytes, log: logger, dev: dev}
}

// Fetch returns the document body. Bodies larger than maxBytes are rejected
// after reading at most maxBytes+1 bytes, whether or not Content-Length is sent.
func (f *HTTPDocumentFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	l := logging.With(ctx, f.log)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrDocumentFetch, err)
	}
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.IncDocumentFetchFailure("network")
		return nil, fmt.Errorf("%w: %v", domain.ErrDocumentFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.IncDocumentFetchFailure("status")
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("%w: upstream status %d", domain.ErrDocumentFetch, resp.StatusCode)
	}
	if resp.ContentLength > f.maxBytes {
		metrics.IncDocumentFetchFailure("too_large")
		return nil, fmt.Errorf("%w: content-length %d > %d", domain.ErrDocumentTooLarge, resp.ContentLength, f.maxBytes)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		metrics.IncDocumentFetchFailure("network")
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: read timed out", domain.ErrDocumentFetch)
		}
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrDocumentFetch, err)
	}
	if int64(len(body)) > f.maxBytes {
		metrics.IncDocumentFetchFailure("too_large")
		return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrDocumentTooLarge, f.maxBytes)
	}

	metrics.ObserveDocumentBytes(len(body))
	l.Debug().
		Str("url", logging.RedactURL(url, f.dev)).
		Int("bytes", len(body)).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("document downloaded")
	return body, nil
}
