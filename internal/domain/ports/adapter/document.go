package adapter

import "context"

// DocumentFetcher downloads a referenced document into memory.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
