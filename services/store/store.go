package store

import (
	"context"

	"swecron/internal/posting"
)

// Store represents the persisted listing history
type Store interface {
	// Load returns the full snapshot; an empty history is not an error
	Load(ctx context.Context) ([]posting.Posting, error)

	// Save replaces the full snapshot
	Save(ctx context.Context, postings []posting.Posting) error

	// Close releases any held connection
	Close() error
}
