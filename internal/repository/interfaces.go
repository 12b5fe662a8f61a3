package repository

import (
	"context"

	"github.com/joshdurbin/golinks/internal/domain"
)

// LinkRepository defines the registry store operations for link records.
// Implementations are the only writers of persisted link state.
type LinkRepository interface {
	// Add inserts a new link with a zero click count
	Add(ctx context.Context, shortcut, url string, description *string) (*domain.Link, error)

	// Get retrieves a link by its exact shortcut
	Get(ctx context.Context, shortcut string) (*domain.Link, error)

	// List retrieves all links, newest first
	List(ctx context.Context) ([]*domain.Link, error)

	// Update replaces url and description, reporting whether the link existed
	Update(ctx context.Context, shortcut, url string, description *string) (bool, error)

	// Delete removes a link, reporting whether it existed
	Delete(ctx context.Context, shortcut string) (bool, error)

	// IncrementClicks atomically adds one to the click count of a link
	IncrementClicks(ctx context.Context, shortcut string) error

	// Close releases the underlying storage handle
	Close() error
}
