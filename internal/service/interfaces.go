package service

import (
	"context"

	"github.com/joshdurbin/golinks/internal/domain"
)

// LinkService is the operation set shared by the CLI and the HTTP handler
type LinkService interface {
	// Resolve turns a redirect path into its target URL and records the visit
	Resolve(ctx context.Context, path string) (string, error)

	// AddLink creates a new link
	AddLink(ctx context.Context, req domain.LinkRequest) (*domain.Link, error)

	// GetLink retrieves a link without recording a visit
	GetLink(ctx context.Context, shortcut string) (*domain.Link, error)

	// UpdateLink replaces a link's url and description, reporting whether it existed
	UpdateLink(ctx context.Context, req domain.LinkRequest) (bool, error)

	// DeleteLink removes a link, reporting whether it existed
	DeleteLink(ctx context.Context, shortcut string) (bool, error)

	// ListLinks retrieves all links, newest first
	ListLinks(ctx context.Context) ([]*domain.Link, error)

	// Stats summarizes all links
	Stats(ctx context.Context) (domain.Stats, error)

	// Close flushes pending clicks and closes the store
	Close() error
}
