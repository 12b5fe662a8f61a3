package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/golinks/internal/domain"
)

// LinkService is a mock implementation of service.LinkService
type LinkService struct {
	mock.Mock
}

// Resolve turns a redirect path into its target URL
func (m *LinkService) Resolve(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// AddLink creates a new link
func (m *LinkService) AddLink(ctx context.Context, req domain.LinkRequest) (*domain.Link, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// GetLink retrieves a link
func (m *LinkService) GetLink(ctx context.Context, shortcut string) (*domain.Link, error) {
	args := m.Called(ctx, shortcut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// UpdateLink replaces a link's url and description
func (m *LinkService) UpdateLink(ctx context.Context, req domain.LinkRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}

// DeleteLink removes a link
func (m *LinkService) DeleteLink(ctx context.Context, shortcut string) (bool, error) {
	args := m.Called(ctx, shortcut)
	return args.Bool(0), args.Error(1)
}

// ListLinks retrieves all links
func (m *LinkService) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

// Stats summarizes all links
func (m *LinkService) Stats(ctx context.Context) (domain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.Stats), args.Error(1)
}

// Close closes the service
func (m *LinkService) Close() error {
	args := m.Called()
	return args.Error(0)
}
