package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/joshdurbin/golinks/internal/domain"
)

// LinkRepository is a mock implementation of repository.LinkRepository
type LinkRepository struct {
	mock.Mock
}

// Add inserts a new link
func (m *LinkRepository) Add(ctx context.Context, shortcut, url string, description *string) (*domain.Link, error) {
	args := m.Called(ctx, shortcut, url, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// Get retrieves a link by shortcut
func (m *LinkRepository) Get(ctx context.Context, shortcut string) (*domain.Link, error) {
	args := m.Called(ctx, shortcut)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Link), args.Error(1)
}

// List retrieves all links
func (m *LinkRepository) List(ctx context.Context) ([]*domain.Link, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Link), args.Error(1)
}

// Update replaces url and description
func (m *LinkRepository) Update(ctx context.Context, shortcut, url string, description *string) (bool, error) {
	args := m.Called(ctx, shortcut, url, description)
	return args.Bool(0), args.Error(1)
}

// Delete removes a link
func (m *LinkRepository) Delete(ctx context.Context, shortcut string) (bool, error) {
	args := m.Called(ctx, shortcut)
	return args.Bool(0), args.Error(1)
}

// IncrementClicks increments the click count of a link
func (m *LinkRepository) IncrementClicks(ctx context.Context, shortcut string) error {
	args := m.Called(ctx, shortcut)
	return args.Error(0)
}

// Close closes the repository
func (m *LinkRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
