package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joshdurbin/golinks/internal/clicks"
	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/metrics"
	"github.com/joshdurbin/golinks/internal/repository"
)

// linkService implements LinkService
type linkService struct {
	repo     repository.LinkRepository
	recorder clicks.Recorder
	log      *slog.Logger
	metrics  *metrics.Metrics
}

// NewLinkService creates a link service over repo. Visits found by Resolve
// are handed to recorder.
func NewLinkService(repo repository.LinkRepository, recorder clicks.Recorder, log *slog.Logger, m *metrics.Metrics) LinkService {
	return &linkService{
		repo:     repo,
		recorder: recorder,
		log:      log,
		metrics:  m,
	}
}

// Resolve strips the leading separator from path and looks the shortcut
// up. A hit records a click through the recorder, whose outcome never
// reaches the caller. A miss has no side effects.
func (s *linkService) Resolve(ctx context.Context, path string) (string, error) {
	shortcut := strings.TrimPrefix(path, "/")
	if shortcut == "" {
		return "", fmt.Errorf("%w: empty shortcut", domain.ErrNotFound)
	}

	link, err := s.repo.Get(ctx, shortcut)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.ObserveRedirect(false)
			return "", err
		}
		return "", fmt.Errorf("failed to resolve %s: %w", shortcut, err)
	}

	s.metrics.ObserveRedirect(true)
	s.recorder.Record(link.Shortcut)

	return link.URL, nil
}

// AddLink creates a new link
func (s *linkService) AddLink(ctx context.Context, req domain.LinkRequest) (*domain.Link, error) {
	if req.Shortcut == "" || req.URL == "" {
		err := fmt.Errorf("%w: shortcut and url are required", domain.ErrInvalidInput)
		s.metrics.ObserveMutation("add", err)
		return nil, err
	}

	link, err := s.repo.Add(ctx, req.Shortcut, req.URL, req.Description)
	s.metrics.ObserveMutation("add", err)
	if err != nil {
		return nil, err
	}

	s.log.Info("link added", "shortcut", link.Shortcut, "url", link.URL)
	return link, nil
}

// GetLink retrieves a link without recording a visit
func (s *linkService) GetLink(ctx context.Context, shortcut string) (*domain.Link, error) {
	return s.repo.Get(ctx, shortcut)
}

// UpdateLink replaces a link's url and description
func (s *linkService) UpdateLink(ctx context.Context, req domain.LinkRequest) (bool, error) {
	if req.Shortcut == "" || req.URL == "" {
		err := fmt.Errorf("%w: shortcut and url are required", domain.ErrInvalidInput)
		s.metrics.ObserveMutation("update", err)
		return false, err
	}

	updated, err := s.repo.Update(ctx, req.Shortcut, req.URL, req.Description)
	s.metrics.ObserveMutation("update", err)
	if err != nil {
		return false, err
	}

	if updated {
		s.log.Info("link updated", "shortcut", req.Shortcut, "url", req.URL)
	}
	return updated, nil
}

// DeleteLink removes a link
func (s *linkService) DeleteLink(ctx context.Context, shortcut string) (bool, error) {
	deleted, err := s.repo.Delete(ctx, shortcut)
	s.metrics.ObserveMutation("delete", err)
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info("link deleted", "shortcut", shortcut)
	}
	return deleted, nil
}

// ListLinks retrieves all links, newest first
func (s *linkService) ListLinks(ctx context.Context) ([]*domain.Link, error) {
	return s.repo.List(ctx)
}

// Stats summarizes all links
func (s *linkService) Stats(ctx context.Context) (domain.Stats, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return ComputeStats(links), nil
}

// Close flushes pending clicks before closing the store
func (s *linkService) Close() error {
	if err := s.recorder.Close(); err != nil {
		return fmt.Errorf("failed to close click recorder: %w", err)
	}

	if err := s.repo.Close(); err != nil {
		return fmt.Errorf("failed to close repository: %w", err)
	}

	return nil
}

// ComputeStats totals the links and picks the most clicked one. Ties go to
// the first link in input order; MostClicked is nil for no links.
func ComputeStats(links []*domain.Link) domain.Stats {
	stats := domain.Stats{TotalLinks: len(links)}

	for _, link := range links {
		stats.TotalClicks += link.ClickCount
		if stats.MostClicked == nil || link.ClickCount > stats.MostClicked.ClickCount {
			stats.MostClicked = link
		}
	}

	return stats
}

// Ensure linkService implements LinkService interface
var _ LinkService = (*linkService)(nil)
