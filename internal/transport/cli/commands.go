// Package cli implements the golinks command-line operations on top of
// the shared link service.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/browser"

	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/service"
)

const (
	timeLayout  = "2006-01-02 15:04:05"
	maxURLWidth = 50
)

// Opener opens a resolved URL, typically in the user's browser
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener
type OpenerFunc func(url string) error

// Open calls f(url)
func (f OpenerFunc) Open(url string) error {
	return f(url)
}

// BrowserOpener opens URLs in the system's default browser
var BrowserOpener Opener = OpenerFunc(browser.OpenURL)

// Commands provides command-line operations
type Commands struct {
	links  service.LinkService
	opener Opener
	out    io.Writer
}

// NewCommands creates a new Commands instance writing to out
func NewCommands(links service.LinkService, opener Opener, out io.Writer) *Commands {
	return &Commands{
		links:  links,
		opener: opener,
		out:    out,
	}
}

// Add creates a link and reports it
func (c *Commands) Add(ctx context.Context, shortcut, url string, description *string) error {
	link, err := c.links.AddLink(ctx, domain.LinkRequest{
		Shortcut:    shortcut,
		URL:         url,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateShortcut) {
			return fmt.Errorf("shortcut '%s' already exists", shortcut)
		}
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("shortcut and url are required")
		}
		return err
	}

	fmt.Fprintf(c.out, "✓ Added go/%s → %s\n", link.Shortcut, link.URL)
	return nil
}

// Update replaces a link's url and description
func (c *Commands) Update(ctx context.Context, shortcut, url string, description *string) error {
	updated, err := c.links.UpdateLink(ctx, domain.LinkRequest{
		Shortcut:    shortcut,
		URL:         url,
		Description: description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("shortcut and url are required")
		}
		return err
	}

	if !updated {
		fmt.Fprintf(c.out, "✗ Shortcut '%s' not found\n", shortcut)
		return nil
	}

	fmt.Fprintf(c.out, "✓ Updated go/%s → %s\n", shortcut, url)
	return nil
}

// Delete removes a link
func (c *Commands) Delete(ctx context.Context, shortcut string) error {
	deleted, err := c.links.DeleteLink(ctx, shortcut)
	if err != nil {
		return err
	}

	if !deleted {
		fmt.Fprintf(c.out, "✗ Shortcut '%s' not found\n", shortcut)
		return nil
	}

	fmt.Fprintf(c.out, "✓ Deleted go/%s\n", shortcut)
	return nil
}

// Info displays a single link without counting a visit
func (c *Commands) Info(ctx context.Context, shortcut string) error {
	link, err := c.links.GetLink(ctx, shortcut)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("shortcut '%s' not found", shortcut)
		}
		return err
	}

	fmt.Fprintf(c.out, "Shortcut:    %s\n", link.Shortcut)
	fmt.Fprintf(c.out, "URL:         %s\n", link.URL)
	if link.Description != nil {
		fmt.Fprintf(c.out, "Description: %s\n", *link.Description)
	}
	fmt.Fprintf(c.out, "Created At:  %s\n", link.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(c.out, "Updated At:  %s\n", link.UpdatedAt.Format(time.RFC3339))
	fmt.Fprintf(c.out, "Clicks:      %d\n", link.ClickCount)

	return nil
}

// List displays all links in a table
func (c *Commands) List(ctx context.Context) error {
	links, err := c.links.ListLinks(ctx)
	if err != nil {
		return err
	}

	if len(links) == 0 {
		fmt.Fprintln(c.out, "No links found")
		return nil
	}

	fmt.Fprintf(c.out, "%-15s %-50s %-20s %-8s %s\n", "Shortcut", "URL", "Created At", "Clicks", "Description")
	fmt.Fprintln(c.out, strings.Repeat("-", 120))

	for _, link := range links {
		fmt.Fprintf(c.out, "%-15s %-50s %-20s %-8d %s\n",
			link.Shortcut,
			truncateURL(link.URL),
			link.CreatedAt.Local().Format(timeLayout),
			link.ClickCount,
			link.DescriptionOrEmpty(),
		)
	}

	return nil
}

// Stats displays totals and the most clicked link
func (c *Commands) Stats(ctx context.Context) error {
	stats, err := c.links.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Total links:  %d\n", stats.TotalLinks)
	fmt.Fprintf(c.out, "Total clicks: %d\n", stats.TotalClicks)
	if stats.MostClicked != nil {
		fmt.Fprintf(c.out, "Most clicked: go/%s (%d clicks) → %s\n",
			stats.MostClicked.Shortcut, stats.MostClicked.ClickCount, stats.MostClicked.URL)
	} else {
		fmt.Fprintln(c.out, "Most clicked: none")
	}

	return nil
}

// Open resolves a shortcut, counting the visit, and hands the target to
// the opener
func (c *Commands) Open(ctx context.Context, shortcut string) error {
	target, err := c.links.Resolve(ctx, shortcut)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("shortcut '%s' not found", shortcut)
		}
		return err
	}

	fmt.Fprintf(c.out, "→ %s\n", target)

	if c.opener == nil {
		return nil
	}
	if err := c.opener.Open(target); err != nil {
		return fmt.Errorf("failed to open %s: %w", target, err)
	}

	return nil
}

func truncateURL(url string) string {
	if len(url) > maxURLWidth {
		return url[:maxURLWidth-3] + "..."
	}
	return url
}
