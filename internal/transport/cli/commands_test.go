package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/service/mocks"
)

func strPtr(s string) *string {
	return &s
}

func newTestCommands(opener Opener) (*Commands, *mocks.LinkService, *bytes.Buffer) {
	svc := &mocks.LinkService{}
	out := &bytes.Buffer{}
	return NewCommands(svc, opener, out), svc, out
}

func TestNewCommands(t *testing.T) {
	svc := &mocks.LinkService{}
	out := &bytes.Buffer{}

	commands := NewCommands(svc, nil, out)

	assert.NotNil(t, commands)
	assert.Equal(t, svc, commands.links)
	assert.Equal(t, out, commands.out)
}

func TestCommands_Add(t *testing.T) {
	ctx := context.Background()

	t.Run("successful add", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		req := domain.LinkRequest{Shortcut: "gh", URL: "https://github.com", Description: strPtr("GitHub")}
		svc.On("AddLink", ctx, req).Return(&domain.Link{Shortcut: "gh", URL: "https://github.com"}, nil)

		err := commands.Add(ctx, "gh", "https://github.com", strPtr("GitHub"))

		require.NoError(t, err)
		assert.Equal(t, "✓ Added go/gh → https://github.com\n", out.String())
		svc.AssertExpectations(t)
	})

	t.Run("duplicate shortcut", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("AddLink", ctx, mock.Anything).Return(nil, fmt.Errorf("%w: gh", domain.ErrDuplicateShortcut))

		err := commands.Add(ctx, "gh", "https://example.com", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
		assert.Empty(t, out.String())
	})

	t.Run("invalid input", func(t *testing.T) {
		commands, svc, _ := newTestCommands(nil)
		svc.On("AddLink", ctx, mock.Anything).Return(nil, domain.ErrInvalidInput)

		err := commands.Add(ctx, "", "https://example.com", nil)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "required")
	})

	t.Run("storage failure passes through", func(t *testing.T) {
		commands, svc, _ := newTestCommands(nil)
		svc.On("AddLink", ctx, mock.Anything).Return(nil, domain.ErrStorageUnavailable)

		err := commands.Add(ctx, "gh", "https://github.com", nil)

		assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	})
}

func TestCommands_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("existing link", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("UpdateLink", ctx, domain.LinkRequest{Shortcut: "gh", URL: "https://github.com/new"}).Return(true, nil)

		require.NoError(t, commands.Update(ctx, "gh", "https://github.com/new", nil))
		assert.Equal(t, "✓ Updated go/gh → https://github.com/new\n", out.String())
	})

	t.Run("missing link", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("UpdateLink", ctx, mock.Anything).Return(false, nil)

		require.NoError(t, commands.Update(ctx, "nope", "https://example.com", nil))
		assert.Equal(t, "✗ Shortcut 'nope' not found\n", out.String())
	})
}

func TestCommands_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("existing link", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("DeleteLink", ctx, "gh").Return(true, nil)

		require.NoError(t, commands.Delete(ctx, "gh"))
		assert.Equal(t, "✓ Deleted go/gh\n", out.String())
	})

	t.Run("missing link", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("DeleteLink", ctx, "nope").Return(false, nil)

		require.NoError(t, commands.Delete(ctx, "nope"))
		assert.Equal(t, "✗ Shortcut 'nope' not found\n", out.String())
	})

	t.Run("storage error", func(t *testing.T) {
		commands, svc, _ := newTestCommands(nil)
		svc.On("DeleteLink", ctx, "gh").Return(false, domain.ErrStorageClosed)

		assert.ErrorIs(t, commands.Delete(ctx, "gh"), domain.ErrStorageClosed)
	})
}

func TestCommands_Info(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("with description", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("GetLink", ctx, "gh").Return(&domain.Link{
			Shortcut:    "gh",
			URL:         "https://github.com",
			Description: strPtr("GitHub"),
			CreatedAt:   created,
			UpdatedAt:   created,
			ClickCount:  4,
		}, nil)

		require.NoError(t, commands.Info(ctx, "gh"))

		output := out.String()
		assert.Contains(t, output, "Shortcut:    gh")
		assert.Contains(t, output, "URL:         https://github.com")
		assert.Contains(t, output, "Description: GitHub")
		assert.Contains(t, output, "Created At:  2024-01-02T03:04:05Z")
		assert.Contains(t, output, "Clicks:      4")
	})

	t.Run("without description", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("GetLink", ctx, "gh").Return(&domain.Link{Shortcut: "gh", URL: "https://github.com"}, nil)

		require.NoError(t, commands.Info(ctx, "gh"))
		assert.NotContains(t, out.String(), "Description:")
	})

	t.Run("not found", func(t *testing.T) {
		commands, svc, _ := newTestCommands(nil)
		svc.On("GetLink", ctx, "nope").Return(nil, domain.ErrNotFound)

		err := commands.Info(ctx, "nope")

		require.Error(t, err)
		assert.Equal(t, "shortcut 'nope' not found", err.Error())
	})
}

func TestCommands_List(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("ListLinks", ctx).Return([]*domain.Link{}, nil)

		require.NoError(t, commands.List(ctx))
		assert.Equal(t, "No links found\n", out.String())
	})

	t.Run("table", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		longURL := "https://example.com/" + strings.Repeat("a", 60)
		svc.On("ListLinks", ctx).Return([]*domain.Link{
			{Shortcut: "gh", URL: "https://github.com", Description: strPtr("GitHub"), ClickCount: 3, CreatedAt: time.Now()},
			{Shortcut: "long", URL: longURL, CreatedAt: time.Now()},
		}, nil)

		require.NoError(t, commands.List(ctx))

		lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Shortcut")
		assert.Contains(t, lines[0], "Clicks")
		assert.Contains(t, lines[2], "gh")
		assert.Contains(t, lines[2], "GitHub")
		assert.Contains(t, lines[3], "...")
		assert.NotContains(t, lines[3], longURL)
	})

	t.Run("error", func(t *testing.T) {
		commands, svc, _ := newTestCommands(nil)
		svc.On("ListLinks", ctx).Return(nil, errors.New("boom"))

		assert.Error(t, commands.List(ctx))
	})
}

func TestCommands_Stats(t *testing.T) {
	ctx := context.Background()

	t.Run("with links", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("Stats", ctx).Return(domain.Stats{
			TotalLinks:  3,
			TotalClicks: 11,
			MostClicked: &domain.Link{Shortcut: "b", URL: "https://b.example", ClickCount: 7},
		}, nil)

		require.NoError(t, commands.Stats(ctx))

		output := out.String()
		assert.Contains(t, output, "Total links:  3")
		assert.Contains(t, output, "Total clicks: 11")
		assert.Contains(t, output, "go/b (7 clicks)")
	})

	t.Run("empty store", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("Stats", ctx).Return(domain.Stats{}, nil)

		require.NoError(t, commands.Stats(ctx))
		assert.Contains(t, out.String(), "Most clicked: none")
	})
}

func TestCommands_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("opens resolved url", func(t *testing.T) {
		var opened string
		commands, svc, out := newTestCommands(OpenerFunc(func(url string) error {
			opened = url
			return nil
		}))
		svc.On("Resolve", ctx, "gh").Return("https://github.com", nil)

		require.NoError(t, commands.Open(ctx, "gh"))
		assert.Equal(t, "https://github.com", opened)
		assert.Equal(t, "→ https://github.com\n", out.String())
	})

	t.Run("not found", func(t *testing.T) {
		called := false
		commands, svc, _ := newTestCommands(OpenerFunc(func(string) error {
			called = true
			return nil
		}))
		svc.On("Resolve", ctx, "nope").Return("", domain.ErrNotFound)

		err := commands.Open(ctx, "nope")

		require.Error(t, err)
		assert.Equal(t, "shortcut 'nope' not found", err.Error())
		assert.False(t, called)
	})

	t.Run("opener failure", func(t *testing.T) {
		commands, svc, out := newTestCommands(OpenerFunc(func(string) error {
			return errors.New("no browser")
		}))
		svc.On("Resolve", ctx, "gh").Return("https://github.com", nil)

		err := commands.Open(ctx, "gh")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no browser")
		assert.Contains(t, out.String(), "https://github.com")
	})

	t.Run("nil opener prints only", func(t *testing.T) {
		commands, svc, out := newTestCommands(nil)
		svc.On("Resolve", ctx, "gh").Return("https://github.com", nil)

		require.NoError(t, commands.Open(ctx, "gh"))
		assert.Equal(t, "→ https://github.com\n", out.String())
	})
}
