package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/joshdurbin/golinks/internal/domain"
	"github.com/joshdurbin/golinks/internal/repository"
)

// busyTimeout bounds how long a writer waits on a lock held by another
// connection or another process sharing the file
const busyTimeout = 5 * time.Second

var errInvalidRow = errors.New("invalid link row")

// Repository implements repository.LinkRepository using SQLite
type Repository struct {
	db     *sql.DB
	path   string
	now    func() time.Time
	closed atomic.Bool
}

// Option configures a Repository
type Option func(*Repository)

// WithClock overrides the time source used for created_at and updated_at
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		r.now = now
	}
}

// New opens (creating if needed) the SQLite store at databasePath.
// The parent directory is created when missing and pending migrations are
// applied, so calling New on an initialized store is safe.
func New(databasePath string, opts ...Option) (*Repository, error) {
	if databasePath == "" {
		return nil, fmt.Errorf("%w: database path is empty", domain.ErrStorageUnavailable)
	}

	if err := os.MkdirAll(filepath.Dir(databasePath), 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create storage directory: %v", domain.ErrStorageUnavailable, err)
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate",
		databasePath, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open database: %v", domain.ErrStorageUnavailable, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to connect to database: %v", domain.ErrStorageUnavailable, err)
	}

	repo := &Repository{
		db:   db,
		path: databasePath,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}

	if err := repo.runMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to run migrations: %v", domain.ErrStorageUnavailable, err)
	}

	return repo, nil
}

// Path returns the database file location
func (r *Repository) Path() string {
	return r.path
}

// Add inserts a new link with a zero click count
func (r *Repository) Add(ctx context.Context, shortcut, url string, description *string) (*domain.Link, error) {
	if r.closed.Load() {
		return nil, domain.ErrStorageClosed
	}
	if shortcut == "" || url == "" {
		return nil, fmt.Errorf("%w: shortcut and url are required", domain.ErrInvalidInput)
	}

	now := r.now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO links (shortcut, url, description, created_at, updated_at, click_count)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		shortcut, url, nullString(description), now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateShortcut, shortcut)
		}
		return nil, r.wrap("create link", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, r.wrap("read link id", err)
	}

	return &domain.Link{
		ID:          id,
		Shortcut:    shortcut,
		URL:         url,
		Description: copyString(description),
		CreatedAt:   now,
		UpdatedAt:   now,
		ClickCount:  0,
	}, nil
}

// Get retrieves a link by its exact, case-sensitive shortcut
func (r *Repository) Get(ctx context.Context, shortcut string) (*domain.Link, error) {
	if r.closed.Load() {
		return nil, domain.ErrStorageClosed
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, shortcut, url, description, created_at, updated_at, click_count
		 FROM links WHERE shortcut = ?`, shortcut)

	link, err := scanLink(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, shortcut)
		}
		return nil, r.wrap("get link", err)
	}

	return link, nil
}

// List retrieves all links ordered by creation time, newest first.
// Links created at the same instant are ordered newest insertion first.
func (r *Repository) List(ctx context.Context) ([]*domain.Link, error) {
	if r.closed.Load() {
		return nil, domain.ErrStorageClosed
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, shortcut, url, description, created_at, updated_at, click_count
		 FROM links ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, r.wrap("list links", err)
	}
	defer rows.Close()

	links := make([]*domain.Link, 0)
	for rows.Next() {
		link, err := scanLink(rows)
		if err != nil {
			return nil, r.wrap("list links", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, r.wrap("list links", err)
	}

	return links, nil
}

// Update replaces url and description and refreshes updated_at.
// It reports false without error when no link has the shortcut.
func (r *Repository) Update(ctx context.Context, shortcut, url string, description *string) (bool, error) {
	if r.closed.Load() {
		return false, domain.ErrStorageClosed
	}
	if shortcut == "" || url == "" {
		return false, fmt.Errorf("%w: shortcut and url are required", domain.ErrInvalidInput)
	}

	// updated_at never moves behind created_at, even if the clock does
	now := r.now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE links
		 SET url = ?, description = ?,
		     updated_at = CASE WHEN created_at > ? THEN created_at ELSE ? END
		 WHERE shortcut = ?`,
		url, nullString(description), now, now, shortcut)
	if err != nil {
		return false, r.wrap("update link", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, r.wrap("update link", err)
	}

	return affected > 0, nil
}

// Delete removes a link, reporting whether it existed
func (r *Repository) Delete(ctx context.Context, shortcut string) (bool, error) {
	if r.closed.Load() {
		return false, domain.ErrStorageClosed
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM links WHERE shortcut = ?", shortcut)
	if err != nil {
		return false, r.wrap("delete link", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, r.wrap("delete link", err)
	}

	return affected > 0, nil
}

// IncrementClicks adds one to the click count in a single statement so
// concurrent increments never overwrite each other. Unknown shortcuts are
// ignored. updated_at is left untouched.
func (r *Repository) IncrementClicks(ctx context.Context, shortcut string) error {
	if r.closed.Load() {
		return domain.ErrStorageClosed
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE links SET click_count = click_count + 1 WHERE shortcut = ?", shortcut); err != nil {
		return r.wrap("increment clicks", err)
	}

	return nil
}

// Close closes the repository connection. Closing twice is a no-op.
func (r *Repository) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	return r.db.Close()
}

// wrap annotates err, reporting ErrStorageClosed if the store was closed
// while the operation was in flight
func (r *Repository) wrap(op string, err error) error {
	if r.closed.Load() {
		return fmt.Errorf("failed to %s: %w", op, domain.ErrStorageClosed)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

// linkRow mirrors the links table with every column nullable so that
// malformed rows are detected instead of silently zero-valued
type linkRow struct {
	ID          sql.NullInt64
	Shortcut    sql.NullString
	URL         sql.NullString
	Description sql.NullString
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
	ClickCount  sql.NullInt64
}

func scanLink(s rowScanner) (*domain.Link, error) {
	var row linkRow
	if err := s.Scan(&row.ID, &row.Shortcut, &row.URL, &row.Description,
		&row.CreatedAt, &row.UpdatedAt, &row.ClickCount); err != nil {
		return nil, err
	}
	return row.toDomain()
}

// toDomain validates the row and converts it to a domain.Link
func (row linkRow) toDomain() (*domain.Link, error) {
	switch {
	case !row.ID.Valid:
		return nil, fmt.Errorf("%w: missing id", errInvalidRow)
	case !row.Shortcut.Valid || row.Shortcut.String == "":
		return nil, fmt.Errorf("%w: id %d has no shortcut", errInvalidRow, row.ID.Int64)
	case !row.URL.Valid || row.URL.String == "":
		return nil, fmt.Errorf("%w: %q has no url", errInvalidRow, row.Shortcut.String)
	case !row.CreatedAt.Valid || !row.UpdatedAt.Valid:
		return nil, fmt.Errorf("%w: %q has no timestamps", errInvalidRow, row.Shortcut.String)
	case !row.ClickCount.Valid || row.ClickCount.Int64 < 0:
		return nil, fmt.Errorf("%w: %q has an invalid click count", errInvalidRow, row.Shortcut.String)
	}

	link := &domain.Link{
		ID:         row.ID.Int64,
		Shortcut:   row.Shortcut.String,
		URL:        row.URL.String,
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
		ClickCount: row.ClickCount.Int64,
	}
	if row.Description.Valid {
		description := row.Description.String
		link.Description = &description
	}

	return link, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// Ensure Repository implements the interface
var _ repository.LinkRepository = (*Repository)(nil)
