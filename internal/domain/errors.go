package domain

import "errors"

var (
	// ErrInvalidInput is returned when a shortcut or url is empty
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateShortcut is returned when adding a shortcut that already exists
	ErrDuplicateShortcut = errors.New("shortcut already exists")

	// ErrNotFound is returned when a shortcut has no record
	ErrNotFound = errors.New("shortcut not found")

	// ErrStorageUnavailable is returned when the store cannot be created or opened
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrStorageClosed is returned for operations on a closed store
	ErrStorageClosed = errors.New("storage closed")
)
