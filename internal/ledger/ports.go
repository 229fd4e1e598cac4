package ledger

import (
	"context"
	"errors"
)

// Storage is the durable key-value slot holding the serialized ledger.
// Implementations are bound to a single key.
type Storage interface {
	// Load returns the stored bytes, or nil and no error when nothing has
	// been stored yet.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored value. It must not return before the write
	// is durable.
	Save(ctx context.Context, data []byte) error
	// Erase removes the stored value. Erasing an empty slot is not an error.
	Erase(ctx context.Context) error
}

var (
	ErrDuplicateDate = errors.New("a day with this date already exists")
	ErrFutureDate    = errors.New("date is in the future")
	ErrNotFound      = errors.New("not found")
	ErrStorageWrite  = errors.New("changes could not be saved")
	ErrStorageRead   = errors.New("stored data could not be read")
)
