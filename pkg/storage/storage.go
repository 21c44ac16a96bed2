// Package storage persists generated export artifacts so clients can
// re-download a CSV after the conversion request completes.
package storage

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// FileInfo contains metadata about a stored artifact.
type FileInfo struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	Path        string    `json:"path"` // internal storage path
	CreatedAt   time.Time `json:"created_at"`
}

// Storage defines the interface for artifact storage operations.
type Storage interface {
	// Store persists an artifact and returns its metadata.
	Store(ctx context.Context, filename string, contentType string, r io.Reader) (*FileInfo, error)

	// Open retrieves an artifact by its ID.
	Open(ctx context.Context, fileID uuid.UUID) (io.ReadCloser, *FileInfo, error)

	// Delete removes an artifact by its ID.
	Delete(ctx context.Context, fileID uuid.UUID) error

	// List returns every stored artifact.
	List(ctx context.Context) ([]*FileInfo, error)

	// GetInfo returns metadata without opening the artifact.
	GetInfo(ctx context.Context, fileID uuid.UUID) (*FileInfo, error)

	// PruneOlderThan deletes artifacts created before the cutoff and
	// reports how many were removed.
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
