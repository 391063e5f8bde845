package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// BlobStore keeps uploaded bytes on local disk; the database only holds
// metadata. Stored names are server-generated, so path traversal through
// client-supplied filenames is not possible.
type BlobStore struct {
	root string
}

// NewBlobStore creates the storage directory if needed.
func NewBlobStore(root string) (*BlobStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &BlobStore{root: root}, nil
}

// Save streams src into the store and returns the number of bytes written.
func (s *BlobStore) Save(storedName string, src io.Reader) (int64, error) {
	dst, err := os.Create(filepath.Join(s.root, storedName))
	if err != nil {
		return 0, fmt.Errorf("create blob: %w", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		os.Remove(dst.Name())
		return 0, fmt.Errorf("write blob: %w", err)
	}
	return written, nil
}

// Open returns a reader over a stored blob.
func (s *BlobStore) Open(storedName string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.root, storedName))
	if err != nil {
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Remove deletes a stored blob. A missing blob is not an error: the catalog
// row is the source of truth and may outlive a manually pruned file.
func (s *BlobStore) Remove(storedName string) error {
	err := os.Remove(filepath.Join(s.root, storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}
