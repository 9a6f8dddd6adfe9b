package fs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cfdibox/internal/port"
)

type fsClient struct {
	root string
}

// NewFSClient creates an ObjectStorage that writes objects under
// root/bucket/key on the local filesystem.
func NewFSClient(root string) port.ObjectStorage {
	return &fsClient{root: root}
}

func (c *fsClient) Upload(ctx context.Context, input port.UploadInput) (*port.UploadOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(c.root, input.Bucket, filepath.FromSlash(input.Key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("fs upload mkdir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("fs upload create: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := io.Copy(f, input.Body); err != nil {
		return nil, fmt.Errorf("fs upload write: %w", err)
	}

	return &port.UploadOutput{Location: path}, nil
}

func (c *fsClient) Delete(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(c.root, bucket, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("fs delete: %w", err)
	}
	return nil
}
