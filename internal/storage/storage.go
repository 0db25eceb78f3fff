// Package storage publishes finished batch outputs to remote storage.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
)

// Publisher uploads a finished file and returns where it can be fetched.
type Publisher interface {
	// Publish uploads data under key and returns its public URL.
	Publish(ctx context.Context, key string, data io.Reader) (url string, err error)
}

// PublishFile uploads the file at filePath under key.
func PublishFile(ctx context.Context, p Publisher, key, filePath string) (string, error) {
	f, err := os.Open(filePath) // #nosec G304 - filePath is a batch output written by this program
	if err != nil {
		return "", fmt.Errorf("open %s: %w", filePath, err)
	}
	defer func() { _ = f.Close() }()

	return p.Publish(ctx, key, f)
}

// Key joins the object key segments with slashes, skipping empty ones.
func Key(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return path.Join(nonEmpty...)
}
