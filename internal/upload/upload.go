// Package upload stores evidence files in object storage and returns their public URLs.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

// ErrNotConfigured is returned by the disabled uploader.
var ErrNotConfigured = errors.New("object storage not configured")

// File is one evidence attachment awaiting upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Uploader persists a single file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, f File) (string, error)
}

// UploadAll uploads files in parallel. URLs come back in submission order. The first failure
// cancels the remaining uploads and is returned.
func UploadAll(ctx context.Context, u Uploader, files []File) ([]string, error) {
	urls := make([]string, len(files))
	if len(files) == 0 {
		return urls, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		g.Go(func() error {
			url, err := u.Upload(gctx, f)
			if err != nil {
				return fmt.Errorf("upload %q: %w", f.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) Upload(context.Context, File) (string, error) {
	return "", ErrNotConfigured
}
