// Package filestore abstracts where base templates and generated documents
// live. Two backends: local disk (default) and S3-compatible object storage.
package filestore

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("file not found")

type FileStore interface {
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Exists(ctx context.Context, name string) (bool, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}
