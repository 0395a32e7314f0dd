package port

import (
	"context"
	"io"
)

// ArchiveObject is one raw export stored after ingestion. Metadata is copied
// onto the stored object as-is.
type ArchiveObject struct {
	Bucket      string
	Key         string
	Body        io.Reader
	ContentType string
	Size        int64
	Metadata    map[string]string
}

// ArchivedObject locates a stored object.
type ArchivedObject struct {
	Location string
	ETag     string
}

// ObjectStorage archives raw exports and purges them with their report.
type ObjectStorage interface {
	Put(ctx context.Context, obj ArchiveObject) (*ArchivedObject, error)
	DeletePrefix(ctx context.Context, bucket, prefix string) error
}
