// Package noop provides an ObjectStorage that discards everything, used when
// the raw upload archive is disabled.
package noop

import (
	"context"
	"io"

	"restau/internal/port"
)

type storage struct{}

// NewStorage returns an ObjectStorage that accepts and drops every object.
func NewStorage() port.ObjectStorage {
	return storage{}
}

func (storage) Put(_ context.Context, obj port.ArchiveObject) (*port.ArchivedObject, error) {
	if obj.Body != nil {
		_, _ = io.Copy(io.Discard, obj.Body)
	}
	return &port.ArchivedObject{}, nil
}

func (storage) DeletePrefix(context.Context, string, string) error {
	return nil
}
