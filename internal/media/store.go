// Package media stores user-supplied images on an external object host and
// hands back stable reference URLs.
package media

import "context"

// Asset is a stored object: URL is what clients load, PublicID is what the
// host needs to delete it.
type Asset struct {
	URL      string
	PublicID string
}

// Store uploads local files and deletes stored objects.
//
// Upload always consumes the local file, removing it whether or not the
// upload succeeded. An empty localPath yields a nil Asset and no error.
type Store interface {
	Upload(ctx context.Context, localPath string) (*Asset, error)
	Delete(ctx context.Context, publicID string) error
}
