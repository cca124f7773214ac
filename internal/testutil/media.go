package testutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dom/vidshare-backend/internal/media"
	"github.com/google/uuid"
)

// FakeStore is an in-memory media.Store. Like the real store it removes the
// local file on every upload attempt.
type FakeStore struct {
	mu         sync.Mutex
	FailUpload bool
	FailDelete bool
	uploaded   []string
	deleted    []string
	objects    map[string]string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{objects: make(map[string]string)}
}

func (s *FakeStore) Upload(_ context.Context, localPath string) (*media.Asset, error) {
	if localPath == "" {
		return nil, nil
	}
	defer os.Remove(localPath)

	if _, err := os.Stat(localPath); err != nil {
		return nil, fmt.Errorf("stat %s: %w", localPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpload {
		return nil, errors.New("media host unavailable")
	}

	id := "media/" + uuid.NewString() + filepath.Ext(localPath)
	url := "https://media.test/" + id
	s.objects[id] = url
	s.uploaded = append(s.uploaded, id)
	return &media.Asset{URL: url, PublicID: id}, nil
}

func (s *FakeStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailDelete {
		return errors.New("media host unavailable")
	}
	delete(s.objects, publicID)
	s.deleted = append(s.deleted, publicID)
	return nil
}

func (s *FakeStore) SetFailUpload(fail bool) {
	s.mu.Lock()
	s.FailUpload = fail
	s.mu.Unlock()
}

func (s *FakeStore) Uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.uploaded...)
}

func (s *FakeStore) Deleted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// Has reports whether publicID is currently stored.
func (s *FakeStore) Has(publicID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[publicID]
	return ok
}

// SyncReaper deletes inline so tests can assert on the outcome without waiting.
type SyncReaper struct {
	store media.Store
	mu    sync.Mutex
	ids   []string
}

func NewSyncReaper(store media.Store) *SyncReaper {
	return &SyncReaper{store: store}
}

func (r *SyncReaper) Reap(ctx context.Context, publicID string) {
	if publicID == "" {
		return
	}
	r.mu.Lock()
	r.ids = append(r.ids, publicID)
	r.mu.Unlock()
	_ = r.store.Delete(ctx, publicID)
}

func (r *SyncReaper) Reaped() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

// WriteImage writes a small file into dir and returns its path.
func WriteImage(dir, name string) (string, error) {
	path := filepath.Join(dir, name)
	return path, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o644)
}
