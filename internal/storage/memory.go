package storage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"veostudio/internal/domain"
)

// AssetPathPrefix is where handles are served by the HTTP API.
const AssetPathPrefix = "/v1/assets/"

// Handle is a revocable reference to a result asset held in memory.
type Handle struct {
	ID          string    `json:"id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"created_at"`
}

// URL is the playback location of the asset.
func (h Handle) URL() string {
	return AssetPathPrefix + h.ID
}

// Filename is the suggested download name, stamped with the creation time.
func (h Handle) Filename() string {
	return fmt.Sprintf("veo-generated-video-%d.mp4", h.CreatedAt.UnixMilli())
}

type blob struct {
	handle Handle
	data   []byte
}

// MemoryStore keeps result bytes in process memory until revoked.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[string]blob
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: map[string]blob{}, now: time.Now}
}

// Put registers data and returns its handle. An empty content type is sniffed.
func (s *MemoryStore) Put(data []byte, contentType string) (Handle, error) {
	if len(data) == 0 {
		return Handle{}, errors.New("storage: empty asset")
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	h := Handle{
		ID:          uuid.NewString(),
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   s.now(),
	}
	s.mu.Lock()
	s.blobs[h.ID] = blob{handle: h, data: data}
	s.mu.Unlock()
	return h, nil
}

// Open returns a seekable reader over the asset, or domain.ErrNotFound once revoked.
func (s *MemoryStore) Open(id string) (Handle, io.ReadSeeker, error) {
	s.mu.RLock()
	b, ok := s.blobs[id]
	s.mu.RUnlock()
	if !ok {
		return Handle{}, nil, domain.ErrNotFound
	}
	return b.handle, bytes.NewReader(b.data), nil
}

// Revoke releases the asset and reports whether it was still held.
func (s *MemoryStore) Revoke(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[id]; !ok {
		return false
	}
	delete(s.blobs, id)
	return true
}

// Len reports the number of live assets.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
