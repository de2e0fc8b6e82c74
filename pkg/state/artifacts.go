package state

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrArtifactNotFound is returned by Read when no artifact exists under the
// requested name.
var ErrArtifactNotFound = errors.New("artifact not found")

// ArtifactStore is the session's virtual file set. Retrieval tools park large
// text here instead of injecting it into the transcript, so the conversation
// the model re-reads every iteration stays bounded.
//
// Writes are serialized by a single mutex; concurrent sub-sessions writing
// different keys never lose updates, and same-key writes are last-write-wins
// by completion order.
type ArtifactStore struct {
	mu    sync.RWMutex
	files map[string]string
}

// ArtifactInfo describes one stored artifact for listings.
type ArtifactInfo struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// NewArtifactStore creates an empty store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{
		files: make(map[string]string),
	}
}

// Write creates or overwrites the artifact under name.
func (s *ArtifactStore) Write(name, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = content
}

// Read returns the full content stored under name.
func (s *ArtifactStore) Read(name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.files[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrArtifactNotFound, name)
	}
	return content, nil
}

// List returns name and size for every artifact, sorted by name.
func (s *ArtifactStore) List() []ArtifactInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]ArtifactInfo, 0, len(s.files))
	for name, content := range s.files {
		infos = append(infos, ArtifactInfo{Name: name, Size: len(content)})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Len returns the number of stored artifacts.
func (s *ArtifactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
