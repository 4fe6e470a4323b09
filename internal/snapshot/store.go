// Package snapshot stores failure screenshots next to a JSON metadata sidecar.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("snapshot not found")
	ErrInvalidID = errors.New("invalid snapshot id")
)

// ScreenshotMeta describes one stored screenshot.
type ScreenshotMeta struct {
	ID        string    `json:"id"`
	Scenario  string    `json:"scenario"`
	RunID     string    `json:"run_id,omitempty"`
	URL       string    `json:"url,omitempty"`
	Format    string    `json:"format"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	Failures  []string  `json:"failures,omitempty"`
}

// Store manages screenshot files on disk.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

func validateID(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil || parsed.String() != id {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Save writes the image and its sidecar. A missing ID, format or timestamp is
// filled in; the stored metadata is returned.
func (s *Store) Save(meta ScreenshotMeta, image []byte) (ScreenshotMeta, error) {
	if meta.ID == "" {
		meta.ID = uuid.NewString()
	}
	if err := validateID(meta.ID); err != nil {
		return ScreenshotMeta{}, err
	}
	if meta.Format == "" {
		meta.Format = "png"
	}
	if meta.CreatedAt.IsZero() {
		meta.CreatedAt = time.Now().UTC()
	}
	meta.SizeBytes = len(image)

	s.mu.Lock()
	defer s.mu.Unlock()

	imgPath := filepath.Join(s.dir, meta.ID+"."+meta.Format)
	jsonPath := filepath.Join(s.dir, meta.ID+".json")

	if err := os.WriteFile(imgPath, image, 0o644); err != nil {
		return ScreenshotMeta{}, fmt.Errorf("snapshot store: write image: %w", err)
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.Remove(imgPath)
		return ScreenshotMeta{}, fmt.Errorf("snapshot store: marshal meta: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		_ = os.Remove(imgPath)
		return ScreenshotMeta{}, fmt.Errorf("snapshot store: write meta: %w", err)
	}
	return meta, nil
}

// Get reads screenshot metadata by ID.
func (s *Store) Get(id string) (ScreenshotMeta, error) {
	if err := validateID(id); err != nil {
		return ScreenshotMeta{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMeta(filepath.Join(s.dir, id+".json"))
}

func (s *Store) readMeta(path string) (ScreenshotMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ScreenshotMeta{}, fmt.Errorf("%w: %s", ErrNotFound, filepath.Base(path))
		}
		return ScreenshotMeta{}, fmt.Errorf("snapshot store: read meta: %w", err)
	}
	var meta ScreenshotMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return ScreenshotMeta{}, fmt.Errorf("snapshot store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns screenshots newest first, optionally only for one scenario.
func (s *Store) List(scenario string) ([]ScreenshotMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: glob: %w", err)
	}

	metas := make([]ScreenshotMeta, 0, len(matches))
	for _, path := range matches {
		meta, err := s.readMeta(path)
		if err != nil {
			continue
		}
		if scenario != "" && meta.Scenario != scenario {
			continue
		}
		metas = append(metas, meta)
	}
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// ReadImage returns the raw image bytes and their format.
func (s *Store) ReadImage(id string) ([]byte, string, error) {
	meta, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(filepath.Join(s.dir, id+"."+meta.Format))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: image for %s", ErrNotFound, id)
		}
		return nil, "", fmt.Errorf("snapshot store: read image: %w", err)
	}
	return data, meta.Format, nil
}

// Delete removes the image and metadata files.
func (s *Store) Delete(id string) error {
	meta, err := s.Get(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(filepath.Join(s.dir, id+"."+meta.Format)); err != nil {
		slog.Debug("snapshot image cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(filepath.Join(s.dir, id+".json")); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("snapshot store: remove meta: %w", err)
	}
	return nil
}

// Prune keeps the newest keep screenshots and deletes the rest.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	metas, err := s.List("")
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, meta := range metas[min(keep, len(metas)):] {
		if err := s.Delete(meta.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
