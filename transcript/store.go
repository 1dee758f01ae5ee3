// Package transcript persists finished conversations as JSON documents,
// one file per conversation under ~/.apprised/transcripts.
package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pmaederyork/apprised/agent"
	"github.com/pmaederyork/apprised/chatmodel"
)

// Stored is the serializable representation of a conversation. Turns
// carry what the backend needs to rebuild context; Lines carry what a
// renderer needs to replay the display, including tool activity and
// confirmation outcomes that never enter the turn history.
type Stored struct {
	ID        string              `json:"id"`
	Title     string              `json:"title,omitempty"`
	Agents    []string            `json:"agents,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
	Turns     []agent.HistoryTurn `json:"turns,omitempty"`
	Lines     []chatmodel.Line    `json:"lines,omitempty"`
}

// Meta contains minimal transcript info for listing.
type Meta struct {
	ID        string    `json:"id"`
	Title     string    `json:"title,omitempty"`
	Agents    []string  `json:"agents,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LineCount int       `json:"line_count"`
}

// Store provides persistence for transcripts.
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// DefaultStoreDir returns the default store directory
// (~/.apprised/transcripts).
func DefaultStoreDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".apprised", "transcripts"), nil
}

// NewStore creates a transcript store rooted at baseDir. If baseDir is
// empty, the default directory is used.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		var err error
		baseDir, err = DefaultStoreDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}

	return &Store{baseDir: baseDir}, nil
}

// Dir returns the directory the store writes into.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.baseDir, sanitizeID(id)+".json")
}

// sanitizeID strips characters that would let an ID escape the store
// directory. IDs the store generates are UUIDs and pass through
// unchanged; this guards IDs arriving from the command line.
func sanitizeID(id string) string {
	id = strings.ReplaceAll(id, "/", "_")
	id = strings.ReplaceAll(id, "\\", "_")
	id = strings.ReplaceAll(id, ":", "_")
	id = strings.ReplaceAll(id, "..", "_")
	return id
}

// Save writes a transcript to disk, assigning an ID and timestamps on
// first save. The write is atomic: a temp file is renamed over the
// destination so a crash mid-write cannot leave a torn document.
func (s *Store) Save(tr *Stored) error {
	if tr == nil {
		return fmt.Errorf("transcript is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if tr.ID == "" {
		tr.ID = uuid.NewString()
	}
	if tr.CreatedAt.IsZero() {
		tr.CreatedAt = now
	}
	tr.UpdatedAt = now

	data, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	path := s.path(tr.ID)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename transcript file: %w", err)
	}

	return nil
}

// Load reads a transcript from disk by ID.
func (s *Store) Load(id string) (*Stored, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("transcript not found: %s", id)
		}
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var tr Stored
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &tr, nil
}

// Delete removes a transcript from disk.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(id)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("transcript not found: %s", id)
		}
		return fmt.Errorf("failed to delete transcript: %w", err)
	}

	return nil
}

// List returns metadata for all stored transcripts, most recently
// updated first. Unreadable or malformed files are skipped rather than
// failing the whole listing.
func (s *Store) List() ([]*Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Meta{}, nil
		}
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var metas []*Meta
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}

		var tr Stored
		if err := json.Unmarshal(data, &tr); err != nil {
			continue
		}

		metas = append(metas, &Meta{
			ID:        tr.ID,
			Title:     tr.Title,
			Agents:    tr.Agents,
			CreatedAt: tr.CreatedAt,
			UpdatedAt: tr.UpdatedAt,
			LineCount: len(tr.Lines),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// ReadFile decodes a transcript document directly from an arbitrary
// path, outside any store. The log viewer uses this for files passed on
// the command line.
func ReadFile(path string) (*Stored, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}
	var tr Stored
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	if tr.ID == "" && len(tr.Lines) == 0 && len(tr.Turns) == 0 {
		return nil, fmt.Errorf("not a transcript document: %s", path)
	}
	return &tr, nil
}
