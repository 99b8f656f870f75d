package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	eventsFile   = "qdpi_events.jsonl"
	networksFile = "networks.jsonl"
	episodesFile = "episodes.jsonl"
	itemsFile    = "items.jsonl"
	bondsFile    = "bonds.jsonl"
)

// Store provides durable storage for one field-kit data directory.
// Safe for concurrent use; file reads and writes serialize on a single
// mutex, so a reader never sees a partially appended line.
type Store struct {
	dir string

	mu sync.Mutex
	// Highest assigned sequence number per episode. Seeded from the
	// event log at Open and advanced only under mu.
	seq map[string]int64
}

// Open creates or opens the data directory at dir. The sequence cache is
// seeded by scanning the existing event log, so Open after a crash resumes
// numbering without gaps.
//
// This function is idempotent - safe to call multiple times.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{dir: dir, seq: make(map[string]int64)}

	events, err := s.readEvents()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	for _, ev := range events {
		if ev.Seq > s.seq[ev.EpisodeID] {
			s.seq[ev.EpisodeID] = ev.Seq
		}
	}

	return s, nil
}

// Dir returns the data directory path.
func (s *Store) Dir() string { return s.dir }

func (s *Store) path(name string) string { return filepath.Join(s.dir, name) }
