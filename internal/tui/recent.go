package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"
)

const maxRecent = 5

// RecentEntry is a country the user picked in an earlier session.
type RecentEntry struct {
	Key        string    `json:"key"`
	SelectedAt time.Time `json:"selected_at"`
}

// RecentStore keeps the most recent country selections in a JSON file.
type RecentStore struct {
	path  string
	clock clockwork.Clock
}

// DefaultRecentPath is recent.json under the user's config directory.
func DefaultRecentPath() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "quakemap", "recent.json")
}

func NewRecentStore(path string, clock clockwork.Clock) *RecentStore {
	return &RecentStore{path: path, clock: clock}
}

// Load returns the stored entries, newest first. A missing or unreadable
// file yields no entries.
func (s *RecentStore) Load() []RecentEntry {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var entries []RecentEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	return entries
}

// Keys returns the stored country keys, newest first.
func (s *RecentStore) Keys() []string {
	entries := s.Load()
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Save moves key to the front of the list.
func (s *RecentStore) Save(key string) error {
	entries := s.Load()

	filtered := make([]RecentEntry, 0, len(entries)+1)
	filtered = append(filtered, RecentEntry{Key: key, SelectedAt: s.clock.Now()})
	for _, e := range entries {
		if e.Key != key {
			filtered = append(filtered, e)
		}
	}
	if len(filtered) > maxRecent {
		filtered = filtered[:maxRecent]
	}

	data, err := json.MarshalIndent(filtered, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding recent: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing recent: %w", err)
	}
	return nil
}
