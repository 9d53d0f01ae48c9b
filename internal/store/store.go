package store

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/goccy/go-json"
)

// Store owns the two persisted documents: the allow-list (a JSON array of
// user ids) and the per-user preferences (a JSON object keyed by user id).
// Every mutation rewrites the whole file under the store's lock.
type Store struct {
	mu          sync.Mutex
	allowedPath string
	prefsPath   string
	allowed     []int64
	prefs       map[string]json.RawMessage
}

func Open(allowedPath, prefsPath string) *Store {
	s := &Store{
		allowedPath: allowedPath,
		prefsPath:   prefsPath,
		prefs:       map[string]json.RawMessage{},
	}
	loadFile(allowedPath, &s.allowed)
	loadFile(prefsPath, &s.prefs)
	return s
}

// loadFile fails soft: a missing or malformed document leaves the default in
// place so a broken file never takes the bot down.
func loadFile[T any](path string, out *T) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Error("store#load", "path", path, "err", err)
		}
		return
	}
	var parsed T
	if err := json.Unmarshal(data, &parsed); err != nil {
		slog.Error("store#load", "path", path, "err", err)
		return
	}
	*out = parsed
}

func saveFile(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("store: encode %s, %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s, %w", path, err)
	}
	return nil
}

func (s *Store) Allowed(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.allowed, id)
}

// List returns the allow-listed ids in ascending order.
func (s *Store) List() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(slices.Values(s.allowed))
}

// Add inserts id if absent and persists the document. The bool reports
// whether the set changed, so a second add of the same id is a no-op.
func (s *Store) Add(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.allowed, id) {
		return false, nil
	}
	s.allowed = append(s.allowed, id)
	return true, saveFile(s.allowedPath, s.allowed)
}

func (s *Store) Remove(id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.allowed, id)
	if i < 0 {
		return false, nil
	}
	s.allowed = slices.Delete(s.allowed, i, i+1)
	return true, saveFile(s.allowedPath, s.allowed)
}

func (s *Store) Preferences(id int64) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.prefs[fmt.Sprint(id)]
	return v, ok
}

func (s *Store) SetPreferences(id int64, doc json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[fmt.Sprint(id)] = doc
	return saveFile(s.prefsPath, s.prefs)
}
