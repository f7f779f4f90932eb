package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// State tracks which corpus documents have been ingested and their
// content hashes, so unchanged documents are skipped on re-runs.
type State struct {
	DocHashes   map[string]string `json:"doc_hashes"`
	LastUpdated time.Time         `json:"last_updated"`
}

// LoadState reads ingest state from dir/ingest-state.json. A missing
// file yields empty state.
func LoadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, "ingest-state.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &State{DocHashes: make(map[string]string)}, nil
		}
		return nil, err
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	if state.DocHashes == nil {
		state.DocHashes = make(map[string]string)
	}
	return &state, nil
}

// Save writes the state to dir/ingest-state.json.
func (s *State) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	s.LastUpdated = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "ingest-state.json"), data, 0o644)
}

// Changed reports whether the document's content differs from what was
// last ingested.
func (s *State) Changed(key, contentHash string) bool {
	stored, ok := s.DocHashes[key]
	return !ok || stored != contentHash
}
