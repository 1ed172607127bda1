// Package state remembers the feed session the CLI is paging through, so
// repeated `clipfeed feed next` calls continue where the last one stopped.
package state

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	json "github.com/json-iterator/go"
	"github.com/zfogg/clipfeed/cli/pkg/config"
)

const fileName = "session.json"

// FeedState is the locally remembered session
type FeedState struct {
	SessionID string    `json:"session_id"`
	Tab       string    `json:"tab"`
	Tag       string    `json:"tag,omitempty"`
	Batches   int       `json:"batches"`
	Exhausted bool      `json:"exhausted"`
	UpdatedAt time.Time `json:"updated_at"`
}

func path() string {
	return filepath.Join(config.GetConfigDir(), fileName)
}

// Load returns the saved state, or nil when there is none
func Load() (*FeedState, error) {
	data, err := os.ReadFile(path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var st FeedState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Save writes the state with owner-only permissions
func Save(st *FeedState) error {
	st.UpdatedAt = time.Now().UTC()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path(), data, 0600)
}

// Clear removes the saved state; a missing file is not an error
func Clear() error {
	err := os.Remove(path())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Matches reports whether the saved session serves tab and tag
func (s *FeedState) Matches(tab, tag string) bool {
	return s != nil && s.SessionID != "" && s.Tab == tab && s.Tag == tag
}
