package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmftio/bethe/pkg/domain"
)

// Store implements ports.RunStore using the local filesystem. Checkpoints
// are JSON files in a configured directory, written atomically.
type Store struct {
	BasePath string
}

// NewStore creates a Store with the given base path.
// If basePath is empty, it defaults to ".bethe/runs".
func NewStore(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".bethe", "runs")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(runID string) string {
	return filepath.Join(s.BasePath, runID+".json")
}

// Save persists the run state to a JSON file atomically.
func (s *Store) Save(_ context.Context, state *domain.RunState) error {
	if state == nil || state.RunID == "" {
		return fmt.Errorf("run ID cannot be empty")
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run state: %w", err)
	}
	return writeAtomic(s.path(state.RunID), func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// Load retrieves a run checkpoint.
func (s *Store) Load(_ context.Context, runID string) (*domain.RunState, error) {
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run checkpoint: %w", err)
	}
	var state domain.RunState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run checkpoint: %w", err)
	}
	return &state, nil
}

// Delete removes a run checkpoint. Deleting a missing run is not an error.
func (s *Store) Delete(_ context.Context, runID string) error {
	err := os.Remove(s.path(runID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete run checkpoint: %w", err)
	}
	return nil
}
