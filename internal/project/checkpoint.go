package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/RodCut/internal/engine"
)

// SaveCheckpoint stores the state of an interrupted search.
func SaveCheckpoint(path string, cp engine.Checkpoint) error {
	if err := writeJSON(path, cp); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a checkpoint saved by SaveCheckpoint. A missing file
// returns nil and no error so callers can start a fresh search.
func LoadCheckpoint(path string) (*engine.Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}
	var cp engine.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	return &cp, nil
}
