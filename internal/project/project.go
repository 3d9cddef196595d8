package project

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/piwi3910/RodCut/internal/model"
)

// SaveProject writes a project, including its last result, as JSON.
func SaveProject(path string, p model.Project) error {
	if err := writeJSON(path, p); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// LoadProject reads a project saved by SaveProject. Settings missing from
// the file keep their defaults.
func LoadProject(path string) (model.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to read project: %w", err)
	}
	p := model.NewProject()
	if err := json.Unmarshal(data, &p); err != nil {
		return model.Project{}, fmt.Errorf("failed to parse project: %w", err)
	}
	if p.Rods == nil {
		p.Rods = []model.Rod{}
	}
	if p.Pieces == nil {
		p.Pieces = []model.Piece{}
	}
	if _, ok := model.ParseSortOrder(string(p.Settings.SortOrder)); !ok {
		return model.Project{}, fmt.Errorf("invalid project: unknown sort order %q", p.Settings.SortOrder)
	}
	return p, nil
}
