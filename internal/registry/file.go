package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"farewatch/internal/model"
)

// FileRegistry reads journeys from a JSON document of the form {"trips": [...]}.
type FileRegistry struct {
	path   string
	logger *slog.Logger
}

// NewFileRegistry creates a new FileRegistry.
func NewFileRegistry(path string, logger *slog.Logger) *FileRegistry {
	return &FileRegistry{path: path, logger: logger}
}

type tripFile struct {
	Trips []model.Journey `json:"trips"`
}

// LoadJourneys returns the trips in file order. A missing file yields no
// journeys; a malformed one is an error.
func (r *FileRegistry) LoadJourneys(_ context.Context) ([]model.Journey, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn("FileRegistry: trips file not found", "path", r.path)
			return nil, nil
		}
		return nil, fmt.Errorf("read trips file: %w", err)
	}

	var doc tripFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse trips file %s: %w", r.path, err)
	}
	return doc.Trips, nil
}
