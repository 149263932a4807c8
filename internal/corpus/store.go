package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/helioscope/slr-analytics-service/internal/domain"
)

// Save writes a processed corpus to path as indented JSON, creating parent
// directories as needed.
func Save(path string, pubs []*domain.Publication) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating corpus directory: %w", err)
	}
	data, err := json.MarshalIndent(pubs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling corpus: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing corpus: %w", err)
	}
	return nil
}

// Load reads a corpus written by Save. A missing file maps to
// domain.ErrNotFound.
func Load(path string) ([]*domain.Publication, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("corpus %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("reading corpus: %w", err)
	}
	var pubs []*domain.Publication
	if err := json.Unmarshal(data, &pubs); err != nil {
		return nil, fmt.Errorf("decoding corpus: %w", err)
	}
	return pubs, nil
}
