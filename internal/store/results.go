package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/amishk599/jobradar/internal/model"
)

// SaveResults atomically writes a run's results to path.
func SaveResults(path string, results *model.Results) error {
	if results.Jobs == nil {
		results.Jobs = []model.AnalyzedJob{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := writeFileAtomic(path, data); err != nil {
		return fmt.Errorf("saving results to %s: %w", path, err)
	}
	return nil
}

// LoadResults reads the results file at path.
func LoadResults(path string) (*model.Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var r model.Results
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return &r, nil
}

// ResultsFile saves results to a fixed path.
type ResultsFile struct {
	Path string
}

func (f ResultsFile) SaveResults(results *model.Results) error {
	return SaveResults(f.Path, results)
}
