// Package checkpoint persists batch progress inside the input folder so an
// interrupted run picks up where it stopped.
package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jumbomochi/sg-math-pal-sub000/internal/core/domain"
)

const Filename = ".extraction-progress.json"

type FileStore struct{}

func NewFileStore() *FileStore { return &FileStore{} }

// Load reads the checkpoint for a folder. A missing file means a fresh run
// and returns (nil, nil); a corrupt file is an error so the operator decides
// whether to delete it rather than silently reprocessing everything.
func (s *FileStore) Load(_ context.Context, folder string) (*domain.BatchProgress, error) {
	data, err := os.ReadFile(filepath.Join(folder, Filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var progress domain.BatchProgress
	if err := json.Unmarshal(data, &progress); err != nil {
		return nil, fmt.Errorf("parse checkpoint %s: %w", Filename, err)
	}
	return &progress, nil
}

// Save writes the checkpoint atomically via a temp file and rename, so a
// crash mid-write never leaves a corrupt checkpoint behind.
func (s *FileStore) Save(_ context.Context, folder string, progress *domain.BatchProgress) error {
	data, err := json.MarshalIndent(progress, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	path := filepath.Join(folder, Filename)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace checkpoint: %w", err)
	}
	return nil
}
