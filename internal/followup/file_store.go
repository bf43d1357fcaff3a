package followup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// FileStore keeps jobs in a single JSON document keyed by job ID.
type FileStore struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func NewFileStore(fs afero.Fs, path string) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("follow-up store path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", path, err)
		}
	}
	return &FileStore{fs: fs, path: path}, nil
}

func (s *FileStore) Save(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return err
	}
	jobs[job.ID] = job

	return s.write(jobs)
}

func (s *FileStore) Remove(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := jobs[id]; !ok {
		return nil
	}
	delete(jobs, id)

	return s.write(jobs)
}

func (s *FileStore) List(ctx context.Context) ([]Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return nil, err
	}

	list := make([]Job, 0, len(jobs))
	for id, job := range jobs {
		job.ID = id
		list = append(list, job)
	}
	sortJobs(list)

	return list, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]Job, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]Job{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	jobs := map[string]Job{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return jobs, nil
	}
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}

	return jobs, nil
}

func (s *FileStore) write(jobs map[string]Job) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}

	return nil
}
