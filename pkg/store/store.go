package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/agencyfin/pkg/metrics"
	"github.com/yurifrl/agencyfin/pkg/models"
)

// Store owns the state tree and rewrites the whole blob after every
// successful action. An empty path keeps the state in memory only.
type Store struct {
	mu       sync.Mutex
	path     string
	logger   *log.Logger
	defaults models.Settings
	state    models.State
	now      func() time.Time
}

// Open loads the blob at path, or starts from defaults when there is none.
func Open(path string, defaults models.Settings, logger *log.Logger) (*Store, error) {
	s := &Store{
		path:     path,
		logger:   logger,
		defaults: defaults,
		state:    models.NewState(defaults),
		now:      time.Now,
	}
	if path == "" {
		return s, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug("no saved state, starting fresh", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	defer f.Close()

	saved, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	if s.state, err = Reduce(s.state, LoadData{State: saved, Defaults: defaults}); err != nil {
		return nil, err
	}
	logger.Debug("loaded state", "path", path, "clients", len(s.state.Clients), "projects", len(s.state.Projects))
	return s, nil
}

// Dispatch reduces the action and persists the result. The in-memory state
// only changes once the blob has been written.
func (s *Store) Dispatch(action Action) (models.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if up, ok := action.(UploadReport); ok && up.At.IsZero() {
		up.At = s.now()
		action = up
	}

	next, err := Reduce(s.state, action)
	if err != nil {
		return s.state.Clone(), fmt.Errorf("%s: %w", action.Name(), err)
	}
	if err := s.persist(next); err != nil {
		return s.state.Clone(), fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.state = next
	s.logger.Debug("applied action", "action", action.Name(), "fiscal_year", next.Settings.CurrentFiscalYear)
	return next.Clone(), nil
}

// State returns a copy of the current state.
func (s *Store) State() models.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Store) Metrics() metrics.Snapshot {
	return metrics.Calculate(s.State())
}

// Export writes the state as indented JSON, the same shape as the blob.
func (s *Store) Export(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.State()); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// Import replaces the state with an exported backup.
func (s *Store) Import(r io.Reader) error {
	saved, err := decode(r)
	if err != nil {
		return fmt.Errorf("failed to read backup: %w", err)
	}
	_, err = s.Dispatch(LoadData{State: saved, Defaults: s.defaultSettings()})
	return err
}

// Reset drops everything and starts over from the default settings.
func (s *Store) Reset() error {
	_, err := s.Dispatch(ClearAllData{Settings: s.defaultSettings()})
	return err
}

func (s *Store) defaultSettings() models.Settings {
	d := s.defaults
	if d.CurrentFiscalYear == 0 {
		d.CurrentFiscalYear = s.now().Year()
	}
	return d
}

func decode(r io.Reader) (models.State, error) {
	var state models.State
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return models.State{}, err
	}
	return state, nil
}

// persist writes the blob next to its final path and renames it into place,
// so a crash never leaves a truncated file behind.
func (s *Store) persist(state models.State) error {
	if s.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to save state: %w", err)
	}
	return nil
}
